// Package cache provides the time-bounded response cache sitting in front
// of the retry engine.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultTTL applies when no TTL is configured.
const DefaultTTL = 300 * time.Second

// Entry is one cached payload with its expiry.
type Entry struct {
	Payload   json.RawMessage
	ExpiresAt time.Time
}

// Cache is a keyed payload store with a fixed TTL per Set. Get returns nil
// for both a missing and an expired entry.
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, payload json.RawMessage) error
	Close() error
}
