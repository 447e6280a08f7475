// Package core exposes the lookup facade: cache in front, retry engine
// behind, provenance stamped on every result.
package core

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/userlens/userlens/internal/core/cache"
	"github.com/userlens/userlens/internal/core/engine"
	"github.com/userlens/userlens/internal/core/pool"
	"github.com/userlens/userlens/internal/observability"
)

// Client is the core lookup facade.
type Client struct {
	Engine      *engine.Engine
	Cache       cache.Cache
	BaseURL     *url.URL
	HTTPClient  *http.Client
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	ToolVersion string
	Clock       func() time.Time
}

// LookupOptions tunes one lookup.
type LookupOptions struct {
	// BypassCache skips the cache read; the result is still written back.
	BypassCache bool
}

// Lookup fetches the profile for key, serving from cache when a valid entry
// exists. Errors are exactly the typed errors of the engine and pool
// packages, passed through unchanged.
func (c *Client) Lookup(ctx context.Context, key string, opts LookupOptions) (*LookupResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	requestedAt := c.now()
	resourceURL := c.resourceURL(key)

	if c.Cache != nil && !opts.BypassCache {
		entry, err := c.Cache.Get(ctx, key)
		if err != nil {
			c.log().Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		if entry != nil {
			c.Metrics.RecordCacheEvent("hit")
			c.Metrics.RecordLookup("cache_hit")
			c.log().Debug("cache hit", zap.String("key", key))
			expires := entry.ExpiresAt
			return &LookupResult{
				Key:     key,
				Payload: entry.Payload,
				Provenance: Provenance{
					LookupID:     uuid.New().String(),
					RequestedAt:  requestedAt,
					ResolvedAt:   c.now(),
					Server:       c.BaseURL.String(),
					FromCache:    true,
					CacheExpires: &expires,
					ToolVersion:  c.ToolVersion,
				},
			}, nil
		}
		c.Metrics.RecordCacheEvent("miss")
	}

	payload, err := c.Engine.Run(ctx, resourceURL, nil)
	if err != nil {
		c.Metrics.RecordLookup(lookupResultLabel(err))
		return nil, err
	}

	var cacheExpires *time.Time
	if c.Cache != nil {
		if err := c.Cache.Set(ctx, key, payload); err != nil {
			c.log().Warn("cache write failed", zap.String("key", key), zap.Error(err))
		} else {
			c.Metrics.RecordCacheEvent("set")
			if entry, err := c.Cache.Get(ctx, key); err == nil && entry != nil && !entry.ExpiresAt.IsZero() {
				expires := entry.ExpiresAt
				cacheExpires = &expires
			}
		}
	}

	c.Metrics.RecordLookup("success")
	return &LookupResult{
		Key:     key,
		Payload: payload,
		Provenance: Provenance{
			LookupID:     uuid.New().String(),
			RequestedAt:  requestedAt,
			ResolvedAt:   c.now(),
			Server:       c.BaseURL.String(),
			CacheExpires: cacheExpires,
			ToolVersion:  c.ToolVersion,
		},
	}, nil
}

// Ping issues an unauthenticated request to the upstream base URL for
// readiness checks. Any HTTP response counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.BaseURL.String(), nil)
	if err != nil {
		return err
	}

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// Close releases the cache backend.
func (c *Client) Close() error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}

func (c *Client) resourceURL(key string) string {
	return c.BaseURL.ResolveReference(&url.URL{Path: "/users/" + url.PathEscape(key)}).String()
}

func lookupResultLabel(err error) string {
	var (
		limited   *engine.RateLimitExceededError
		rejected  *engine.UpstreamRejectedError
		transient *engine.TransientError
		throttled *pool.AllThrottledError
	)
	switch {
	case errors.As(err, &limited):
		return "rate_limited"
	case errors.As(err, &rejected):
		return "rejected"
	case errors.As(err, &transient):
		return "transient"
	case errors.As(err, &throttled):
		return "throttled"
	default:
		return "error"
	}
}

func (c *Client) log() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func (c *Client) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}
