package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Memory is an in-process cache with lazy expiry on read and an optional
// janitor goroutine that physically removes stale entries.
type Memory struct {
	// Clock overrides time.Now for tests.
	Clock func() time.Time

	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]Entry

	stop     chan struct{}
	stopOnce sync.Once
}

var _ Cache = (*Memory)(nil)

// NewMemory creates a memory cache. sweepInterval of zero disables the
// janitor; expiry is then enforced at read time only.
func NewMemory(ttl, sweepInterval time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	m := &Memory{
		ttl:     ttl,
		entries: make(map[string]Entry),
		stop:    make(chan struct{}),
	}

	if sweepInterval > 0 {
		go m.janitor(sweepInterval)
	}
	return m
}

// Get returns the entry for key, treating anything past its expiry as a
// miss whether or not the janitor removed it yet.
func (m *Memory) Get(ctx context.Context, key string) (*Entry, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !m.now().Before(entry.ExpiresAt) {
		return nil, nil
	}
	return &entry, nil
}

// Set inserts or overwrites key with the configured TTL from call time.
func (m *Memory) Set(ctx context.Context, key string, payload json.RawMessage) error {
	entry := Entry{Payload: payload, ExpiresAt: m.now().Add(m.ttl)}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Len returns the number of physical entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close stops the janitor. Safe to call multiple times.
func (m *Memory) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

func (m *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Sweep removes every expired entry.
func (m *Memory) Sweep() {
	now := m.now()
	m.mu.Lock()
	for key, entry := range m.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}

func (m *Memory) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now().UTC()
}
