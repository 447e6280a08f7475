// Package pool tracks a fixed set of upstream API credentials, rotating
// between them round-robin and parking the ones the upstream has throttled.
package pool

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Pool holds the credential set and its throttle state. Credentials are
// loaded once at construction and never change; only their throttled state
// mutates. Safe for concurrent use.
type Pool struct {
	// Clock overrides time.Now for tests.
	Clock func() time.Time

	mu        sync.Mutex
	creds     []string
	throttled map[string]time.Time
	cursor    int
}

// CredentialStatus describes one credential for introspection. Tokens are
// never exposed raw; only the fingerprint leaves the pool.
type CredentialStatus struct {
	Fingerprint string     `json:"fingerprint"`
	Throttled   bool       `json:"throttled"`
	RetryAt     *time.Time `json:"retry_at,omitempty"`
}

// AllThrottledError reports that every credential in the pool is currently
// throttled. ResetAt is the soonest deadline across all credentials.
type AllThrottledError struct {
	RetryAfter time.Duration
	ResetAt    time.Time
}

func (e *AllThrottledError) Error() string {
	return fmt.Sprintf("all credentials throttled, retry in %s", e.RetryAfter.Round(time.Second))
}

// New creates a pool over the given ordered credential list.
func New(creds []string) (*Pool, error) {
	if len(creds) == 0 {
		return nil, errors.New("credential pool requires at least one token")
	}
	owned := make([]string, len(creds))
	copy(owned, creds)
	return &Pool{
		creds:     owned,
		throttled: make(map[string]time.Time),
	}, nil
}

// Select returns the next usable credential in round-robin order, purging
// expired throttle entries first. Fails with *AllThrottledError when no
// credential is usable.
func (p *Pool) Select() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	p.purgeLocked(now)

	if len(p.throttled) == len(p.creds) {
		reset := p.earliestResetLocked()
		return "", &AllThrottledError{
			RetryAfter: reset.Sub(now),
			ResetAt:    reset,
		}
	}

	for i := 0; i < len(p.creds); i++ {
		idx := (p.cursor + i) % len(p.creds)
		cred := p.creds[idx]
		if _, ok := p.throttled[cred]; ok {
			continue
		}
		p.cursor = (idx + 1) % len(p.creds)
		return cred, nil
	}

	// Unreachable: the exhaustion check above covers the fully-throttled case.
	reset := p.earliestResetLocked()
	return "", &AllThrottledError{RetryAfter: reset.Sub(now), ResetAt: reset}
}

// MarkThrottled parks a credential until now + retryAfter.
func (p *Pool) MarkThrottled(cred string, retryAfter time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.throttled[cred] = p.now().Add(retryAfter)
}

// Size returns the number of credentials in the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.creds)
}

// Usable returns the number of credentials currently selectable.
func (p *Pool) Usable() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.purgeLocked(p.now())
	return len(p.creds) - len(p.throttled)
}

// Snapshot returns the current status of every credential in pool order.
func (p *Pool) Snapshot() []CredentialStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.purgeLocked(p.now())

	statuses := make([]CredentialStatus, 0, len(p.creds))
	for _, cred := range p.creds {
		status := CredentialStatus{Fingerprint: Fingerprint(cred)}
		if until, ok := p.throttled[cred]; ok {
			retryAt := until
			status.Throttled = true
			status.RetryAt = &retryAt
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Fingerprint renders a token in a log-safe form: the first four characters
// plus the total length.
func Fingerprint(token string) string {
	if len(token) <= 4 {
		return fmt.Sprintf("***%d", len(token))
	}
	return fmt.Sprintf("%s***%d", token[:4], len(token))
}

func (p *Pool) purgeLocked(now time.Time) {
	for cred, until := range p.throttled {
		if !now.Before(until) {
			delete(p.throttled, cred)
		}
	}
}

func (p *Pool) earliestResetLocked() time.Time {
	var earliest time.Time
	for _, until := range p.throttled {
		if earliest.IsZero() || until.Before(earliest) {
			earliest = until
		}
	}
	return earliest
}

func (p *Pool) now() time.Time {
	if p.Clock != nil {
		return p.Clock()
	}
	return time.Now().UTC()
}
