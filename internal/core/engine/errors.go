package engine

import (
	"fmt"
	"time"
)

// RateLimitExceededError is the terminal outcome when every attempt in a run
// was rate limited. ResetAt is derived from the last parsed retry-after.
type RateLimitExceededError struct {
	RetryAfter time.Duration
	ResetAt    time.Time
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("upstream rate limit exceeded, retry in %s", e.RetryAfter.Round(time.Second))
}

// UpstreamRejectedError is a non-retryable upstream rejection (4xx/5xx other
// than 429). It reflects a stable condition that retrying cannot fix.
type UpstreamRejectedError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamRejectedError) Error() string {
	return fmt.Sprintf("upstream rejected request (%d): %s", e.StatusCode, e.Message)
}

// TransientError surfaces the last network-level failure once the attempt
// budget is exhausted.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("upstream unreachable: %v", e.Cause)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}
