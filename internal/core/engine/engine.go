// Package engine drives one logical request across the credential pool,
// absorbing rate-limit and transient outcomes until the attempt budget runs
// out and surfacing exactly one terminal result.
package engine

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/userlens/userlens/internal/core/pool"
	"github.com/userlens/userlens/internal/core/upstream"
	"github.com/userlens/userlens/internal/observability"
)

// Executor performs one upstream attempt with the given credential.
type Executor interface {
	Execute(ctx context.Context, rawURL string, params url.Values, credential string) upstream.Outcome
}

// Engine is the retry orchestrator. The attempt budget is the pool size: at
// most one attempt per credential under simple attempt counting, so a
// credential whose throttle expires mid-run may be retried within the same
// logical request.
type Engine struct {
	Pool     *pool.Pool
	Executor Executor
	Logger   *zap.Logger
	Metrics  *observability.Metrics

	// Wait overrides the backoff sleep for tests.
	Wait func(ctx context.Context, d time.Duration) error
}

const (
	backoffBase = time.Second
	backoffCap  = 10 * time.Second
)

// runState models the per-request state machine. Succeeded and Failed are
// terminal and expressed as returns.
type runState int

const (
	stateAttempting runState = iota
	stateBackoff
)

// Run performs one logical request. It returns the raw payload on success or
// one of *pool.AllThrottledError, *RateLimitExceededError,
// *UpstreamRejectedError, *TransientError, or the context error when
// cancelled at a suspension point.
func (e *Engine) Run(ctx context.Context, rawURL string, params url.Values) (json.RawMessage, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	budget := e.Pool.Size()
	state := stateAttempting
	attempt := 0

	var (
		lastRetryAfter time.Duration
		lastCause      error
	)

	for {
		switch state {
		case stateBackoff:
			delay := backoffDelay(attempt - 1)
			e.log().Debug("backing off before next attempt",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))
			if err := e.wait(ctx, delay); err != nil {
				return nil, err
			}
			state = stateAttempting

		case stateAttempting:
			// Pool exhaustion is checked before every attempt, not only at
			// start: a single-credential pool that just got throttled fails
			// fast instead of looping.
			cred, err := e.Pool.Select()
			if err != nil {
				e.log().Warn("credential pool exhausted", zap.Error(err))
				return nil, err
			}

			outcome := e.Executor.Execute(ctx, rawURL, params, cred)
			e.recordAttempt(outcome.Kind)
			attempt++

			switch outcome.Kind {
			case upstream.OutcomeSuccess:
				return outcome.Payload, nil

			case upstream.OutcomeRateLimited:
				lastRetryAfter = outcome.RetryAfter
				e.Pool.MarkThrottled(cred, outcome.RetryAfter)
				e.recordThrottled()
				e.log().Warn("credential throttled by upstream",
					zap.String("credential", pool.Fingerprint(cred)),
					zap.Duration("retry_after", outcome.RetryAfter))
				if attempt >= budget {
					return nil, &RateLimitExceededError{
						RetryAfter: lastRetryAfter,
						ResetAt:    time.Now().UTC().Add(lastRetryAfter),
					}
				}
				// Next credential is presumed immediately usable; no delay.

			case upstream.OutcomeFatal:
				e.log().Debug("upstream rejected request",
					zap.Int("status", outcome.StatusCode),
					zap.String("message", outcome.Message))
				return nil, &UpstreamRejectedError{
					StatusCode: outcome.StatusCode,
					Message:    outcome.Message,
				}

			case upstream.OutcomeTransient:
				lastCause = outcome.Cause
				if attempt >= budget {
					return nil, &TransientError{Cause: lastCause}
				}
				state = stateBackoff
			}
		}
	}
}

// backoffDelay is min(1s * 2^attempt, 10s) for a zero-based attempt index.
func backoffDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := backoffBase
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= backoffCap {
			return backoffCap
		}
	}
	if delay > backoffCap {
		return backoffCap
	}
	return delay
}

func (e *Engine) wait(ctx context.Context, d time.Duration) error {
	if e.Wait != nil {
		return e.Wait(ctx, d)
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (e *Engine) recordAttempt(kind upstream.OutcomeKind) {
	if e.Metrics != nil {
		e.Metrics.RecordUpstreamAttempt(string(kind))
	}
}

func (e *Engine) recordThrottled() {
	if e.Metrics != nil {
		e.Metrics.SetThrottledCredentials(e.Pool.Size() - e.Pool.Usable())
	}
}

func (e *Engine) log() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return zap.NewNop()
}
