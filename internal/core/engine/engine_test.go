package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/userlens/userlens/internal/core/pool"
	"github.com/userlens/userlens/internal/core/upstream"
)

// scriptedExecutor replays a fixed sequence of outcomes and records the
// credentials it was called with.
type scriptedExecutor struct {
	outcomes []upstream.Outcome
	calls    []string
}

func (s *scriptedExecutor) Execute(ctx context.Context, rawURL string, params url.Values, credential string) upstream.Outcome {
	s.calls = append(s.calls, credential)
	if len(s.outcomes) == 0 {
		return upstream.Outcome{Kind: upstream.OutcomeFatal, Message: "script exhausted"}
	}
	outcome := s.outcomes[0]
	s.outcomes = s.outcomes[1:]
	return outcome
}

func newEngine(t *testing.T, creds []string, exec Executor) (*Engine, *pool.Pool, *[]time.Duration) {
	t.Helper()
	p, err := pool.New(creds)
	require.NoError(t, err)

	delays := &[]time.Duration{}
	e := &Engine{
		Pool:     p,
		Executor: exec,
		Wait: func(ctx context.Context, d time.Duration) error {
			*delays = append(*delays, d)
			return nil
		},
	}
	return e, p, delays
}

func TestRunSuccessFirstAttempt(t *testing.T) {
	exec := &scriptedExecutor{outcomes: []upstream.Outcome{
		{Kind: upstream.OutcomeSuccess, Payload: json.RawMessage(`{"ok":true}`)},
	}}
	e, _, delays := newEngine(t, []string{"a", "b"}, exec)

	payload, err := e.Run(context.Background(), "https://api.test/users/x", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(payload))
	require.Equal(t, []string{"a"}, exec.calls)
	require.Empty(t, *delays)
}

func TestRunRotatesOnRateLimit(t *testing.T) {
	exec := &scriptedExecutor{outcomes: []upstream.Outcome{
		{Kind: upstream.OutcomeRateLimited, RetryAfter: 30 * time.Second},
		{Kind: upstream.OutcomeSuccess, Payload: json.RawMessage(`{}`)},
	}}
	e, _, delays := newEngine(t, []string{"a", "b"}, exec)

	_, err := e.Run(context.Background(), "https://api.test/users/x", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, exec.calls)
	// Rotation after a rate limit carries no artificial delay.
	require.Empty(t, *delays)
}

func TestRunAllRateLimitedStopsAtBudget(t *testing.T) {
	exec := &scriptedExecutor{outcomes: []upstream.Outcome{
		{Kind: upstream.OutcomeRateLimited, RetryAfter: 10 * time.Second},
		{Kind: upstream.OutcomeRateLimited, RetryAfter: 20 * time.Second},
		{Kind: upstream.OutcomeRateLimited, RetryAfter: 30 * time.Second},
	}}
	e, _, _ := newEngine(t, []string{"a", "b", "c"}, exec)

	_, err := e.Run(context.Background(), "https://api.test/users/x", nil)
	require.Error(t, err)

	var limited *RateLimitExceededError
	require.True(t, errors.As(err, &limited))
	require.Equal(t, 30*time.Second, limited.RetryAfter)
	require.Len(t, exec.calls, 3)
}

func TestRunFatalTerminatesImmediately(t *testing.T) {
	exec := &scriptedExecutor{outcomes: []upstream.Outcome{
		{Kind: upstream.OutcomeFatal, StatusCode: 404, Message: "Not Found"},
	}}
	e, _, delays := newEngine(t, []string{"a", "b", "c"}, exec)

	_, err := e.Run(context.Background(), "https://api.test/users/x", nil)
	require.Error(t, err)

	var rejected *UpstreamRejectedError
	require.True(t, errors.As(err, &rejected))
	require.Equal(t, 404, rejected.StatusCode)
	require.Equal(t, "Not Found", rejected.Message)
	require.Len(t, exec.calls, 1)
	require.Empty(t, *delays)
}

func TestRunTransientBackoffThenSuccess(t *testing.T) {
	cause := errors.New("connection reset")
	exec := &scriptedExecutor{outcomes: []upstream.Outcome{
		{Kind: upstream.OutcomeTransient, Cause: cause},
		{Kind: upstream.OutcomeTransient, Cause: cause},
		{Kind: upstream.OutcomeSuccess, Payload: json.RawMessage(`{}`)},
	}}
	e, _, delays := newEngine(t, []string{"a", "b", "c"}, exec)

	_, err := e.Run(context.Background(), "https://api.test/users/x", nil)
	require.NoError(t, err)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
}

func TestRunTransientBudgetExhausted(t *testing.T) {
	cause := errors.New("dial timeout")
	exec := &scriptedExecutor{outcomes: []upstream.Outcome{
		{Kind: upstream.OutcomeTransient, Cause: cause},
	}}
	e, _, delays := newEngine(t, []string{"only"}, exec)

	_, err := e.Run(context.Background(), "https://api.test/users/x", nil)
	require.Error(t, err)

	var transient *TransientError
	require.True(t, errors.As(err, &transient))
	require.ErrorIs(t, err, cause)
	// Budget is hard-capped at pool size: one credential means one attempt,
	// no backoff.
	require.Len(t, exec.calls, 1)
	require.Empty(t, *delays)
}

func TestRunSkipsThrottledCredential(t *testing.T) {
	exec := &scriptedExecutor{outcomes: []upstream.Outcome{
		{Kind: upstream.OutcomeSuccess, Payload: json.RawMessage(`{}`)},
	}}
	e, p, delays := newEngine(t, []string{"a", "b"}, exec)
	p.MarkThrottled("a", 60*time.Second)

	_, err := e.Run(context.Background(), "https://api.test/users/x", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, exec.calls)
	require.Empty(t, *delays)
}

func TestRunPoolExhaustedBeforeFirstAttempt(t *testing.T) {
	exec := &scriptedExecutor{}
	e, p, _ := newEngine(t, []string{"only"}, exec)
	p.MarkThrottled("only", 45*time.Second)

	_, err := e.Run(context.Background(), "https://api.test/users/x", nil)
	require.Error(t, err)

	var throttled *pool.AllThrottledError
	require.True(t, errors.As(err, &throttled))
	require.Empty(t, exec.calls)
}

func TestRunPoolExhaustedMidRun(t *testing.T) {
	// Both credentials get throttled for longer than the test runs; budget
	// would allow a second attempt but the pool is checked first.
	exec := &scriptedExecutor{outcomes: []upstream.Outcome{
		{Kind: upstream.OutcomeRateLimited, RetryAfter: time.Hour},
		{Kind: upstream.OutcomeRateLimited, RetryAfter: time.Hour},
	}}
	e, _, _ := newEngine(t, []string{"a", "b"}, exec)

	_, err := e.Run(context.Background(), "https://api.test/users/x", nil)
	var limited *RateLimitExceededError
	require.True(t, errors.As(err, &limited))
	require.Len(t, exec.calls, 2)
}

func TestRunBackoffHonorsCancellation(t *testing.T) {
	exec := &scriptedExecutor{outcomes: []upstream.Outcome{
		{Kind: upstream.OutcomeTransient, Cause: errors.New("timeout")},
	}}
	p, err := pool.New([]string{"a", "b"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{Pool: p, Executor: exec}
	cancel()

	_, err = e.Run(ctx, "https://api.test/users/x", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBackoffDelay(t *testing.T) {
	require.Equal(t, time.Second, backoffDelay(0))
	require.Equal(t, 2*time.Second, backoffDelay(1))
	require.Equal(t, 4*time.Second, backoffDelay(2))
	require.Equal(t, 8*time.Second, backoffDelay(3))
	require.Equal(t, 10*time.Second, backoffDelay(4))
	require.Equal(t, 10*time.Second, backoffDelay(9))
}
