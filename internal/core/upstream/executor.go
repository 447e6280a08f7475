// Package upstream performs single-shot calls against the third-party API
// and classifies each response into a tagged outcome. Retry and credential
// selection live above this layer.
package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// OutcomeKind tags the result of one upstream attempt.
type OutcomeKind string

const (
	OutcomeSuccess     OutcomeKind = "success"
	OutcomeRateLimited OutcomeKind = "rate_limited"
	OutcomeTransient   OutcomeKind = "transient"
	OutcomeFatal       OutcomeKind = "fatal"
)

// Outcome is the classified result of exactly one upstream call. Only the
// fields relevant to its Kind are populated.
type Outcome struct {
	Kind       OutcomeKind
	Payload    json.RawMessage
	RetryAfter time.Duration
	StatusCode int
	Message    string
	Cause      error
}

// DefaultRetryAfterFallback applies when a 429 carries no parseable
// rate-limit header.
const DefaultRetryAfterFallback = 60 * time.Second

// DefaultTimeout bounds one upstream call.
const DefaultTimeout = 10 * time.Second

// Executor issues one upstream HTTP call per Execute. It holds no retry
// logic and no knowledge of the credential pool.
type Executor struct {
	Client             *http.Client
	Timeout            time.Duration
	RetryAfterFallback time.Duration
	UserAgent          string
	Clock              func() time.Time
}

// Execute performs a single GET against rawURL with the given query
// parameters, authenticating with the supplied credential.
//
// Classification:
//   - 429 is OutcomeRateLimited, with retry-after from the rate-limit
//     headers (fallback when absent or unparseable)
//   - other non-2xx is OutcomeFatal, with status code and upstream message
//   - no usable response (timeout, DNS, reset) is OutcomeTransient
//   - 2xx is OutcomeSuccess, with the raw payload
func (e *Executor) Execute(ctx context.Context, rawURL string, params url.Values, credential string) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}

	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Outcome{Kind: OutcomeFatal, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}
	if e.UserAgent != "" {
		req.Header.Set("User-Agent", e.UserAgent)
	}

	resp, err := e.client().Do(req)
	if err != nil {
		return Outcome{Kind: OutcomeTransient, Cause: err}
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Outcome{
			Kind:       OutcomeRateLimited,
			StatusCode: resp.StatusCode,
			RetryAfter: e.retryAfter(resp),
		}
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Outcome{Kind: OutcomeTransient, Cause: err}
		}
		return Outcome{Kind: OutcomeSuccess, StatusCode: resp.StatusCode, Payload: body}
	default:
		return Outcome{
			Kind:       OutcomeFatal,
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(resp),
		}
	}
}

// retryAfter resolves the wait the upstream asked for. Retry-After is tried
// as delta-seconds, then as an HTTP-date; X-RateLimit-Reset as epoch
// seconds. Anything unparseable falls back to the configured default.
func (e *Executor) retryAfter(resp *http.Response) time.Duration {
	now := e.now()

	if retry := resp.Header.Get("Retry-After"); retry != "" {
		if seconds, err := strconv.Atoi(retry); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
		if parsed, err := http.ParseTime(retry); err == nil {
			if wait := parsed.Sub(now); wait > 0 {
				return wait
			}
		}
	}

	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
			if wait := time.Unix(epoch, 0).Sub(now); wait > 0 {
				return wait
			}
		}
	}

	if e.RetryAfterFallback > 0 {
		return e.RetryAfterFallback
	}
	return DefaultRetryAfterFallback
}

// upstreamMessage extracts the error message from a non-2xx body, preferring
// the JSON "message" field the upstream emits.
func upstreamMessage(resp *http.Response) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return http.StatusText(resp.StatusCode)
}

func (e *Executor) client() *http.Client {
	if e.Client != nil {
		return e.Client
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (e *Executor) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now().UTC()
}
