package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/userlens/userlens/internal/core/engine"
	"github.com/userlens/userlens/internal/core/pool"
	"github.com/userlens/userlens/internal/server/handlers"
	"github.com/userlens/userlens/internal/server/middleware"
)

// HTTPErrorDetail is the error body returned to callers.
type HTTPErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// HTTPErrorResponse wraps HTTPErrorDetail in the standard envelope.
type HTTPErrorResponse struct {
	Error HTTPErrorDetail `json:"error"`
}

// HandleError maps core errors to the JSON envelope and status codes.
// Rate-limit style errors carry a Retry-After header so callers can
// implement their own backoff.
func (s *Server) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail, retryAfter := classifyError(err)
	detail.RequestID = middleware.GetRequestID(r.Context())

	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second)/time.Second)))
	}

	s.logError(r, status, detail)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeBody(w, HTTPErrorResponse{Error: detail})
}

func classifyError(err error) (int, HTTPErrorDetail, time.Duration) {
	var (
		limited    *engine.RateLimitExceededError
		throttled  *pool.AllThrottledError
		rejected   *engine.UpstreamRejectedError
		transient  *engine.TransientError
		validation *handlers.ValidationError
	)

	switch {
	case errors.As(err, &limited):
		return http.StatusServiceUnavailable, HTTPErrorDetail{
			Code:    "RATE_LIMITED",
			Message: "upstream rate limit exceeded",
			Details: map[string]any{
				"retry_after_seconds": int(limited.RetryAfter.Round(time.Second) / time.Second),
				"reset_at":            limited.ResetAt.UTC().Format(time.RFC3339),
			},
		}, limited.RetryAfter

	case errors.As(err, &throttled):
		return http.StatusServiceUnavailable, HTTPErrorDetail{
			Code:    "ALL_CREDENTIALS_THROTTLED",
			Message: "every upstream credential is currently throttled",
			Details: map[string]any{
				"retry_after_seconds": int(throttled.RetryAfter.Round(time.Second) / time.Second),
			},
		}, throttled.RetryAfter

	case errors.As(err, &rejected):
		if rejected.StatusCode == http.StatusNotFound {
			return http.StatusNotFound, HTTPErrorDetail{
				Code:    "USER_NOT_FOUND",
				Message: rejected.Message,
			}, 0
		}
		return http.StatusBadGateway, HTTPErrorDetail{
			Code:    "UPSTREAM_ERROR",
			Message: rejected.Message,
			Details: map[string]any{"upstream_status": rejected.StatusCode},
		}, 0

	case errors.As(err, &transient):
		return http.StatusBadGateway, HTTPErrorDetail{
			Code:    "UPSTREAM_UNREACHABLE",
			Message: "upstream request failed after retries",
		}, 0

	case errors.As(err, &validation):
		return http.StatusBadRequest, HTTPErrorDetail{
			Code:    "INVALID_INPUT",
			Message: validation.Message,
		}, 0

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, HTTPErrorDetail{
			Code:    "TIMEOUT",
			Message: "request timed out",
		}, 0

	default:
		return http.StatusInternalServerError, HTTPErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: "unexpected error",
		}, 0
	}
}

func (s *Server) logError(r *http.Request, status int, detail HTTPErrorDetail) {
	if s.logger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", detail.Code),
		zap.Int("http_status", status),
		zap.String("path", r.URL.Path),
		zap.String("request_id", detail.RequestID),
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error(detail.Message, fields...)
	} else {
		s.logger.Warn(detail.Message, fields...)
	}
}
