package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// panicResponse mirrors the server error envelope. Declared locally to keep
// this package free of a server import.
type panicResponse struct {
	Error panicDetail `json:"error"`
}

type panicDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Recovery converts handler panics into a 500 envelope and logs the stack.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					requestID := GetRequestID(r.Context())
					if logger != nil {
						logger.Error("panic recovered",
							zap.Any("panic", rec),
							zap.String("request_id", requestID),
							zap.String("path", r.URL.Path),
							zap.ByteString("stack", debug.Stack()))
					}

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(panicResponse{
						Error: panicDetail{
							Code:      "INTERNAL_ERROR",
							Message:   fmt.Sprintf("panic: %v", rec),
							RequestID: requestID,
						},
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
