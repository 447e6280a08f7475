package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/userlens/userlens/internal/observability"
)

func TestRequestMetricsRecordsPattern(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetricsWithRegistry(registry)

	r := chi.NewRouter()
	r.Use(RequestMetrics(metrics))
	r.Get("/api/v1/users/{login}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/octocat", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	expected := `
# HELP userlens_http_requests_total Total number of HTTP requests served
# TYPE userlens_http_requests_total counter
userlens_http_requests_total{method="GET",path="/api/v1/users/{login}",status="200"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "userlens_http_requests_total"))
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDHonorsCallerSupplied(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "caller-id", seen)
	require.Equal(t, "caller-id", rec.Header().Get(RequestIDHeader))
}
