package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExecuteSuccess(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login":"octocat","id":1}`))
	}))
	defer server.Close()

	e := &Executor{Client: server.Client()}
	outcome := e.Execute(context.Background(), server.URL+"/users/octocat", nil, "secret-token")

	require.Equal(t, OutcomeSuccess, outcome.Kind)
	require.Equal(t, http.StatusOK, outcome.StatusCode)
	require.JSONEq(t, `{"login":"octocat","id":1}`, string(outcome.Payload))
	require.Equal(t, "Bearer secret-token", gotAuth)
}

func TestExecuteQueryParams(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	e := &Executor{Client: server.Client()}
	params := url.Values{"per_page": []string{"1"}}
	outcome := e.Execute(context.Background(), server.URL, params, "tok")

	require.Equal(t, OutcomeSuccess, outcome.Kind)
	require.Equal(t, "1", gotQuery.Get("per_page"))
}

func TestExecuteRateLimitedRetryAfterSeconds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	e := &Executor{Client: server.Client()}
	outcome := e.Execute(context.Background(), server.URL, nil, "tok")

	require.Equal(t, OutcomeRateLimited, outcome.Kind)
	require.Equal(t, 7*time.Second, outcome.RetryAfter)
}

func TestExecuteRateLimitedRetryAfterDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", now.Add(90*time.Second).Format(http.TimeFormat))
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	e := &Executor{Client: server.Client(), Clock: func() time.Time { return now }}
	outcome := e.Execute(context.Background(), server.URL, nil, "tok")

	require.Equal(t, OutcomeRateLimited, outcome.Kind)
	require.Equal(t, 90*time.Second, outcome.RetryAfter)
}

func TestExecuteRateLimitedResetEpoch(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(now.Add(2*time.Minute).Unix(), 10))
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	e := &Executor{Client: server.Client(), Clock: func() time.Time { return now }}
	outcome := e.Execute(context.Background(), server.URL, nil, "tok")

	require.Equal(t, OutcomeRateLimited, outcome.Kind)
	require.Equal(t, 2*time.Minute, outcome.RetryAfter)
}

func TestExecuteRateLimitedFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	e := &Executor{Client: server.Client()}
	outcome := e.Execute(context.Background(), server.URL, nil, "tok")

	require.Equal(t, OutcomeRateLimited, outcome.Kind)
	require.Equal(t, DefaultRetryAfterFallback, outcome.RetryAfter)
}

func TestExecuteFatalWithMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	e := &Executor{Client: server.Client()}
	outcome := e.Execute(context.Background(), server.URL, nil, "tok")

	require.Equal(t, OutcomeFatal, outcome.Kind)
	require.Equal(t, http.StatusNotFound, outcome.StatusCode)
	require.Equal(t, "Not Found", outcome.Message)
}

func TestExecuteFatalWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	e := &Executor{Client: server.Client()}
	outcome := e.Execute(context.Background(), server.URL, nil, "tok")

	require.Equal(t, OutcomeFatal, outcome.Kind)
	require.Equal(t, http.StatusBadGateway, outcome.StatusCode)
	require.Equal(t, http.StatusText(http.StatusBadGateway), outcome.Message)
}

func TestExecuteTransientOnNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := server.Client()
	server.Close()

	e := &Executor{Client: client}
	outcome := e.Execute(context.Background(), server.URL, nil, "tok")

	require.Equal(t, OutcomeTransient, outcome.Kind)
	require.Error(t, outcome.Cause)
}
