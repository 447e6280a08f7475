package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the service. Safe for
// concurrent use.
type Metrics struct {
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	upstreamAttempts     *prometheus.CounterVec
	throttledCredentials prometheus.Gauge
	cacheEvents          *prometheus.CounterVec
	lookupsTotal         *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates metrics on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(registry)
	m.registry = registry
	return m
}

// NewMetricsWithRegistry creates metrics using the supplied registerer.
func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "userlens_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "userlens_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		upstreamAttempts: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "userlens_upstream_attempts_total",
				Help: "Total number of upstream attempts by outcome",
			},
			[]string{"outcome"},
		),
		throttledCredentials: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "userlens_throttled_credentials",
				Help: "Number of credentials currently throttled",
			},
		),
		cacheEvents: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "userlens_cache_events_total",
				Help: "Total number of response cache events",
			},
			[]string{"event"},
		),
		lookupsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "userlens_lookups_total",
				Help: "Total number of logical lookups by result",
			},
			[]string{"result"},
		),
	}
}

// Handler serves the registry in Prometheus exposition format. Returns nil
// when the metrics were built on an external registerer.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordUpstreamAttempt records one upstream attempt by outcome kind.
func (m *Metrics) RecordUpstreamAttempt(outcome string) {
	if m == nil {
		return
	}
	m.upstreamAttempts.WithLabelValues(outcome).Inc()
}

// SetThrottledCredentials updates the throttled-credential gauge.
func (m *Metrics) SetThrottledCredentials(n int) {
	if m == nil {
		return
	}
	m.throttledCredentials.Set(float64(n))
}

// RecordCacheEvent records a cache hit, miss, or set.
func (m *Metrics) RecordCacheEvent(event string) {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues(event).Inc()
}

// RecordLookup records the terminal result of one logical lookup.
func (m *Metrics) RecordLookup(result string) {
	if m == nil {
		return
	}
	m.lookupsTotal.WithLabelValues(result).Inc()
}
