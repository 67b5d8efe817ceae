// metrics.go - Prometheus metrics for HTTP traffic, database sessions and the cache

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing, which keeps tests free of registry plumbing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SessionsActive  prometheus.Gauge
	SessionsTotal   *prometheus.CounterVec
	SessionWaitTime prometheus.Histogram

	CacheRequestsTotal *prometheus.CounterVec
	ViewSyncTotal      *prometheus.CounterVec
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blog_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blog_db_sessions_active",
			Help: "Database sessions currently held by requests",
		}),
		SessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_db_sessions_total",
				Help: "Database sessions by outcome",
			},
			[]string{"outcome"}, // commit, rollback, exhausted
		),
		SessionWaitTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "blog_db_session_wait_seconds",
			Help:    "Time spent waiting for a free database session",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
		CacheRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_cache_requests_total",
				Help: "Cache lookups by result",
			},
			[]string{"result"}, // hit, miss, error
		),
		ViewSyncTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blog_view_sync_runs_total",
				Help: "View counter sync job runs by result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SessionsActive,
		m.SessionsTotal,
		m.SessionWaitTime,
		m.CacheRequestsTotal,
		m.ViewSyncTotal,
	)
	return m
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched" // keeps label cardinality bounded
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// SessionAcquired records a session leaving the pool after waiting wait.
func (m *Metrics) SessionAcquired(wait time.Duration) {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
	m.SessionWaitTime.Observe(wait.Seconds())
}

// SessionReleased records a session returning with the given outcome.
func (m *Metrics) SessionReleased(outcome string) {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
	m.SessionsTotal.WithLabelValues(outcome).Inc()
}

// SessionExhausted records a request that could not get a session in time.
func (m *Metrics) SessionExhausted() {
	if m == nil {
		return
	}
	m.SessionsTotal.WithLabelValues("exhausted").Inc()
}

// CacheResult records a cache lookup result.
func (m *Metrics) CacheResult(result string) {
	if m == nil {
		return
	}
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}

// ViewSync records one run of the view sync job.
func (m *Metrics) ViewSync(result string) {
	if m == nil {
		return
	}
	m.ViewSyncTotal.WithLabelValues(result).Inc()
}
