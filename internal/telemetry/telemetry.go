// Package telemetry exposes Prometheus metrics for the findings API.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all findings API Prometheus metrics.
type Metrics struct {
	// HTTP surface
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Upstream fetches
	FetchesTotal   *prometheus.CounterVec
	FetchedRecords prometheus.Histogram
}

// NewMetrics registers and returns the metric set.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "findings_http_requests_total",
			Help: "Total HTTP requests by route and status",
		}, []string{"route", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "findings_http_request_duration_seconds",
			Help:    "HTTP request duration by route",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"route"}),

		FetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "findings_upstream_fetches_total",
			Help: "Total upstream fetch attempts by source and outcome",
		}, []string{"source", "outcome"}),

		FetchedRecords: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "findings_fetched_records",
			Help:    "Records retrieved per exhaustive tracker fetch",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and durations per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveFetch records one upstream fetch outcome.
func (m *Metrics) ObserveFetch(source string, err error, records int) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.FetchesTotal.WithLabelValues(source, outcome).Inc()
	if err == nil && source == "tracker" {
		m.FetchedRecords.Observe(float64(records))
	}
}
