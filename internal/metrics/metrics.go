// Package metrics defines the Prometheus collectors for HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics holds the Prometheus metrics recorded per request.
type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseBytes   prometheus.Histogram
	PanicsTotal     prometheus.Counter
}

// NewHTTPMetrics initializes the metrics and registers them with reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)

	return &HTTPMetrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reqlog",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of completed HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "reqlog",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time spent in the downstream handler.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		ResponseBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reqlog",
			Subsystem: "http",
			Name:      "response_bytes",
			Help:      "Size of captured response bodies.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10), // 64B .. 16MB
		}),
		PanicsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reqlog",
			Subsystem: "http",
			Name:      "panics_total",
			Help:      "Total number of requests whose handler panicked.",
		}),
	}
}

// Observe records one completed request.
func (m *HTTPMetrics) Observe(method string, code int, elapsed time.Duration, size int) {
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	m.ResponseBytes.Observe(float64(size))
}

// ObservePanic records a request that never completed.
func (m *HTTPMetrics) ObservePanic() {
	m.PanicsTotal.Inc()
}
