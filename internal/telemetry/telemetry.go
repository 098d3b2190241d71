// Package telemetry exports Prometheus metrics for the gateway.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all gateway Prometheus metrics.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	CacheHits        *prometheus.CounterVec
	CacheMisses      *prometheus.CounterVec
	UpstreamRequests *prometheus.CounterVec
	RateLimited      *prometheus.CounterVec
	ImagesBlocked    prometheus.Counter
}

// NewMetrics registers and returns the gateway metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total HTTP requests by endpoint and status",
		}, []string{"endpoint", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Request latency by endpoint",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"endpoint"}),

		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_cache_hits_total",
			Help: "Response cache hits by endpoint",
		}, []string{"endpoint"}),

		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_cache_misses_total",
			Help: "Response cache misses by endpoint",
		}, []string{"endpoint"}),

		UpstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_upstream_requests_total",
			Help: "Calls to the Notion API by operation",
		}, []string{"operation"}),

		RateLimited: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_rate_limited_total",
			Help: "Requests rejected by the rate limiter, by endpoint",
		}, []string{"endpoint"}),

		ImagesBlocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gateway_images_blocked_total",
			Help: "Image fetches rejected by the domain allow-list",
		}),
	}
}

// Handler returns the Prometheus scrape handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
