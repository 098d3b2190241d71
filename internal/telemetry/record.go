package telemetry

import (
	"strconv"
	"time"
)

// All recorders tolerate a nil receiver so tests can run without touching
// the global Prometheus registry.

func (m *Metrics) ObserveRequest(endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *Metrics) IncCacheHit(endpoint string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) IncCacheMiss(endpoint string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) IncUpstreamRequest(operation string) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncRateLimited(endpoint string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) IncImageBlocked() {
	if m == nil {
		return
	}
	m.ImagesBlocked.Inc()
}
