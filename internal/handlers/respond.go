// Package handlers implements the five gateway routes. Every handler
// shares one request shape: local-dev check, rate-limit gate, response
// cache lookup, upstream fetch, projection, async cache store.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keving3ng/notion-gateway/internal/cache"
	"github.com/keving3ng/notion-gateway/internal/logger"
	"github.com/keving3ng/notion-gateway/internal/ratelimit"
	"github.com/keving3ng/notion-gateway/internal/telemetry"
)

const cacheWriteTimeout = 10 * time.Second

// newDetachedContext is for fire-and-forget cache writes: detached from
// the request lifecycle but still bounded.
func newDetachedContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cacheWriteTimeout)
}

// isLocalDev reports whether the request arrived on a loopback hostname.
// Local development skips rate limiting and response caching so content
// is always fresh. This is a convenience, not a security boundary.
func isLocalDev(r *http.Request) bool {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host == "localhost" || host == "127.0.0.1"
}

// responseCacheKey is the canonical request identity for response caching.
func responseCacheKey(r *http.Request) string {
	return "resp:" + r.Host + r.URL.RequestURI()
}

func errorJSON(c *gin.Context, status int, publicMessage string) {
	c.AbortWithStatusJSON(status, gin.H{"error": publicMessage})
}

// rateGate runs the rate limiter and writes the 429 when denied.
// Returns true when the request may proceed.
func rateGate(c *gin.Context, limiter *ratelimit.Limiter, metrics *telemetry.Metrics, endpoint string) bool {
	result := limiter.Check(c.Request.Context(), endpoint, c.ClientIP())
	if result.Allowed {
		return true
	}

	metrics.IncRateLimited(endpoint)
	c.Header("Retry-After", strconv.Itoa(int(limiter.Window().Seconds())))
	errorJSON(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
	return false
}

// responseCache serves and stores JSON response bodies keyed by request URL.
type responseCache struct {
	store   cache.Store
	logger  logger.Logger
	metrics *telemetry.Metrics
}

func newResponseCache(store cache.Store, log logger.Logger, metrics *telemetry.Metrics) *responseCache {
	return &responseCache{store: store, logger: log, metrics: metrics}
}

// serve replays a cached body verbatim. A store failure is a miss:
// recomputation is always safe.
func (rc *responseCache) serve(c *gin.Context, endpoint string, ttl time.Duration) bool {
	key := responseCacheKey(c.Request)

	data, err := rc.store.Get(c.Request.Context(), key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			rc.logger.Warn("response cache read failed",
				logger.String("endpoint", endpoint),
				logger.Error(err),
			)
		}
		rc.metrics.IncCacheMiss(endpoint)
		return false
	}

	rc.metrics.IncCacheHit(endpoint)
	c.Header("Cache-Control", publicMaxAge(ttl))
	c.Data(http.StatusOK, "application/json", data)
	return true
}

// storeAsync writes in a detached goroutine; the reply never waits on
// cache-store latency.
func (rc *responseCache) storeAsync(key string, endpoint string, data []byte, ttl time.Duration) {
	go func() {
		ctx, cancel := newDetachedContext()
		defer cancel()

		if err := rc.store.Set(ctx, key, data, ttl); err != nil {
			rc.logger.Warn("response cache write failed",
				logger.String("endpoint", endpoint),
				logger.Error(err),
			)
		}
	}()
}

// respondJSON writes the payload with the endpoint's Cache-Control and,
// outside local dev, stores it for later hits.
func (rc *responseCache) respondJSON(c *gin.Context, endpoint string, payload any, ttl time.Duration, localDev bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		rc.logger.Error("failed to marshal response",
			logger.String("endpoint", endpoint),
			logger.Error(err),
		)
		errorJSON(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	if localDev {
		c.Header("Cache-Control", "no-store")
	} else {
		c.Header("Cache-Control", publicMaxAge(ttl))
		rc.storeAsync(responseCacheKey(c.Request), endpoint, data, ttl)
	}

	c.Data(http.StatusOK, "application/json", data)
}

func publicMaxAge(ttl time.Duration) string {
	return fmt.Sprintf("public, max-age=%d", int(ttl.Seconds()))
}
