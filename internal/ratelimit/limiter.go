// Package ratelimit implements fixed-window rate limiting on top of the
// shared cache store. Expiry of the counter key resets the window.
package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/keving3ng/notion-gateway/internal/cache"
	"github.com/keving3ng/notion-gateway/internal/logger"
)

// Result reports the outcome of a rate-limit check.
type Result struct {
	Allowed   bool
	Remaining int
}

// Limiter counts requests per endpoint+client pair in fixed windows.
// A soft limit: stale counts under concurrent writes are tolerated.
type Limiter struct {
	store  cache.Store
	max    int
	window time.Duration
	logger logger.Logger
}

type counter struct {
	Count int `json:"count"`
}

func NewLimiter(store cache.Store, max int, window time.Duration, log logger.Logger) *Limiter {
	return &Limiter{
		store:  store,
		max:    max,
		window: window,
		logger: log,
	}
}

// Window returns the window length, used for Retry-After headers.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Check increments the counter for endpoint+clientIP and reports whether
// the request is allowed. A store failure fails open: blocking legitimate
// traffic on a cache outage is worse than letting a burst through.
func (l *Limiter) Check(ctx context.Context, endpoint, clientIP string) Result {
	key := "ratelimit:" + endpoint + ":" + clientIP

	count := 1
	data, err := l.store.Get(ctx, key)
	switch {
	case err == nil:
		var c counter
		if json.Unmarshal(data, &c) == nil {
			count = c.Count + 1
		}
	case !errors.Is(err, cache.ErrNotFound):
		l.logger.Warn("rate limit store read failed, allowing request",
			logger.String("endpoint", endpoint),
			logger.Error(err),
		)
		return Result{Allowed: true, Remaining: l.max}
	}

	// Write back with the full window TTL even when denied, so the window
	// resets only by expiry.
	data, _ = json.Marshal(counter{Count: count})
	if err := l.store.Set(ctx, key, data, l.window); err != nil {
		l.logger.Warn("rate limit store write failed, allowing request",
			logger.String("endpoint", endpoint),
			logger.Error(err),
		)
		return Result{Allowed: true, Remaining: l.max}
	}

	remaining := l.max - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= l.max,
		Remaining: remaining,
	}
}
