// Package cache provides the shared TTL key-value store used for response
// caching, rate-limit counters, and cached image bytes.
//
// Callers must degrade gracefully when the store fails: response caching
// falls through to recomputation, rate limiting fails open.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// Store is a TTL key-value store. Implementations must be safe for
// concurrent use; last-write-wins is acceptable.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
