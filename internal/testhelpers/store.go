// Package testhelpers provides shared fixtures: a discard logger and a
// miniredis-backed cache store.
package testhelpers

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/keving3ng/notion-gateway/internal/cache"
	"github.com/keving3ng/notion-gateway/internal/logger"
)

// NewTestLogger returns a logger that discards output.
func NewTestLogger() logger.Logger {
	return logger.NewNopLogger()
}

// NewRedisStore starts a miniredis instance and returns a Store backed
// by it. The server is cleaned up with the test.
func NewRedisStore(t *testing.T) (cache.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedisStoreFromClient(client), mr
}
