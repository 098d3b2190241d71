package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keving3ng/notion-gateway/internal/cache"
)

func newRedisStore(t *testing.T) (cache.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedisStoreFromClient(client), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestRedisStore_MissIsErrNotFound(t *testing.T) {
	store, _ := newRedisStore(t)

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	mr.FastForward(61 * time.Second)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestNewRedisStore_EmptyAddress(t *testing.T) {
	_, err := cache.NewRedisStore(cache.RedisConfig{})
	assert.ErrorIs(t, err, cache.ErrEmptyAddress)
}
