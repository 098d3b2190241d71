package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keving3ng/notion-gateway/internal/cache"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := cache.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	_, err = store.Get(ctx, "absent")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := cache.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 30*time.Millisecond))

	time.Sleep(100 * time.Millisecond)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	store := cache.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))

	time.Sleep(50 * time.Millisecond)

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}
