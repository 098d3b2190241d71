package images_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keving3ng/notion-gateway/internal/cache"
	"github.com/keving3ng/notion-gateway/internal/images"
)

func TestBinaryCache_RoundTrip(t *testing.T) {
	binCache := images.NewBinaryCache(cache.NewMemoryStore(), 0)
	ctx := context.Background()

	obj := &images.Object{
		ContentType: "image/png",
		Data:        []byte{0x89, 'P', 'N', 'G'},
	}
	require.NoError(t, binCache.Put(ctx, "block-1", obj))

	got, err := binCache.Get(ctx, "block-1")
	require.NoError(t, err)
	assert.Equal(t, "image/png", got.ContentType)
	assert.Equal(t, obj.Data, got.Data)
}

func TestBinaryCache_Miss(t *testing.T) {
	binCache := images.NewBinaryCache(cache.NewMemoryStore(), 0)

	_, err := binCache.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}
