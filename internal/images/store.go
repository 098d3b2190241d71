package images

import (
	"context"
	"encoding/json"
	"time"

	"github.com/keving3ng/notion-gateway/internal/cache"
)

// Object is a cached image: raw bytes plus the content type they were
// served with.
type Object struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// BinaryCache stores fetched image bytes keyed by block ID. Entries are
// content-addressed by block ID and refreshed lazily on the next miss,
// so a zero TTL (never expire) is the usual configuration.
type BinaryCache struct {
	store cache.Store
	ttl   time.Duration
}

func NewBinaryCache(store cache.Store, ttl time.Duration) *BinaryCache {
	return &BinaryCache{store: store, ttl: ttl}
}

func (c *BinaryCache) key(blockID string) string {
	return "image:" + blockID
}

// Get returns the cached image for blockID, or cache.ErrNotFound.
func (c *BinaryCache) Get(ctx context.Context, blockID string) (*Object, error) {
	data, err := c.store.Get(ctx, c.key(blockID))
	if err != nil {
		return nil, err
	}

	var obj Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// Put stores the image bytes for blockID.
func (c *BinaryCache) Put(ctx context.Context, blockID string, obj *Object) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.key(blockID), data, c.ttl)
}
