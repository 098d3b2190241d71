package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type memoryStore struct {
	cache *ttlcache.Cache[string, []byte]
}

// NewMemoryStore returns an in-process Store. Used when Redis is disabled
// (local development, single-instance deployments).
func NewMemoryStore() Store {
	c := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go c.Start()
	return &memoryStore{cache: c}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	item := s.cache.Get(key)
	if item == nil {
		return nil, ErrNotFound
	}
	return item.Value(), nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = ttlcache.NoTTL
	}
	s.cache.Set(key, value, ttl)
	return nil
}
