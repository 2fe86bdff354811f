package filesource

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
)

// CacheConfig sizes a Cache.
type CacheConfig struct {
	MaxBytes int64
}

// Cache wraps a FileSource and keeps successful responses in memory.
// Tiles are never cached here.
type Cache struct {
	next  FileSource
	cache *ristretto.Cache
}

// NewCache wraps next with a ristretto cache bounded by cfg.MaxBytes.
func NewCache(next FileSource, cfg CacheConfig) (*Cache, error) {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 64 << 20
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     cfg.MaxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resource cache: %w", err)
	}
	return &Cache{next: next, cache: c}, nil
}

func (c *Cache) Request(res Resource, cb Callback) *Request {
	if res.Kind != KindTile {
		if v, ok := c.cache.Get(res.URL); ok {
			data := v.([]byte)
			return Go(func(context.Context) ([]byte, error) { return data, nil }, cb)
		}
	}
	return c.next.Request(res, func(r Response) {
		if r.Err == nil && res.Kind != KindTile {
			c.cache.Set(res.URL, r.Data, int64(len(r.Data))+1)
			c.cache.Wait()
		}
		cb(r)
	})
}

// Close releases the cache.
func (c *Cache) Close() {
	c.cache.Close()
}
