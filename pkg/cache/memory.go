package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 10 * time.Minute

// MemoryCache keeps entries in process memory.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() Cache {
	return &MemoryCache{
		items: gocache.New(gocache.NoExpiration, memoryCleanupInterval),
	}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	data, ok := value.([]byte)
	if !ok {
		c.items.Delete(key)
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores a copy of data so callers may reuse their buffer.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	c.items.Set(key, stored, ttl)
	return nil
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

// Close drops every entry.
func (c *MemoryCache) Close() error {
	c.items.Flush()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
