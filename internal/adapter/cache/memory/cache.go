package memory

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
)

type Cache struct {
	store *cache.Cache
}

func NewCache(defaultTTL time.Duration) port.CacheRepository {
	return &Cache{store: cache.New(defaultTTL, 2*defaultTTL)}
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	c.store.Set(key, stored, ttl)

	return nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	value, found := c.store.Get(key)

	if !found {
		return nil, domain.ErrCacheMiss
	}

	data := value.([]byte)
	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) error {
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}

	return nil
}

func (c *Cache) Close() error {
	c.store.Flush()
	return nil
}
