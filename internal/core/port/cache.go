package port

import (
	"context"
	"time"
)

// CacheRepository stores opaque values. Get returns domain.ErrCacheMiss for
// absent or expired keys.
type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}
