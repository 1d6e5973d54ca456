package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
	"tasktracker/internal/core/telemetry"
)

// ListCache is a read-through cache of per-user lists. Concurrent misses for
// one user share a single repository read, and every caller decodes its own
// copy of the result. A nil *ListCache reads straight from the repository.
type ListCache[T any] struct {
	cache   port.CacheRepository
	prefix  string
	ttl     time.Duration
	group   singleflight.Group
	metrics *telemetry.AppMetrics
	logger  *otelzap.Logger

	// generations are bumped on invalidation so a fill that started before a
	// write does not store the stale list.
	generations sync.Map
}

func NewListCache[T any](cache port.CacheRepository, prefix string, ttl time.Duration, metrics *telemetry.AppMetrics, logger *otelzap.Logger) *ListCache[T] {
	if cache == nil {
		return nil
	}

	return &ListCache[T]{
		cache:   cache,
		prefix:  prefix,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

func (lc *ListCache[T]) Key(userId int) string {
	return lc.prefix + ":" + strconv.Itoa(userId)
}

func (lc *ListCache[T]) Load(ctx context.Context, userId int, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if lc == nil {
		return fetch(ctx)
	}

	key := lc.Key(userId)
	data, err := lc.cache.Get(ctx, key)

	switch {
	case err == nil:
		lc.metrics.RecordCacheHit(ctx, lc.prefix)
	case errors.Is(err, domain.ErrCacheMiss):
		lc.metrics.RecordCacheMiss(ctx, lc.prefix)
	default:
		lc.metrics.RecordCacheMiss(ctx, lc.prefix)
		lc.logger.Ctx(ctx).Warn("list cache read failed", zap.String("key", key), zap.Error(err))
	}

	if err != nil {
		data, err = lc.fill(ctx, key, fetch)

		if err != nil {
			return nil, err
		}
	}

	items := []T{}

	if err := json.Unmarshal(data, &items); err != nil {
		lc.logger.Ctx(ctx).Warn("list cache decode failed", zap.String("key", key), zap.Error(err))
		lc.cache.Delete(ctx, key)
		return fetch(ctx)
	}

	return items, nil
}

func (lc *ListCache[T]) fill(ctx context.Context, key string, fetch func(context.Context) ([]T, error)) ([]byte, error) {
	result, err, _ := lc.group.Do(key, func() (any, error) {
		// Detached so one caller's cancellation does not fail the others.
		fillCtx := context.WithoutCancel(ctx)
		generation := lc.generation(key).Load()

		items, err := fetch(fillCtx)

		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(items)

		if err != nil {
			return nil, err
		}

		if lc.generation(key).Load() == generation {
			if err := lc.cache.Set(fillCtx, key, data, lc.ttl); err != nil {
				lc.logger.Ctx(ctx).Warn("list cache write failed", zap.String("key", key), zap.Error(err))
			}
		}

		return data, nil
	})

	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

func (lc *ListCache[T]) Invalidate(ctx context.Context, userId int) {
	if lc == nil {
		return
	}

	key := lc.Key(userId)

	lc.generation(key).Add(1)
	lc.group.Forget(key)

	if err := lc.cache.Delete(ctx, key); err != nil {
		lc.logger.Ctx(ctx).Warn("list cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

func (lc *ListCache[T]) generation(key string) *atomic.Uint64 {
	counter, _ := lc.generations.LoadOrStore(key, new(atomic.Uint64))
	return counter.(*atomic.Uint64)
}
