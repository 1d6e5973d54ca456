package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	memcache "tasktracker/internal/adapter/cache/memory"
	rediscache "tasktracker/internal/adapter/cache/redis"
	"tasktracker/internal/adapter/database/memory"
	"tasktracker/internal/adapter/database/postgres"
	pgrepository "tasktracker/internal/adapter/database/postgres/repository"
	"tasktracker/internal/adapter/database/sqlite"
	sqliterepository "tasktracker/internal/adapter/database/sqlite/repository"
	"tasktracker/internal/adapter/http/handler"
	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/port"
	"tasktracker/internal/core/service"
	"tasktracker/internal/core/telemetry"
	"tasktracker/pkg/auth"
	"tasktracker/pkg/config"
)

type Container struct {
	UserRepo     port.UserRepository
	CategoryRepo port.CategoryRepository
	TodoRepo     port.TodoRepository
	Cache        port.CacheRepository

	AuthUseCase     port.AuthService
	CategoryUseCase port.CategoryService
	TodoUseCase     port.TodoService
	Tokens          port.TokenIssuer

	AuthHandler     *handler.AuthHandler
	CategoryHandler *handler.CategoryHandler
	TodoHandler     *handler.TodoHandler
	HealthHandler   *handler.HealthHandler

	closers []func() error
}

// NewContainer wires the configured storage and cache into services and
// handlers.
func NewContainer(ctx context.Context, cfg *config.AppConfig, metrics *telemetry.AppMetrics, logger *otelzap.Logger) (*Container, error) {
	c := &Container{}
	checks := map[string]port.Pinger{}

	if err := c.openStorage(ctx, cfg, checks); err != nil {
		return nil, err
	}

	if err := c.openCache(ctx, cfg, checks, logger); err != nil {
		c.Close()
		return nil, err
	}

	todoLists := service.NewListCache[domain.Todo](c.Cache, "todos", cfg.CacheTTL, metrics, logger)
	categoryLists := service.NewListCache[domain.Category](c.Cache, "categories", cfg.CacheTTL, metrics, logger)

	c.AuthUseCase = service.NewAuthService(c.UserRepo, metrics, logger)
	c.CategoryUseCase = service.NewCategoryService(c.CategoryRepo, categoryLists, metrics, logger)
	c.TodoUseCase = service.NewTodoService(c.TodoRepo, todoLists, metrics, logger)
	c.Tokens = auth.NewJWT(cfg.JWTSecret, cfg.TokenTTL)

	c.AuthHandler = handler.NewAuthHandler(c.AuthUseCase, c.Tokens, cfg.EnforceHTTPS, int(cfg.TokenTTL.Seconds()))
	c.CategoryHandler = handler.NewCategoryHandler(c.CategoryUseCase)
	c.TodoHandler = handler.NewTodoHandler(c.TodoUseCase, c.CategoryUseCase)
	c.HealthHandler = handler.NewHealthHandler(checks)

	return c, nil
}

func (c *Container) openStorage(ctx context.Context, cfg *config.AppConfig, checks map[string]port.Pinger) error {
	switch cfg.DatabaseDriver {
	case "memory":
		store := memory.NewStore()

		c.UserRepo = memory.NewUserRepository(store)
		c.CategoryRepo = memory.NewCategoryRepository(store)
		c.TodoRepo = memory.NewTodoRepository(store)

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.DatabaseURL)

		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}

		c.UserRepo = pgrepository.NewUserRepository(db)
		c.CategoryRepo = pgrepository.NewCategoryRepository(db)
		c.TodoRepo = pgrepository.NewTodoRepository(db)
		c.closers = append(c.closers, func() error { db.Close(); return nil })
		checks["database"] = db

	default:
		db, err := sqlite.NewDB(sqlite.Options{Path: cfg.DatabasePath, LogLevel: cfg.SQLLogLevel})

		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}

		c.UserRepo = sqliterepository.NewUserRepository(db)
		c.CategoryRepo = sqliterepository.NewCategoryRepository(db)
		c.TodoRepo = sqliterepository.NewTodoRepository(db)
		c.closers = append(c.closers, db.Close)
		checks["database"] = db
	}

	return nil
}

// openCache falls back to running without a list cache when redis is
// unreachable at startup.
func (c *Container) openCache(ctx context.Context, cfg *config.AppConfig, checks map[string]port.Pinger, logger *otelzap.Logger) error {
	switch cfg.CacheBackend {
	case "memory":
		c.Cache = memcache.NewCache(cfg.CacheTTL)
	case "redis":
		cache, err := rediscache.NewCache(ctx, cfg.RedisURL)

		if errors.Is(err, domain.ErrStorageUnavailable) {
			logger.Ctx(ctx).Warn("redis unavailable, list cache disabled", zap.Error(err))
			return nil
		}

		if err != nil {
			return fmt.Errorf("open redis: %w", err)
		}

		c.Cache = cache

		if pinger, ok := cache.(port.Pinger); ok {
			checks["cache"] = pinger
		}
	}

	if c.Cache != nil {
		c.closers = append(c.closers, c.Cache.Close)
	}

	return nil
}

func (c *Container) Close() error {
	var errs []error

	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}

	return errors.Join(errs...)
}
