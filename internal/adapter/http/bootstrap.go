package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"tasktracker/internal/adapter/http/routes"
	"tasktracker/internal/adapter/scheduler"
	"tasktracker/internal/core/telemetry"
	"tasktracker/pkg/config"
)

const shutdownTimeout = 10 * time.Second

// StartServer serves the API until ctx is cancelled, then drains in-flight
// requests and releases storage.
func StartServer(ctx context.Context, cfg *config.AppConfig, metrics *telemetry.AppMetrics, logger *otelzap.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	container, err := NewContainer(ctx, cfg, metrics, logger)

	if err != nil {
		return err
	}

	defer container.Close()

	jobs := scheduler.New(container.TodoUseCase, metrics, logger)

	if err := jobs.Register(cfg.OverdueSchedule); err != nil {
		return err
	}

	jobs.Start()
	defer jobs.Stop()

	router := routes.SetupRouter(routes.HandlersConfig{
		AuthHandler:     container.AuthHandler,
		CategoryHandler: container.CategoryHandler,
		TodoHandler:     container.TodoHandler,
		HealthHandler:   container.HealthHandler,
	}, container.Tokens, metrics, logger, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.Info("Server starting",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("database_driver", cfg.DatabaseDriver),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.Bool("rate_limit_enabled", cfg.RateLimitEnabled),
		zap.Bool("https_enforced", cfg.EnforceHTTPS))

	serverErr := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
