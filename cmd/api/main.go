package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	server "tasktracker/internal/adapter/http"
	"tasktracker/internal/adapter/http/routes"
	"tasktracker/internal/adapter/telemetry"
	"tasktracker/pkg/config"
	"tasktracker/pkg/logger"
)

var version = "dev"

func main() {
	cfg, err := config.Load()

	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	appLogger, err := logger.New(routes.ServiceName, cfg.LogLevel)

	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Server stopped with error", zap.Error(err))
		appLogger.Sync()
		os.Exit(1)
	}

	appLogger.Sync()
}

func run(cfg *config.AppConfig, appLogger *otelzap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    routes.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, appLogger)

	if err != nil {
		return err
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			appLogger.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	return server.StartServer(ctx, cfg, tel.AppMetrics, appLogger)
}
