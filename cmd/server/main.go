package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"status-aggregator/internal/config"
	"status-aggregator/internal/handlers"
	"status-aggregator/internal/logging"
	"status-aggregator/internal/metrics"
	"status-aggregator/internal/status"
)

func main() {
	// Load .env if present.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Region table ---
	source, closeSource, err := status.OpenRegionSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("region source", zap.Error(err))
	}
	defer closeSource()

	if cfg.StatusPageURL == "" {
		logger.Warn("FETCH_URL is not set, every summary will report operational")
	}
	if cfg.PlatformURL == "" {
		logger.Warn("HOST_URL is not set, the primary host region will be N/A")
	}

	// --- Core ---
	reg := prometheus.NewRegistry()
	svc := status.NewService(status.NewConfig(cfg), source, logger, metrics.New(reg))

	// --- Fiber HTTP Server ---
	app := handlers.NewApp(&handlers.Handlers{Service: svc}, handlers.Options{
		RedirectURL: cfg.RedirectURL,
		Gatherer:    reg,
		AccessLog:   true,
	})

	// --- Graceful shutdown ---
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		cancel()
		_ = app.Shutdown()
	}()

	logger.Info("server starting", zap.String("port", cfg.Port), zap.String("regions_source", cfg.RegionsSource))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}
