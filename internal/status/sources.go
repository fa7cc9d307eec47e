package status

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"status-aggregator/internal/config"
	"status-aggregator/internal/database"
	"status-aggregator/internal/kv"
	"status-aggregator/internal/logging"
	"status-aggregator/internal/models"
	"status-aggregator/internal/regions"
)

// OpenRegionSource connects to the backend named by cfg.RegionsSource. The
// returned close function releases the connection and is never nil.
func OpenRegionSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (regions.Source, func(), error) {
	logger = logging.OrNop(logger)
	switch cfg.RegionsSource {
	case config.SourceEnv:
		return regions.NewEnvSource(cfg.RegionsJSON), func() {}, nil

	case config.SourceRedis:
		c, err := kv.New(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		logger.Info("region table source: redis", zap.String("key", cfg.RegionsRedisKey))
		return c.Regions(cfg.RegionsRedisKey), func() { _ = c.Close() }, nil

	case config.SourcePostgres:
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("region table source: postgres")
		return db.Regions(), db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown region source %q", cfg.RegionsSource)
}

// PublishRegions copies table into the redis or postgres backend named by
// cfg.RegionsSource, so a table kept in REGIONS can seed the shared store.
func PublishRegions(ctx context.Context, cfg *config.Config, table models.RegionTable) error {
	switch cfg.RegionsSource {
	case config.SourceRedis:
		c, err := kv.New(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer c.Close()
		return c.Regions(cfg.RegionsRedisKey).Put(ctx, table)

	case config.SourcePostgres:
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		return db.UpsertRegions(ctx, table)
	}
	return fmt.Errorf("region source %q is read-only", cfg.RegionsSource)
}
