// Command snapshot prints the region table and the current status summary as
// one JSON document and exits. It reads the same environment as the server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"status-aggregator/internal/config"
	"status-aggregator/internal/logging"
	"status-aggregator/internal/regions"
	"status-aggregator/internal/status"
)

func main() {
	var (
		envFile  = pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
		timeout  = pflag.Duration("timeout", 30*time.Second, "overall deadline for the snapshot")
		pretty   = pflag.BoolP("pretty", "p", false, "indent the JSON output")
		summary  = pflag.Bool("summary-only", false, "print only the status summary")
		publish  = pflag.Bool("publish-regions", false, "copy the REGIONS table into the redis or postgres source and exit")
		logLevel = pflag.String("log-level", "", "override LOG_LEVEL")
	)
	pflag.Parse()

	_ = godotenv.Load(*envFile)

	cfg := config.Load()
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *publish {
		table, err := regions.ParseTable([]byte(cfg.RegionsJSON))
		if err != nil {
			logger.Fatal("parse REGIONS", zap.Error(err))
		}
		if err := status.PublishRegions(ctx, cfg, table); err != nil {
			logger.Fatal("publish regions", zap.Error(err))
		}
		logger.Info("regions published", zap.String("source", cfg.RegionsSource), zap.Int("count", len(table)))
		return
	}

	source, closeSource, err := status.OpenRegionSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("region source", zap.Error(err))
	}
	defer closeSource()

	svc := status.NewService(status.NewConfig(cfg), source, logger, nil)

	var out any
	if *summary {
		out = svc.Summary(ctx)
	} else {
		out = svc.Snapshot(ctx)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
