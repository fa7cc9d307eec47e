// Package status composes the region resolver and the healthcheck aggregator
// into the summary served by every adapter.
package status

import (
	"context"
	"time"

	"go.uber.org/zap"

	"status-aggregator/internal/config"
	"status-aggregator/internal/healthcheck"
	"status-aggregator/internal/logging"
	"status-aggregator/internal/metrics"
	"status-aggregator/internal/models"
	"status-aggregator/internal/regions"
	"status-aggregator/internal/statuspage"
)

// Config is the immutable configuration of the core. It is built once at
// startup and shared by every request.
type Config struct {
	StatusPageURL   string
	StatusPageToken string
	PlatformURL     string
	PlatformToken   string
	PrimaryHost     string
	APIHost         string
	APIRegionCode   string
	Timeout         time.Duration
}

// NewConfig extracts the core settings from the loaded environment.
func NewConfig(cfg *config.Config) Config {
	return Config{
		StatusPageURL:   cfg.StatusPageURL,
		StatusPageToken: cfg.StatusPageToken,
		PlatformURL:     cfg.PlatformURL,
		PlatformToken:   cfg.PlatformToken,
		PrimaryHost:     cfg.PrimaryHost,
		APIHost:         cfg.APIHost,
		APIRegionCode:   cfg.APIRegionCode,
		Timeout:         cfg.Timeout(),
	}
}

func (c Config) regions() regions.Config {
	return regions.Config{
		PrimaryHost:   c.PrimaryHost,
		APIHost:       c.APIHost,
		APIRegionCode: c.APIRegionCode,
	}
}

// Snapshot is the combined payload of the one-shot adapter.
type Snapshot struct {
	Regions     models.RegionTable   `json:"regions"`
	Healthcheck models.StatusSummary `json:"healthcheckData"`
}

// Service answers status requests. It is safe for concurrent use: the
// resolver and aggregator are rebuilt for every call.
type Service struct {
	cfg        Config
	statusPage healthcheck.Source
	platform   regions.Platform
	source     regions.Source
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// NewService wires the upstream clients from cfg. source supplies the region
// table; logger and m may be nil.
func NewService(cfg Config, source regions.Source, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		cfg:        cfg,
		statusPage: statuspage.NewClient(cfg.StatusPageURL, cfg.StatusPageToken, cfg.Timeout),
		platform:   regions.NewPlatformClient(cfg.PlatformURL, cfg.PlatformToken, cfg.Timeout),
		source:     source,
		log:        logging.OrNop(logger),
		metrics:    m,
	}
}

func (s *Service) resolver() *regions.Resolver {
	return regions.NewResolver(s.cfg.regions(), s.source, s.platform, s.log, s.metrics)
}

// Regions maps the primary and API hostnames to the region serving them.
func (s *Service) Regions(ctx context.Context) models.RegionTable {
	return s.resolver().GetRegions(ctx)
}

// Summary resolves the host regions, then fetches and reduces the status page.
func (s *Service) Summary(ctx context.Context) models.StatusSummary {
	return s.summarise(ctx, s.resolver().GetRegions(ctx))
}

func (s *Service) summarise(ctx context.Context, hosts models.RegionTable) models.StatusSummary {
	summary := healthcheck.NewAggregator(hosts, s.statusPage, s.log, s.metrics).StatusPageData(ctx)
	s.metrics.SummaryServed(summary)
	s.log.Debug("summary computed",
		zap.String("status", string(summary.Status)),
		zap.String("vital_status", string(summary.VitalStatus)),
		zap.Int("resources", len(summary.Resources)),
	)
	return summary
}

// Snapshot returns the raw region table alongside the summary. The region
// source is read once for both.
func (s *Service) Snapshot(ctx context.Context) Snapshot {
	r := s.resolver()
	table := r.GetRegionList(ctx)
	return Snapshot{
		Regions:     table,
		Healthcheck: s.summarise(ctx, r.ResolveHosts(ctx, table)),
	}
}
