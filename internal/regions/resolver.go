// Package regions resolves which deployment region serves each public hostname.
package regions

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"status-aggregator/internal/logging"
	"status-aggregator/internal/metrics"
	"status-aggregator/internal/models"
)

// Config names the two public hostnames and the fixed region code of the API host.
type Config struct {
	PrimaryHost   string
	APIHost       string
	APIRegionCode string
}

// Platform reports the default region code configured on the deployment platform.
type Platform interface {
	DefaultRegion(ctx context.Context) (string, error)
}

// Resolver is built per request and holds no state between calls.
type Resolver struct {
	cfg      Config
	source   Source
	platform Platform
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func NewResolver(cfg Config, source Source, platform Platform, logger *zap.Logger, m *metrics.Metrics) *Resolver {
	return &Resolver{
		cfg:      cfg,
		source:   source,
		platform: platform,
		log:      logging.OrNop(logger).Named("regions"),
		metrics:  m,
	}
}

// GetRegionList returns the configured region table, or an empty table when
// the source is missing or unreadable.
func (r *Resolver) GetRegionList(ctx context.Context) models.RegionTable {
	if r.source == nil {
		return models.RegionTable{}
	}
	table, err := r.source.RegionTable(ctx)
	if err != nil {
		r.log.Warn("region table unavailable, treating as empty", zap.Error(err))
		r.metrics.UpstreamFailed(metrics.UpstreamRegions)
		return models.RegionTable{}
	}
	return table
}

// GetIDRegion resolves the region currently serving the primary host.
// Any failure yields models.UnknownRegion.
func (r *Resolver) GetIDRegion(ctx context.Context) models.Region {
	return r.idRegion(ctx, r.GetRegionList(ctx))
}

func (r *Resolver) idRegion(ctx context.Context, table models.RegionTable) models.Region {
	if r.platform == nil {
		r.metrics.RegionLookupFailed(ReasonNotConfigured)
		return models.UnknownRegion
	}
	code, err := r.platform.DefaultRegion(ctx)
	if err != nil {
		reason := ReasonTransport
		var lerr *LookupError
		if errors.As(err, &lerr) {
			reason = lerr.Reason
		}
		r.log.Warn("default region lookup failed", zap.String("reason", reason), zap.Error(err))
		r.metrics.UpstreamFailed(metrics.UpstreamPlatform)
		r.metrics.RegionLookupFailed(reason)
		return models.UnknownRegion
	}

	if _, ok := table[code]; !ok {
		r.log.Warn("default region is not in the region table", zap.String("code", code))
		r.metrics.RegionLookupFailed(ReasonUnknownCode)
		return models.UnknownRegion
	}
	return table.Lookup(code)
}

// GetAPIRegion returns the table entry for the API host's fixed region code.
// ok is false when the code is not in the table.
func (r *Resolver) GetAPIRegion(ctx context.Context) (region models.Region, ok bool) {
	return r.apiRegion(r.GetRegionList(ctx))
}

func (r *Resolver) apiRegion(table models.RegionTable) (models.Region, bool) {
	if _, ok := table[r.cfg.APIRegionCode]; !ok {
		return models.Region{}, false
	}
	return table.Lookup(r.cfg.APIRegionCode), true
}

// GetRegions maps both public hostnames to their region. The API host is
// left out when its region is unknown. The source is read once.
func (r *Resolver) GetRegions(ctx context.Context) models.RegionTable {
	return r.ResolveHosts(ctx, r.GetRegionList(ctx))
}

// ResolveHosts is GetRegions over an already loaded table.
func (r *Resolver) ResolveHosts(ctx context.Context, table models.RegionTable) models.RegionTable {
	out := models.RegionTable{
		r.cfg.PrimaryHost: r.idRegion(ctx, table),
	}
	if region, ok := r.apiRegion(table); ok {
		out[r.cfg.APIHost] = region
	}
	return out
}
