// Package healthcheck reduces status-page data into the summary served to the
// status dashboard.
//
// An Aggregator lives for one request. FetchData loads sections, resources and
// active reports concurrently; if any of the three calls fails the Aggregator
// carries on with empty collections, so a broken status page reads as
// "operational" instead of taking the dashboard down with it. The failure is
// logged and counted.
package healthcheck

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"status-aggregator/internal/logging"
	"status-aggregator/internal/metrics"
	"status-aggregator/internal/models"
	"status-aggregator/internal/statuspage"
)

// VitalMarker is the suffix that marks a section as vital.
const VitalMarker = "*"

// Source is the status-page backend.
type Source interface {
	Sections(ctx context.Context) (statuspage.Result[statuspage.RawSection], error)
	Resources(ctx context.Context) (statuspage.Result[statuspage.RawResource], error)
	Reports(ctx context.Context) (statuspage.Result[statuspage.RawReport], error)
}

// Aggregator joins the raw status-page collections for a single request.
type Aggregator struct {
	regions models.RegionTable
	source  Source
	now     func() time.Time
	log     *zap.Logger
	metrics *metrics.Metrics

	sections  []statuspage.RawSection
	resources []statuspage.RawResource
	reports   []statuspage.RawReport
}

// NewAggregator creates an Aggregator. regions maps public resource names to
// the region serving them.
func NewAggregator(regions models.RegionTable, source Source, logger *zap.Logger, m *metrics.Metrics) *Aggregator {
	if regions == nil {
		regions = models.RegionTable{}
	}
	return &Aggregator{
		regions: regions,
		source:  source,
		now:     time.Now,
		log:     logging.OrNop(logger).Named("healthcheck"),
		metrics: m,
	}
}

// SetClock replaces the clock used to decide which reports are still active.
func (a *Aggregator) SetClock(now func() time.Time) {
	a.now = now
}

// FetchData loads the three collections. Every response is decoded before
// any status is checked; a single failure empties all three.
func (a *Aggregator) FetchData(ctx context.Context) {
	var (
		sections  statuspage.Result[statuspage.RawSection]
		resources statuspage.Result[statuspage.RawResource]
		reports   statuspage.Result[statuspage.RawReport]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sections, err = a.source.Sections(gctx)
		return err
	})
	g.Go(func() (err error) {
		resources, err = a.source.Resources(gctx)
		return err
	})
	g.Go(func() (err error) {
		reports, err = a.source.Reports(gctx)
		return err
	})

	err := g.Wait()
	if err == nil && (!sections.OK() || !resources.OK() || !reports.OK()) {
		err = fmt.Errorf("status page returned sections=%d resources=%d reports=%d",
			sections.StatusCode, resources.StatusCode, reports.StatusCode)
	}
	if err != nil {
		a.log.Warn("status page fetch failed, reporting no known issues", zap.Error(err))
		a.metrics.UpstreamFailed(metrics.UpstreamStatusPage)
		a.sections, a.resources, a.reports = nil, nil, nil
		return
	}

	now := a.now()
	active := make([]statuspage.RawReport, 0, len(reports.Data))
	for _, rep := range reports.Data {
		if rep.ActiveAt(now) {
			active = append(active, rep)
		}
	}

	a.sections = sections.Data
	a.resources = resources.Data
	a.reports = active
	a.log.Debug("status page fetched",
		zap.Int("sections", len(a.sections)),
		zap.Int("resources", len(a.resources)),
		zap.Int("active_reports", len(a.reports)),
	)
}

// MapResources joins every fetched resource with its region, its first
// matching active report and its section, in upstream order.
func (a *Aggregator) MapResources() []models.AggregatedResource {
	out := make([]models.AggregatedResource, 0, len(a.resources))
	for _, res := range a.resources {
		region := a.regions.Lookup(res.PublicName)

		var reason *string
		if rep, ok := a.reportFor(res.ID); ok && rep.Title != "" {
			title := rep.Title
			reason = &title
		}

		vital := false
		if sec, ok := a.sectionFor(res.SectionID); ok {
			vital = strings.HasSuffix(sec.Name, VitalMarker)
		}

		out = append(out, models.AggregatedResource{
			RegionID:       region.ID,
			RegionLocation: region.Location,
			Name:           res.PublicName,
			Status:         models.Status(res.Status),
			Reason:         reason,
			IsVital:        vital,
		})
	}
	return out
}

func (a *Aggregator) reportFor(resourceID string) (statuspage.RawReport, bool) {
	for _, rep := range a.reports {
		if rep.Affects(resourceID) {
			return rep, true
		}
	}
	return statuspage.RawReport{}, false
}

func (a *Aggregator) sectionFor(id *int64) (statuspage.RawSection, bool) {
	if id == nil {
		return statuspage.RawSection{}, false
	}
	for _, sec := range a.sections {
		if sec.ID == *id {
			return sec, true
		}
	}
	return statuspage.RawSection{}, false
}

// StatusPageData fetches, joins and summarises the status page.
func (a *Aggregator) StatusPageData(ctx context.Context) models.StatusSummary {
	a.FetchData(ctx)
	resources := a.MapResources()

	affected := make([]string, 0)
	apps := make([]models.App, 0)
	for _, r := range resources {
		if r.Status == models.StatusOperational {
			continue
		}
		if r.RegionID != models.UnknownID {
			affected = append(affected, r.RegionID)
		}
		apps = append(apps, models.App{Name: r.Name, Reason: r.Reason, Status: r.Status})
	}

	return models.StatusSummary{
		VitalStatus:     VitalStatus(resources),
		Status:          Status(resources),
		Resources:       resources,
		AffectedRegions: affected,
		Apps:            apps,
	}
}
