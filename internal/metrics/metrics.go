// Package metrics exposes the counters that make the fail-open paths visible
// to operators while the public endpoint keeps answering 200.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"status-aggregator/internal/models"
)

const namespace = "status"

// Upstream labels.
const (
	UpstreamStatusPage = "statuspage"
	UpstreamPlatform   = "platform"
	UpstreamRegions    = "region_source"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	UpstreamFailures     *prometheus.CounterVec
	RegionLookupFailures *prometheus.CounterVec
	Summaries            *prometheus.CounterVec
}

// New creates the collectors and registers them, plus the Go and process
// collectors, on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_failures_total",
			Help:      "Upstream calls that failed and were replaced by a fallback.",
		}, []string{"upstream"}),
		RegionLookupFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "region_lookup_failures_total",
			Help:      "Primary-host region lookups that degraded to the unknown region.",
		}, []string{"reason"}),
		Summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Status summaries served, by overall and vital status.",
		}, []string{"status", "vital_status"}),
	}
	reg.MustRegister(
		m.UpstreamFailures,
		m.RegionLookupFailures,
		m.Summaries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// UpstreamFailed counts a failed call to the named upstream.
func (m *Metrics) UpstreamFailed(upstream string) {
	if m == nil {
		return
	}
	m.UpstreamFailures.WithLabelValues(upstream).Inc()
}

// RegionLookupFailed counts a degraded primary-host region lookup.
func (m *Metrics) RegionLookupFailed(reason string) {
	if m == nil {
		return
	}
	m.RegionLookupFailures.WithLabelValues(reason).Inc()
}

// SummaryServed counts a computed summary.
func (m *Metrics) SummaryServed(s models.StatusSummary) {
	if m == nil {
		return
	}
	m.Summaries.WithLabelValues(string(s.Status), string(s.VitalStatus)).Inc()
}
