package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"status-aggregator/internal/models"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.UpstreamFailed(UpstreamStatusPage)
	m.UpstreamFailed(UpstreamStatusPage)
	m.RegionLookupFailed("unknown_code")
	m.SummaryServed(models.StatusSummary{Status: models.StatusDowntime, VitalStatus: models.StatusOperational})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamFailures.WithLabelValues(UpstreamStatusPage)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.UpstreamFailures.WithLabelValues(UpstreamPlatform)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegionLookupFailures.WithLabelValues("unknown_code")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Summaries.WithLabelValues("downtime", "operational")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.UpstreamFailed(UpstreamPlatform)
		m.RegionLookupFailed("transport")
		m.SummaryServed(models.StatusSummary{})
	})
}
