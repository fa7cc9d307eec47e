package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"status-aggregator/internal/config"
	"status-aggregator/internal/metrics"
	"status-aggregator/internal/models"
	"status-aggregator/internal/regions"
)

const regionTable = `{
	"fra1": {"id": "fra1", "location": "Frankfurt"},
	"ist1": {"id": "ist1", "location": "Istanbul"}
}`

func statusPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/sections", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":1,"attributes":{"name":"Login*"}},{"id":2,"attributes":{"name":"Gateway"}}]}`))
	})
	mux.HandleFunc("/resources", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[
			{"id":100,"attributes":{"public_name":"id.example.com","status":"operational","status_page_section_id":1}},
			{"id":"101","attributes":{"public_name":"api.example.com","status":"downtime","status_page_section_id":"2"}}
		]}`))
	})
	mux.HandleFunc("/status-reports", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"attributes":{"title":"Gateway errors","ends_at":"2099-06-01T00:00:00Z","affected_resources":[{"status_page_resource_id":"101"}]}}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func platformServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"resourceConfig":{"functionDefaultRegions":["fra1"]}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testService(t *testing.T, source regions.Source, m *metrics.Metrics) *Service {
	t.Helper()
	cfg := Config{
		StatusPageURL: statusPageServer(t).URL,
		PlatformURL:   platformServer(t).URL,
		PrimaryHost:   "id.example.com",
		APIHost:       "api.example.com",
		APIRegionCode: "ist1",
		Timeout:       time.Second,
	}
	return NewService(cfg, source, nil, m)
}

func TestNewConfig(t *testing.T) {
	cfg := &config.Config{
		StatusPageURL:   "https://status.example.com/api",
		StatusPageToken: "sp",
		PlatformURL:     "https://platform.example.com/project",
		PlatformToken:   "pt",
		PrimaryHost:     "id.example.com",
		APIHost:         "api.example.com",
		APIRegionCode:   "ist1",
		UpstreamTimeout: 3,
	}
	got := NewConfig(cfg)
	assert.Equal(t, 3*time.Second, got.Timeout)
	assert.Equal(t, "sp", got.StatusPageToken)
	assert.Equal(t, regions.Config{PrimaryHost: "id.example.com", APIHost: "api.example.com", APIRegionCode: "ist1"}, got.regions())
}

func TestSummary(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	svc := testService(t, regions.NewEnvSource(regionTable), m)

	got := svc.Summary(context.Background())

	assert.Equal(t, models.StatusDowntime, got.Status)
	assert.Equal(t, models.StatusOperational, got.VitalStatus)
	require.Len(t, got.Resources, 2)
	assert.Equal(t, "fra1", got.Resources[0].RegionID)
	assert.True(t, got.Resources[0].IsVital)
	assert.Equal(t, "Istanbul", got.Resources[1].RegionLocation)
	assert.Equal(t, []string{"ist1"}, got.AffectedRegions)
	require.Len(t, got.Apps, 1)
	require.NotNil(t, got.Apps[0].Reason)
	assert.Equal(t, "Gateway errors", *got.Apps[0].Reason)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Summaries.WithLabelValues("downtime", "operational")))
}

func TestSummary_NoRegionTable(t *testing.T) {
	svc := testService(t, regions.NewEnvSource(`not json`), nil)

	got := svc.Summary(context.Background())
	require.Len(t, got.Resources, 2)
	for _, r := range got.Resources {
		assert.Equal(t, models.UnknownID, r.RegionID)
		assert.Equal(t, models.UnknownID, r.RegionLocation)
	}
	assert.Empty(t, got.AffectedRegions)
	assert.Len(t, got.Apps, 1)
}

func TestRegions(t *testing.T) {
	svc := testService(t, regions.NewEnvSource(regionTable), nil)
	assert.Equal(t, models.RegionTable{
		"id.example.com":  {ID: "fra1", Location: "Frankfurt"},
		"api.example.com": {ID: "ist1", Location: "Istanbul"},
	}, svc.Regions(context.Background()))
}

func TestSnapshot(t *testing.T) {
	svc := testService(t, regions.NewEnvSource(regionTable), nil)
	snap := svc.Snapshot(context.Background())

	assert.Len(t, snap.Regions, 2)
	assert.Contains(t, snap.Regions, "fra1")
	assert.Equal(t, models.StatusDowntime, snap.Healthcheck.Status)
}

type countingSource struct {
	regions.Source
	reads int
}

func (s *countingSource) RegionTable(ctx context.Context) (models.RegionTable, error) {
	s.reads++
	return s.Source.RegionTable(ctx)
}

func TestSnapshot_ReadsRegionSourceOnce(t *testing.T) {
	src := &countingSource{Source: regions.NewEnvSource(regionTable)}
	svc := testService(t, src, nil)

	snap := svc.Snapshot(context.Background())
	assert.Equal(t, 1, src.reads)
	assert.Equal(t, "fra1", snap.Healthcheck.Resources[0].RegionID)

	src.reads = 0
	svc.Summary(context.Background())
	assert.Equal(t, 1, src.reads)
}

func TestSnapshot_JSONKeys(t *testing.T) {
	svc := testService(t, regions.NewEnvSource(regionTable), nil)

	data, err := json.Marshal(svc.Snapshot(context.Background()))
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "regions")
	assert.Contains(t, doc, "healthcheckData")
	assert.Len(t, doc, 2)
}

func TestOpenRegionSource_Env(t *testing.T) {
	cfg := &config.Config{RegionsSource: config.SourceEnv, RegionsJSON: regionTable}
	src, closeFn, err := OpenRegionSource(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer closeFn()

	table, err := src.RegionTable(context.Background())
	require.NoError(t, err)
	assert.Len(t, table, 2)
}

func TestOpenRegionSource_Unknown(t *testing.T) {
	_, _, err := OpenRegionSource(context.Background(), &config.Config{RegionsSource: "etcd"}, nil)
	assert.Error(t, err)
}

func TestPublishRegions_EnvIsReadOnly(t *testing.T) {
	err := PublishRegions(context.Background(), &config.Config{RegionsSource: config.SourceEnv}, models.RegionTable{})
	assert.ErrorContains(t, err, "read-only")
}
