package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "FETCH_URL", "REGIONS", "REGIONS_SOURCE", "API_REGION_CODE", "UPSTREAM_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "{}", cfg.RegionsJSON)
	assert.Equal(t, SourceEnv, cfg.RegionsSource)
	assert.Equal(t, DefaultAPIRegionCode, cfg.APIRegionCode)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	require.NoError(t, cfg.Validate())
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FETCH_URL", "https://status.example.com/api/v2/")
	t.Setenv("REGIONS_SOURCE", "Redis")
	t.Setenv("UPSTREAM_TIMEOUT", "3")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://status.example.com/api/v2", cfg.StatusPageURL)
	assert.Equal(t, SourceRedis, cfg.RegionsSource)
	assert.Equal(t, 3*time.Second, cfg.Timeout())
}

func TestLoad_InvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("UPSTREAM_TIMEOUT", "soon")

	cfg := Load()
	assert.Equal(t, DefaultUpstreamTimeoutSec, cfg.UpstreamTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown source", mutate: func(c *Config) { c.RegionsSource = "etcd" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.UpstreamTimeout = 0 }, wantErr: true},
		{name: "missing host", mutate: func(c *Config) { c.APIHost = "" }, wantErr: true},
		{name: "missing port", mutate: func(c *Config) { c.Port = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Port:            "8080",
				RegionsSource:   SourcePostgres,
				UpstreamTimeout: 5,
				PrimaryHost:     "id.example.com",
				APIHost:         "api.example.com",
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
