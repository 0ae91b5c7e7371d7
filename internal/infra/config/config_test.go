package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, Validate(cfg))
	require.Len(t, cfg.Search.Backends, 3)
	assert.Equal(t, BackendSearXNG, cfg.Search.Backends[0].Type,
		"searxng should sit first in the priority order")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Server.Addr)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  addr: ":8080"
search:
  max_results: 5
  cache_ttl: 90s
logger:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, 90*time.Second, cfg.Search.CacheTTL)
	assert.Equal(t, "json", cfg.Logger.Format)

	// Unset fields keep their defaults.
	assert.Len(t, cfg.Search.Backends, 3)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MIRRORSEARCH_ADDR", ":9999")
	t.Setenv("MIRRORSEARCH_LOGGER_LEVEL", "debug")
	t.Setenv("MIRRORSEARCH_SEARXNG_URL", "https://searx.internal")
	t.Setenv("MIRRORSEARCH_MAX_RESULTS", "7")
	t.Setenv("MIRRORSEARCH_ANONYMIZER_ENABLED", "false")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 7, cfg.Search.MaxResults)
	assert.False(t, cfg.Anonymizer.Enabled)
	for _, b := range cfg.Search.Backends {
		if b.Type == BackendSearXNG {
			assert.Equal(t, "https://searx.internal", b.URL)
		}
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero rate limit", func(c *Config) { c.Server.RateLimitPerMin = 0 }},
		{"max results too large", func(c *Config) { c.Search.MaxResults = 100 }},
		{"no backends", func(c *Config) { c.Search.Backends = nil }},
		{"duplicate backend name", func(c *Config) {
			c.Search.Backends[1].Name = c.Search.Backends[0].Name
		}},
		{"unknown backend type", func(c *Config) { c.Search.Backends[0].Type = "mystery" }},
		{"zero backend timeout", func(c *Config) { c.Search.Backends[0].Timeout = 0 }},
		{"bad backend url", func(c *Config) { c.Search.Backends[0].URL = "not a url" }},
		{"bad logger format", func(c *Config) { c.Logger.Format = "xml" }},
		{"bad tracer exporter", func(c *Config) { c.Tracer.Exporter = "jaeger" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}
