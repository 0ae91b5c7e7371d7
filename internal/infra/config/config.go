package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Search     SearchConfig     `yaml:"search"`
	Anonymizer AnonymizerConfig `yaml:"anonymizer"`
	Logger     LoggerConfig     `yaml:"logger"`
	Tracer     TracerConfig     `yaml:"tracer"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	TrustedProxies  []string      `yaml:"trusted_proxies,omitempty"`
}

// SearchConfig holds orchestrator and backend settings.
type SearchConfig struct {
	MaxResults     int                  `yaml:"max_results"`
	CacheTTL       time.Duration        `yaml:"cache_ttl"`
	CacheSize      int                  `yaml:"cache_size"`
	Backends       []BackendConfig      `yaml:"backends"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// Backend adapter types.
const (
	BackendSearXNG       = "searxng"
	BackendDuckDuckGo    = "duckduckgo"
	BackendDuckDuckGoWeb = "duckduckgo-html"
)

// BackendConfig holds settings for a single search backend. Backends are
// tried in the order they appear in the config.
type BackendConfig struct {
	Name    string        `yaml:"name"`
	Type    string        `yaml:"type"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// CircuitBreakerConfig holds per-backend circuit breaker settings.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// AnonymizerConfig holds anonymization engine settings.
type AnonymizerConfig struct {
	// Enabled is the process-wide default; individual requests can still
	// opt out via useAnonymization=false.
	Enabled bool `yaml:"enabled"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	Output string `yaml:"output"` // stdout, stderr, or file path
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "stdout" or "noop"
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":3000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			RateLimitPerMin: 120,
			RateLimitBurst:  20,
		},
		Search: SearchConfig{
			MaxResults: 10,
			CacheTTL:   5 * time.Minute,
			CacheSize:  512,
			Backends: []BackendConfig{
				{
					Name:    "searxng",
					Type:    BackendSearXNG,
					URL:     "https://searx.be",
					Timeout: 15 * time.Second,
				},
				{
					Name:    "duckduckgo",
					Type:    BackendDuckDuckGo,
					URL:     "https://api.duckduckgo.com",
					Timeout: 10 * time.Second,
				},
				{
					Name:    "duckduckgo-html",
					Type:    BackendDuckDuckGoWeb,
					URL:     "https://html.duckduckgo.com",
					Timeout: 10 * time.Second,
				},
			},
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
		},
		Anonymizer: AnonymizerConfig{
			Enabled: true,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file and applies env var overrides. A missing
// file is not an error: defaults plus env overrides are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies MIRRORSEARCH_* environment variables on top of
// the loaded config.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MIRRORSEARCH_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("MIRRORSEARCH_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("MIRRORSEARCH_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("MIRRORSEARCH_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("MIRRORSEARCH_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv("MIRRORSEARCH_ANONYMIZER_ENABLED"); v != "" {
		cfg.Anonymizer.Enabled = v == "true"
	}
	if v := os.Getenv("MIRRORSEARCH_SEARXNG_URL"); v != "" {
		for i := range cfg.Search.Backends {
			if cfg.Search.Backends[i].Type == BackendSearXNG {
				cfg.Search.Backends[i].URL = v
			}
		}
	}
	if v := os.Getenv("MIRRORSEARCH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxResults = n
		}
	}
	if v := os.Getenv("MIRRORSEARCH_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Search.CacheTTL = d
		}
	}
}
