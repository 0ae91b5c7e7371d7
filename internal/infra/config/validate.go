package config

import (
	"fmt"
	"net/url"
)

// knownBackendTypes lists the adapter types the dispatcher can construct.
var knownBackendTypes = map[string]bool{
	BackendSearXNG:       true,
	BackendDuckDuckGo:    true,
	BackendDuckDuckGoWeb: true,
}

// Validate checks the configuration for values that would fail at runtime.
func Validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if cfg.Server.RateLimitPerMin <= 0 {
		return fmt.Errorf("server.rate_limit_per_min must be positive, got %d", cfg.Server.RateLimitPerMin)
	}
	if cfg.Server.RateLimitBurst <= 0 {
		return fmt.Errorf("server.rate_limit_burst must be positive, got %d", cfg.Server.RateLimitBurst)
	}

	if cfg.Search.MaxResults <= 0 || cfg.Search.MaxResults > 50 {
		return fmt.Errorf("search.max_results must be in 1..50, got %d", cfg.Search.MaxResults)
	}
	if cfg.Search.CacheSize < 0 {
		return fmt.Errorf("search.cache_size must not be negative, got %d", cfg.Search.CacheSize)
	}
	if len(cfg.Search.Backends) == 0 {
		return fmt.Errorf("search.backends must list at least one backend")
	}

	seen := map[string]bool{}
	for i, b := range cfg.Search.Backends {
		if b.Name == "" {
			return fmt.Errorf("search.backends[%d]: name must not be empty", i)
		}
		if seen[b.Name] {
			return fmt.Errorf("search.backends[%d]: duplicate name %q", i, b.Name)
		}
		seen[b.Name] = true

		if !knownBackendTypes[b.Type] {
			return fmt.Errorf("search.backends[%d] (%s): unknown type %q", i, b.Name, b.Type)
		}
		if b.Timeout <= 0 {
			return fmt.Errorf("search.backends[%d] (%s): timeout must be positive", i, b.Name)
		}
		u, err := url.Parse(b.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("search.backends[%d] (%s): invalid url %q", i, b.Name, b.URL)
		}
	}

	switch cfg.Logger.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logger.format must be \"text\" or \"json\", got %q", cfg.Logger.Format)
	}

	switch cfg.Tracer.Exporter {
	case "", "noop", "stdout":
	default:
		return fmt.Errorf("tracer.exporter must be \"noop\" or \"stdout\", got %q", cfg.Tracer.Exporter)
	}

	return nil
}
