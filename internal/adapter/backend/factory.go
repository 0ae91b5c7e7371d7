package backend

import (
	"fmt"
	"log/slog"

	"github.com/qvkare/mirror-search/internal/domain"
	"github.com/qvkare/mirror-search/internal/infra/config"
)

// Build constructs the backend chain from config, in configured priority
// order, wrapping each adapter in a circuit breaker when enabled.
func Build(cfg config.SearchConfig, logger *slog.Logger) ([]domain.SearchBackend, error) {
	backends := make([]domain.SearchBackend, 0, len(cfg.Backends))
	for _, bc := range cfg.Backends {
		var b domain.SearchBackend
		switch bc.Type {
		case config.BackendSearXNG:
			b = NewSearXNG(bc.Name, bc.URL, bc.Timeout)
		case config.BackendDuckDuckGo:
			b = NewDuckDuckGo(bc.Name, bc.URL, bc.Timeout)
		case config.BackendDuckDuckGoWeb:
			b = NewDuckDuckGoHTML(bc.Name, bc.URL, bc.Timeout)
		default:
			return nil, fmt.Errorf("unknown backend type %q", bc.Type)
		}

		if cfg.CircuitBreaker.Enabled {
			b = NewBreaker(b, BreakerConfig{
				MaxFailures: cfg.CircuitBreaker.MaxFailures,
				Timeout:     cfg.CircuitBreaker.Timeout,
				Interval:    cfg.CircuitBreaker.Interval,
			}, logger)
		}
		backends = append(backends, b)
	}
	return backends, nil
}
