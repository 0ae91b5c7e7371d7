package backend

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/qvkare/mirror-search/internal/domain"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// BreakerConfig configures the circuit breaker behavior.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before transitioning to half-open.
	Timeout time.Duration
	// Interval is the cyclic period of the closed state for clearing failure counts.
	Interval time.Duration
}

// Breaker wraps a SearchBackend with circuit breaker protection. When the
// wrapped backend fails repeatedly, the circuit opens and subsequent calls
// fail fast without reaching the provider, so a dead backend costs nothing
// while the orchestrator falls through to the next one.
type Breaker struct {
	inner   domain.SearchBackend
	breaker *gobreaker.CircuitBreaker[[]domain.SearchResult]
	logger  *slog.Logger
}

// NewBreaker wraps inner with a circuit breaker.
// Zero-valued cfg fields fall back to defaults.
func NewBreaker(inner domain.SearchBackend, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	name := inner.Name()
	cb := gobreaker.NewCircuitBreaker[[]domain.SearchResult](gobreaker.Settings{
		Name:        "backend:" + name,
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &Breaker{
		inner:   inner,
		breaker: cb,
		logger:  logger,
	}
}

// Search implements domain.SearchBackend. Calls are routed through the
// circuit breaker.
func (b *Breaker) Search(ctx context.Context, query string, count int) ([]domain.SearchResult, error) {
	results, err := b.breaker.Execute(func() ([]domain.SearchResult, error) {
		return b.inner.Search(ctx, query, count)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, domain.NewDomainError("Breaker.Search", domain.ErrCircuitOpen, b.inner.Name())
		}
		return nil, err
	}
	return results, nil
}

// Ping implements domain.SearchBackend. Probes bypass the breaker: health
// checks must observe the real backend, and a successful probe is how
// operators confirm a tripped backend has recovered.
func (b *Breaker) Ping(ctx context.Context) error {
	return b.inner.Ping(ctx)
}

// Name implements domain.SearchBackend.
func (b *Breaker) Name() string { return b.inner.Name() }

// State returns the current circuit breaker state for monitoring.
func (b *Breaker) State() gobreaker.State {
	return b.breaker.State()
}

// Compile-time interface checks.
var (
	_ domain.SearchBackend = (*Breaker)(nil)
	_ domain.SearchBackend = (*SearXNG)(nil)
	_ domain.SearchBackend = (*DuckDuckGo)(nil)
	_ domain.SearchBackend = (*DuckDuckGoHTML)(nil)
)
