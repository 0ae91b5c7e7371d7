package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/qvkare/mirror-search/internal/anonymizer"
	"github.com/qvkare/mirror-search/internal/domain"
	"github.com/qvkare/mirror-search/internal/infra/config"
	"github.com/qvkare/mirror-search/internal/infra/tracer"
)

// fastResponseThreshold is the latency under which a response is flagged fast.
const fastResponseThreshold = 2 * time.Second

// Orchestrator runs the per-request pipeline: anonymize, try each backend in
// priority order, normalize the first success, synthesize fallback results on
// total exhaustion. Search never returns an error; every failure mode ends in
// a well-formed response.
type Orchestrator struct {
	engine     *anonymizer.Engine
	backends   []domain.SearchBackend
	normalizer *Normalizer
	maxResults int
	logger     *slog.Logger
	cache      *expirable.LRU[string, domain.SearchResponse]
}

// NewOrchestrator wires the engine and backend chain. A zero cache size
// disables response caching.
func NewOrchestrator(engine *anonymizer.Engine, backends []domain.SearchBackend, cfg config.SearchConfig, logger *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		engine:     engine,
		backends:   backends,
		normalizer: NewNormalizer(cfg.MaxResults),
		maxResults: cfg.MaxResults,
		logger:     logger,
	}
	if cfg.CacheSize > 0 {
		o.cache = expirable.NewLRU[string, domain.SearchResponse](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return o
}

// Search executes one search request. The caller is responsible for
// rejecting empty or over-long queries; the orchestrator still degrades to
// synthesized results rather than failing if handed a query every backend
// refuses.
func (o *Orchestrator) Search(ctx context.Context, query string, useAnonymization bool) *domain.SearchResponse {
	ctx, span := tracer.StartSpan(ctx, "search.query")
	defer span.End()

	start := time.Now()
	query = strings.TrimSpace(query)

	cacheKey := fmt.Sprintf("%t|%s", useAnonymization, query)
	if o.cache != nil {
		if cached, ok := o.cache.Get(cacheKey); ok {
			cached.Cached = true
			cached.TotalTime = time.Since(start).Milliseconds()
			span.SetAttributes(tracer.StringAttr("search.cache", "hit"))
			return &cached
		}
	}

	var anonResult *domain.AnonymizationResult
	effectiveQuery := query
	if useAnonymization {
		anonResult = o.engine.Anonymize(ctx, query)
		effectiveQuery = anonResult.AnonymizedQuery
		if strings.TrimSpace(effectiveQuery) == "" {
			// Engine guarantees a non-empty result; guard anyway so an
			// empty string never reaches a backend.
			effectiveQuery = query
		}
	}

	results, engine, errorInfo := o.dispatch(ctx, effectiveQuery)
	degraded := engine == fallbackEngine

	elapsed := time.Since(start)
	resp := &domain.SearchResponse{
		Results:      results,
		TotalResults: len(results),
		TotalTime:    elapsed.Milliseconds(),
		Engine:       engine,
		Status: domain.SearchStatus{
			Anonymized: useAnonymization,
			Protected:  useAnonymization,
			Fast:       elapsed < fastResponseThreshold,
			Secure:     true,
		},
		Anonymization: anonResult,
	}
	if len(errorInfo) > 0 {
		resp.ErrorInfo = errorInfo
	}

	span.SetAttributes(
		tracer.StringAttr("search.engine", engine),
		tracer.IntAttr("search.results", len(results)),
	)
	if degraded {
		tracer.RecordError(span, domain.NewDomainError("Orchestrator.Search", domain.ErrAllBackendsFailed, ""))
	} else {
		tracer.SetOK(span)
	}

	// Degraded responses are not cached so the next request retries the
	// real backends.
	if o.cache != nil && !degraded {
		o.cache.Add(cacheKey, *resp)
	}

	return resp
}

// dispatch tries each backend in priority order. Backend N+1 starts only
// after backend N's failure is known: priority encodes a quality preference,
// not a race. Every failure is recorded under the backend's name; when the
// chain is exhausted, deterministic fallback results are synthesized.
func (o *Orchestrator) dispatch(ctx context.Context, query string) ([]domain.SearchResult, string, map[string]string) {
	errorInfo := make(map[string]string)

	for _, b := range o.backends {
		results, err := b.Search(ctx, query, o.maxResults)
		if err != nil {
			errorInfo[b.Name()] = err.Error()
			o.logger.Warn("backend failed, falling through",
				"backend", b.Name(),
				"code", domain.ErrorCodeOf(err),
				"error", err,
			)
			continue
		}

		normalized := o.normalizer.Normalize(results, b.Name())
		if len(normalized) == 0 {
			// Nothing survived normalization; treat like an empty payload.
			errorInfo[b.Name()] = domain.NewDomainError("Orchestrator.dispatch", domain.ErrEmptyResults, "all results dropped by normalizer").Error()
			continue
		}

		o.logger.Debug("backend succeeded", "backend", b.Name(), "results", len(normalized))
		return normalized, b.Name(), errorInfo
	}

	o.logger.Warn("all backends exhausted, synthesizing fallback results", "backends", len(o.backends))
	return o.synthesizeFallback(query), fallbackEngine, errorInfo
}

// Health probes each backend's liveness without performing a real search.
// No live backend means no real search is possible, so that alone is
// unhealthy; a dead anonymizer or a partially dead chain is degraded.
func (o *Orchestrator) Health(ctx context.Context) *domain.HealthStatus {
	backends := make(map[string]domain.BackendHealth, len(o.backends))
	live := 0
	for _, b := range o.backends {
		if err := b.Ping(ctx); err != nil {
			backends[b.Name()] = domain.BackendHealth{Available: false, Error: err.Error()}
			continue
		}
		backends[b.Name()] = domain.BackendHealth{Available: true}
		live++
	}

	anonLive := o.engine.Live()
	status := domain.HealthDegraded
	switch {
	case live == 0:
		status = domain.HealthUnhealthy
	case live == len(o.backends) && anonLive:
		status = domain.HealthHealthy
	}

	return &domain.HealthStatus{
		Status:     status,
		Backends:   backends,
		Anonymizer: anonLive,
	}
}

// EngineStatus exposes the anonymization engine's status report.
func (o *Orchestrator) EngineStatus() domain.EngineStatus {
	return o.engine.Status()
}
