package anonymizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/qvkare/mirror-search/internal/domain"
	"github.com/qvkare/mirror-search/internal/infra/tracer"
)

const (
	engineVersion = "2.0.0"
	modelType     = "rule-cascade"
	modelPath     = "embedded"

	shortQueryLength     = 3
	shortQueryConfidence = 0.9
	failsafeConfidence   = 0.2
)

// Engine runs the anonymization cascade: each tier is strictly simpler than
// the one above it and the bottom tier cannot fail, so Anonymize always
// returns a usable result.
type Engine struct {
	table      *RuleTable
	strategies []Strategy
	logger     *slog.Logger
}

// NewEngine builds an engine over table with the standard cascade order:
// advanced → rule-based → basic.
func NewEngine(table *RuleTable, logger *slog.Logger) *Engine {
	return &Engine{
		table: table,
		strategies: []Strategy{
			NewAdvancedStrategy(table),
			NewRuleBasedStrategy(table),
			NewBasicStrategy(),
		},
		logger: logger,
	}
}

// Anonymize transforms query into a privacy-preserving variant. It never
// returns nil and the result's AnonymizedQuery is never empty for a non-empty
// input: every failure path reverts to the original query.
func (e *Engine) Anonymize(ctx context.Context, query string) *domain.AnonymizationResult {
	_, span := tracer.StartSpan(ctx, "anonymize")
	defer span.End()

	start := time.Now()

	normalized := strings.ToLower(strings.TrimSpace(query))
	if len(normalized) < shortQueryLength {
		res := &domain.AnonymizationResult{
			OriginalQuery:      query,
			AnonymizedQuery:    query,
			Confidence:         shortQueryConfidence,
			PreservedSemantics: []string{"short-query"},
			Method:             domain.MethodFallback,
			ProcessingTimeMs:   time.Since(start).Milliseconds(),
		}
		span.SetAttributes(tracer.StringAttr("anonymize.method", string(res.Method)))
		return res
	}

	for _, s := range e.strategies {
		res, err := e.attempt(s, query)
		if err != nil {
			e.logger.Debug("anonymization tier declined", "strategy", s.Name(), "error", err)
			continue
		}
		res.ProcessingTimeMs = time.Since(start).Milliseconds()
		span.SetAttributes(
			tracer.StringAttr("anonymize.method", string(res.Method)),
			tracer.IntAttr("anonymize.categories", len(res.PreservedSemantics)),
		)
		e.logger.Debug("query anonymized",
			"method", res.Method,
			"confidence", res.Confidence,
			"categories", res.PreservedSemantics,
		)
		return res
	}

	// Unreachable in practice (the basic tier cannot fail), kept so the
	// contract holds even if the cascade is misconfigured.
	e.logger.Warn("all anonymization tiers declined, passing query through")
	return &domain.AnonymizationResult{
		OriginalQuery:      query,
		AnonymizedQuery:    query,
		Confidence:         failsafeConfidence,
		PreservedSemantics: []string{"fallback"},
		Method:             domain.MethodFallback,
		ProcessingTimeMs:   time.Since(start).Milliseconds(),
	}
}

// attempt runs one strategy, converting a panic into an error so a defective
// tier degrades the cascade instead of aborting the request.
func (e *Engine) attempt(s Strategy, query string) (res *domain.AnonymizationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()
	res, err = s.Attempt(query)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(res.AnonymizedQuery) == "" {
		return nil, fmt.Errorf("strategy %s produced empty query", s.Name())
	}
	return res, nil
}

// Live reports engine liveness for health checks. The rule table is embedded,
// so the engine is live whenever it holds at least one rule.
func (e *Engine) Live() bool {
	return e.table.Len() > 0
}

// Status reports the engine's configuration for the status endpoint.
func (e *Engine) Status() domain.EngineStatus {
	return domain.EngineStatus{
		Initialized: true,
		ModelLoaded: false,
		RulesCount:  e.table.Len(),
		Version:     engineVersion,
		ModelType:   modelType,
		ModelPath:   modelPath,
	}
}
