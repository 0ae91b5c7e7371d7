package anonymizer

import (
	"fmt"

	"github.com/qvkare/mirror-search/internal/domain"
)

const advancedConfidence = 0.85

// AdvancedStrategy simulates a model-based rewrite: it scans the query
// against the pattern table and substitutes every category match. It refuses
// (returns an error) when no pattern fires or when the rewrite collapses the
// query below the usable minimum, so the engine can fall through.
type AdvancedStrategy struct {
	table *RuleTable
}

// NewAdvancedStrategy creates the top cascade tier backed by table.
func NewAdvancedStrategy(table *RuleTable) *AdvancedStrategy {
	return &AdvancedStrategy{table: table}
}

func (s *AdvancedStrategy) Name() string { return "advanced" }

// Attempt implements Strategy.
func (s *AdvancedStrategy) Attempt(query string) (*domain.AnonymizationResult, error) {
	result := query
	var categories []string

	for _, p := range s.table.Patterns() {
		if !p.Pattern.MatchString(result) {
			continue
		}
		result = p.Pattern.ReplaceAllString(result, p.Replacement)
		categories = appendCategory(categories, p.Category)
	}

	if len(categories) == 0 {
		return nil, fmt.Errorf("no pattern category matched")
	}

	result = collapseWhitespace(result)
	if tooShort(result) {
		return nil, fmt.Errorf("rewrite collapsed query below usable length")
	}

	return &domain.AnonymizationResult{
		OriginalQuery:      query,
		AnonymizedQuery:    result,
		Confidence:         advancedConfidence,
		PreservedSemantics: categories,
		Method:             domain.MethodAdvanced,
	}, nil
}
