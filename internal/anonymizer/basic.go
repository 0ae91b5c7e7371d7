package anonymizer

import (
	"regexp"
	"strings"

	"github.com/qvkare/mirror-search/internal/domain"
)

const (
	basicConfidence  = 0.3
	revertConfidence = 0.2
)

var (
	pronounRe = regexp.MustCompile(`(?i)\b(i|me|my|mine|myself|we|our|us)\b`)
	integerRe = regexp.MustCompile(`\b\d+\b`)
)

// BasicStrategy is the last-resort tier: strip personal pronouns, replace
// bare integers with a generic token, collapse whitespace. It cannot fail;
// an unusable result reverts to the original query.
type BasicStrategy struct{}

// NewBasicStrategy creates the bottom cascade tier.
func NewBasicStrategy() *BasicStrategy { return &BasicStrategy{} }

func (s *BasicStrategy) Name() string { return "basic" }

// Attempt implements Strategy. The returned error is always nil.
func (s *BasicStrategy) Attempt(query string) (*domain.AnonymizationResult, error) {
	result := pronounRe.ReplaceAllString(query, "")
	result = integerRe.ReplaceAllString(result, "N")
	result = collapseWhitespace(result)

	if tooShort(result) {
		return &domain.AnonymizationResult{
			OriginalQuery:      query,
			AnonymizedQuery:    strings.TrimSpace(query),
			Confidence:         revertConfidence,
			PreservedSemantics: []string{"fallback"},
			Method:             domain.MethodFallback,
		}, nil
	}

	return &domain.AnonymizationResult{
		OriginalQuery:      query,
		AnonymizedQuery:    result,
		Confidence:         basicConfidence,
		PreservedSemantics: []string{"basic"},
		Method:             domain.MethodFallback,
	}, nil
}
