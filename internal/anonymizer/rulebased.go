package anonymizer

import (
	"regexp"
	"strings"
	"sync"

	"github.com/qvkare/mirror-search/internal/domain"
)

// Rule-based confidence: zero matches floor to 0.3, each match adds 0.2,
// capped at 0.9.
const (
	ruleBaseConfidence = 0.3
	rulePerMatchBonus  = 0.2
	ruleMaxConfidence  = 0.9
	ruleMinConfidence  = 0.1
)

// RuleBasedStrategy replaces every phrase from the static rule table
// case-insensitively and scores confidence by the number of replacements.
// It always produces a result (zero matches pass the query through at the
// floor confidence), so it terminates the cascade on the normal path.
type RuleBasedStrategy struct {
	table *RuleTable

	mu       sync.Mutex
	compiled map[string]*regexp.Regexp // phrase → compiled matcher
}

// NewRuleBasedStrategy creates the middle cascade tier backed by table.
func NewRuleBasedStrategy(table *RuleTable) *RuleBasedStrategy {
	return &RuleBasedStrategy{
		table:    table,
		compiled: make(map[string]*regexp.Regexp),
	}
}

func (s *RuleBasedStrategy) Name() string { return "rule-based" }

// matcher returns the case-insensitive whole-phrase matcher for phrase,
// compiling and caching it on first use.
func (s *RuleBasedStrategy) matcher(phrase string) *regexp.Regexp {
	s.mu.Lock()
	defer s.mu.Unlock()
	if re, ok := s.compiled[phrase]; ok {
		return re
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
	s.compiled[phrase] = re
	return re
}

// Attempt implements Strategy.
func (s *RuleBasedStrategy) Attempt(query string) (*domain.AnonymizationResult, error) {
	result := query
	replacements := 0
	var categories []string

	for _, r := range s.table.Phrases() {
		re := s.matcher(r.Phrase)
		matches := len(re.FindAllStringIndex(result, -1))
		if matches == 0 {
			continue
		}
		result = re.ReplaceAllString(result, r.Replacement)
		replacements += matches
		categories = appendCategory(categories, r.Category)
	}

	confidence := ruleBaseConfidence + rulePerMatchBonus*float64(replacements)
	if confidence > ruleMaxConfidence {
		confidence = ruleMaxConfidence
	}
	if confidence < ruleMinConfidence {
		confidence = ruleMinConfidence
	}

	result = collapseWhitespace(result)
	if tooShort(result) {
		// Revert rather than forward an unusable query.
		return &domain.AnonymizationResult{
			OriginalQuery:      query,
			AnonymizedQuery:    strings.TrimSpace(query),
			Confidence:         ruleBaseConfidence,
			PreservedSemantics: appendCategory(categories, "fallback"),
			Method:             domain.MethodRuleBased,
		}, nil
	}

	return &domain.AnonymizationResult{
		OriginalQuery:      query,
		AnonymizedQuery:    result,
		Confidence:         confidence,
		PreservedSemantics: categories,
		Method:             domain.MethodRuleBased,
	}, nil
}
