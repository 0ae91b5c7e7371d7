package anonymizer

import (
	"fmt"
	"regexp"
	"sync"
)

// Semantic categories used by both the phrase table and the pattern table.
const (
	CategoryLocation   = "location"
	CategoryPersonal   = "personal"
	CategoryPreference = "preference"
	CategoryFood       = "food"
	CategoryTemporal   = "temporal"
)

// Rule maps a literal surface phrase to a generic replacement term.
type Rule struct {
	Phrase      string
	Replacement string
	Category    string
}

// PatternRule pairs a compiled regex with its replacement and category.
// Used by the advanced strategy.
type PatternRule struct {
	Pattern     *regexp.Regexp
	Replacement string
	Category    string
}

// RuleTable holds the phrase rules and pattern rules the engine runs against.
// It is constructed once at process start and safe for unsynchronized
// concurrent reads. The mutation methods exist for tests and must not be
// called concurrently with live traffic.
type RuleTable struct {
	mu       sync.RWMutex
	phrases  []Rule
	patterns []PatternRule
}

// NewRuleTable builds a table from the given phrase rules and pattern specs.
// Pattern expressions that fail to compile are rejected.
func NewRuleTable(phrases []Rule, patterns []PatternSpec) (*RuleTable, error) {
	t := &RuleTable{phrases: phrases}
	for _, s := range patterns {
		re, err := regexp.Compile(s.Expr)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", s.Expr, err)
		}
		t.patterns = append(t.patterns, PatternRule{
			Pattern:     re,
			Replacement: s.Replacement,
			Category:    s.Category,
		})
	}
	return t, nil
}

// PatternSpec is the uncompiled form of a PatternRule.
type PatternSpec struct {
	Expr        string
	Replacement string
	Category    string
}

// Phrases returns the phrase rules.
func (t *RuleTable) Phrases() []Rule {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.phrases
}

// Patterns returns the compiled pattern rules.
func (t *RuleTable) Patterns() []PatternRule {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.patterns
}

// Len returns the total number of rules (phrases + patterns).
func (t *RuleTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.phrases) + len(t.patterns)
}

// AddPhrase appends a phrase rule. Test/teardown use only.
func (t *RuleTable) AddPhrase(r Rule) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phrases = append(t.phrases, r)
}

// defaultPhrases is the static surface-form → generic-term mapping.
var defaultPhrases = []Rule{
	// location
	{Phrase: "near me", Replacement: "in the area", Category: CategoryLocation},
	{Phrase: "nearby", Replacement: "in the area", Category: CategoryLocation},
	{Phrase: "close to me", Replacement: "in the area", Category: CategoryLocation},
	{Phrase: "in my city", Replacement: "in a city", Category: CategoryLocation},
	{Phrase: "in my area", Replacement: "in the area", Category: CategoryLocation},
	{Phrase: "in my neighborhood", Replacement: "in a neighborhood", Category: CategoryLocation},
	{Phrase: "around here", Replacement: "in the area", Category: CategoryLocation},

	// preference
	{Phrase: "best", Replacement: "good", Category: CategoryPreference},
	{Phrase: "my favorite", Replacement: "a popular", Category: CategoryPreference},
	{Phrase: "i love", Replacement: "people enjoy", Category: CategoryPreference},
	{Phrase: "i like", Replacement: "people like", Category: CategoryPreference},
	{Phrase: "i hate", Replacement: "people avoid", Category: CategoryPreference},
	{Phrase: "top rated", Replacement: "well rated", Category: CategoryPreference},

	// food
	{Phrase: "i want to eat", Replacement: "find", Category: CategoryFood},
	{Phrase: "i'm hungry for", Replacement: "looking for", Category: CategoryFood},
	{Phrase: "i am craving", Replacement: "looking for", Category: CategoryFood},
	{Phrase: "my diet", Replacement: "a diet", Category: CategoryFood},

	// temporal
	{Phrase: "right now", Replacement: "currently", Category: CategoryTemporal},
	{Phrase: "tonight", Replacement: "in the evening", Category: CategoryTemporal},
	{Phrase: "this morning", Replacement: "in the morning", Category: CategoryTemporal},
	{Phrase: "open now", Replacement: "currently open", Category: CategoryTemporal},

	// personal
	{Phrase: "for me", Replacement: "", Category: CategoryPersonal},
	{Phrase: "i need", Replacement: "someone needs", Category: CategoryPersonal},
	{Phrase: "my home", Replacement: "a home", Category: CategoryPersonal},
	{Phrase: "my house", Replacement: "a house", Category: CategoryPersonal},
	{Phrase: "my work", Replacement: "a workplace", Category: CategoryPersonal},
}

// defaultPatterns drives the advanced strategy. Broad category regexes that
// generalize identifying terms while keeping the query searchable.
var defaultPatterns = []PatternSpec{
	{
		Expr:        `(?i)\b(near me|close to me|nearby|in my (?:area|city|town|neighborhood))\b`,
		Replacement: "in the area",
		Category:    CategoryLocation,
	},
	{
		Expr:        `(?i)\b(manhattan|brooklyn|queens|new york|london|paris|berlin|tokyo|istanbul|san francisco|los angeles|chicago)\b`,
		Replacement: "a major city",
		Category:    CategoryLocation,
	},
	{
		Expr:        `(?i)\bmy\b`,
		Replacement: "the",
		Category:    CategoryPersonal,
	},
	{
		Expr:        `(?i)\b(i|me|myself|mine)\b`,
		Replacement: "someone",
		Category:    CategoryPersonal,
	},
	{
		Expr:        `(?i)\b(best|favorite|greatest|amazing|awesome|perfect)\b`,
		Replacement: "good",
		Category:    CategoryPreference,
	},
	{
		Expr:        `(?i)\b(vegan|vegetarian|gluten[- ]free|halal|kosher|keto)\b`,
		Replacement: "dietary-specific",
		Category:    CategoryFood,
	},
	{
		Expr:        `(?i)\b(tonight|today|right now|tomorrow|this (?:morning|afternoon|evening|weekend))\b`,
		Replacement: "soon",
		Category:    CategoryTemporal,
	},
}

// DefaultRuleTable returns the built-in rule set. Panics only if the embedded
// patterns are invalid, which is a programming error caught by tests.
func DefaultRuleTable() *RuleTable {
	t, err := NewRuleTable(defaultPhrases, defaultPatterns)
	if err != nil {
		panic(err)
	}
	return t
}
