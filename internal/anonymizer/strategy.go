package anonymizer

import (
	"regexp"
	"strings"

	"github.com/qvkare/mirror-search/internal/domain"
)

// minUsableLength is the shortest transformed query the engine will forward.
// Anything shorter reverts to the original query.
const minUsableLength = 2

// Strategy is one tier of the anonymization cascade. Attempt returns a result
// or an error explaining why the tier could not produce one; the engine then
// falls through to the next, strictly simpler tier.
type Strategy interface {
	Name() string
	Attempt(query string) (*domain.AnonymizationResult, error)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// collapseWhitespace trims and squeezes runs of whitespace left behind by
// phrase removal.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// tooShort reports whether a transformed query is unusable downstream.
func tooShort(s string) bool {
	return len(strings.TrimSpace(s)) < minUsableLength
}

// appendCategory adds category to cats if not already present, preserving
// first-match order.
func appendCategory(cats []string, category string) []string {
	for _, c := range cats {
		if c == category {
			return cats
		}
	}
	return append(cats, category)
}
