package usecase

import (
	"strings"

	"github.com/qvkare/mirror-search/internal/domain"
)

const missingSnippet = "No description available"

// Normalizer shapes raw backend results into the response contract: every
// field populated, duplicates by URL removed, list capped at maxResults.
type Normalizer struct {
	maxResults int
}

func NewNormalizer(maxResults int) *Normalizer {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Normalizer{maxResults: maxResults}
}

// Normalize fills defaults, dedupes by URL (first occurrence wins, order
// preserved) and truncates. Results without a URL are dropped since they
// cannot be deduped or followed.
func (n *Normalizer) Normalize(results []domain.SearchResult, source string) []domain.SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]domain.SearchResult, 0, len(results))

	for _, r := range results {
		r.URL = strings.TrimSpace(r.URL)
		if r.URL == "" {
			continue
		}
		if _, dup := seen[r.URL]; dup {
			continue
		}
		seen[r.URL] = struct{}{}

		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" {
			r.Title = r.URL
		}
		r.Snippet = strings.TrimSpace(r.Snippet)
		if r.Snippet == "" {
			r.Snippet = missingSnippet
		}
		if strings.TrimSpace(r.Source) == "" {
			r.Source = source
		}

		out = append(out, r)
		if len(out) == n.maxResults {
			break
		}
	}

	return out
}
