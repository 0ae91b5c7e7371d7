package usecase

import (
	"fmt"
	"net/url"

	"github.com/qvkare/mirror-search/internal/domain"
)

// fallbackEngine marks responses built from synthesized results.
const fallbackEngine = "fallback"

// synthesizeFallback builds deterministic results pointing at public search
// frontends so the caller always gets something actionable. No network calls
// are made here.
func (o *Orchestrator) synthesizeFallback(query string) []domain.SearchResult {
	escaped := url.QueryEscape(query)

	return []domain.SearchResult{
		{
			Title:   fmt.Sprintf("Search DuckDuckGo for %q", query),
			URL:     "https://duckduckgo.com/?q=" + escaped,
			Snippet: "Run this search directly on DuckDuckGo.",
			Source:  fallbackEngine,
		},
		{
			Title:   fmt.Sprintf("Search Wikipedia for %q", query),
			URL:     "https://en.wikipedia.org/wiki/Special:Search?search=" + escaped,
			Snippet: "Look up this topic on Wikipedia.",
			Source:  fallbackEngine,
		},
		{
			Title:   fmt.Sprintf("Search the web for %q", query),
			URL:     "https://searx.be/search?q=" + escaped,
			Snippet: "Run this search on a privacy-friendly metasearch engine.",
			Source:  fallbackEngine,
		},
	}
}
