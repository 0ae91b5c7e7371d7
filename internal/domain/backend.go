package domain

import "context"

// SearchBackend abstracts an external search data source.
type SearchBackend interface {
	// Search performs a search and returns zero or more results. An empty
	// slice is reported as ErrEmptyResults by well-behaved adapters so the
	// orchestrator can fall through.
	Search(ctx context.Context, query string, count int) ([]SearchResult, error)
	// Ping probes backend liveness without performing a real search.
	Ping(ctx context.Context) error
	// Name returns the backend identifier (e.g. "searxng").
	Name() string
}
