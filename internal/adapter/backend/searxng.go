package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/qvkare/mirror-search/internal/domain"
)

// searxngResponse models the relevant portion of the SearXNG JSON response.
type searxngResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
		Engine  string `json:"engine"`
	} `json:"results"`
	NumberOfResults int `json:"number_of_results"`
}

// SearXNG queries a SearXNG instance: the proxied/aggregated provider that
// sits first in the default priority order.
type SearXNG struct {
	client      *http.Client
	instanceURL string
	name        string
}

// NewSearXNG creates a SearXNG-backed search adapter.
func NewSearXNG(name, instanceURL string, timeout time.Duration) *SearXNG {
	return &SearXNG{
		client:      newClient(timeout),
		instanceURL: strings.TrimRight(instanceURL, "/"),
		name:        name,
	}
}

func (b *SearXNG) Name() string { return b.name }

// Search implements domain.SearchBackend.
func (b *SearXNG) Search(ctx context.Context, query string, count int) ([]domain.SearchResult, error) {
	const op = "SearXNG.Search"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.instanceURL+"/search", nil)
	if err != nil {
		return nil, domain.WrapOp(op, err)
	}

	q := req.URL.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("pageno", "1")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	body, err := do(b.client, req, op)
	if err != nil {
		return nil, err
	}

	var sr searxngResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, domain.NewDomainError(op, domain.ErrUnparseableBody, err.Error())
	}

	if len(sr.Results) == 0 {
		return nil, domain.NewDomainError(op, domain.ErrEmptyResults, "")
	}

	results := make([]domain.SearchResult, 0, len(sr.Results))
	for _, r := range sr.Results {
		if len(results) >= count {
			break
		}
		source := b.name
		if r.Engine != "" {
			source = b.name + "/" + r.Engine
		}
		results = append(results, domain.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
			Source:  source,
		})
	}
	return results, nil
}

// Ping implements domain.SearchBackend.
func (b *SearXNG) Ping(ctx context.Context) error {
	return ping(ctx, b.client, b.instanceURL+"/", "SearXNG.Ping")
}
