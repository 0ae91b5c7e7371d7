package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/qvkare/mirror-search/internal/domain"
)

// ddgResponse models the DuckDuckGo instant-answer payload.
type ddgResponse struct {
	Heading       string     `json:"Heading"`
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	Answer        string     `json:"Answer"`
	Results       []ddgTopic `json:"Results"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

// ddgTopic is one entry from Results or RelatedTopics. Category groupings
// nest further topics under Topics.
type ddgTopic struct {
	Text     string     `json:"Text"`
	FirstURL string     `json:"FirstURL"`
	Topics   []ddgTopic `json:"Topics,omitempty"`
}

// DuckDuckGo queries the DuckDuckGo instant-answer API.
type DuckDuckGo struct {
	client  *http.Client
	baseURL string
	name    string
}

// NewDuckDuckGo creates an instant-answer API adapter.
func NewDuckDuckGo(name, baseURL string, timeout time.Duration) *DuckDuckGo {
	return &DuckDuckGo{
		client:  newClient(timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
		name:    name,
	}
}

func (b *DuckDuckGo) Name() string { return b.name }

// Search implements domain.SearchBackend.
func (b *DuckDuckGo) Search(ctx context.Context, query string, count int) ([]domain.SearchResult, error) {
	const op = "DuckDuckGo.Search"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/", nil)
	if err != nil {
		return nil, domain.WrapOp(op, err)
	}

	q := req.URL.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	body, err := do(b.client, req, op)
	if err != nil {
		return nil, err
	}

	ddg, err := parseDDGBody(body)
	if err != nil {
		return nil, domain.NewDomainError(op, domain.ErrUnparseableBody, err.Error())
	}

	results := b.collect(ddg, count)
	if len(results) == 0 {
		return nil, domain.NewDomainError(op, domain.ErrEmptyResults, "")
	}
	return results, nil
}

// parseDDGBody unmarshals the payload. The API occasionally wraps the JSON
// in stray bytes; on failure, retry with the span between the first '{' and
// the last '}' before giving up.
func parseDDGBody(body []byte) (*ddgResponse, error) {
	var ddg ddgResponse
	if err := json.Unmarshal(body, &ddg); err == nil {
		return &ddg, nil
	}

	start := bytes.IndexByte(body, '{')
	end := bytes.LastIndexByte(body, '}')
	if start == -1 || end <= start {
		return nil, json.Unmarshal(body, &ddg) // original error
	}
	if err := json.Unmarshal(body[start:end+1], &ddg); err != nil {
		return nil, err
	}
	return &ddg, nil
}

// collect flattens the abstract, direct results, and related topics into at
// most count records, in that order.
func (b *DuckDuckGo) collect(ddg *ddgResponse, count int) []domain.SearchResult {
	var results []domain.SearchResult

	if ddg.AbstractText != "" && ddg.AbstractURL != "" {
		title := ddg.Heading
		if title == "" {
			title = ddg.AbstractText
		}
		results = append(results, domain.SearchResult{
			Title:   title,
			URL:     ddg.AbstractURL,
			Snippet: ddg.AbstractText,
			Source:  b.name,
		})
	}

	appendTopics := func(topics []ddgTopic) {
		var walk func(ts []ddgTopic)
		walk = func(ts []ddgTopic) {
			for _, t := range ts {
				if len(results) >= count {
					return
				}
				if len(t.Topics) > 0 {
					walk(t.Topics)
					continue
				}
				if t.Text == "" || t.FirstURL == "" {
					continue
				}
				results = append(results, domain.SearchResult{
					Title:   topicTitle(t.Text),
					URL:     t.FirstURL,
					Snippet: t.Text,
					Source:  b.name,
				})
			}
		}
		walk(topics)
	}

	appendTopics(ddg.Results)
	appendTopics(ddg.RelatedTopics)

	if len(results) > count {
		results = results[:count]
	}
	return results
}

// topicTitle derives a short title from a topic's text, which DuckDuckGo
// formats as "Title - description".
func topicTitle(text string) string {
	if idx := strings.Index(text, " - "); idx > 0 {
		return text[:idx]
	}
	return text
}

// Ping implements domain.SearchBackend.
func (b *DuckDuckGo) Ping(ctx context.Context) error {
	return ping(ctx, b.client, b.baseURL+"/?q=ping&format=json", "DuckDuckGo.Ping")
}
