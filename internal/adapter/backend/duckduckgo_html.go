package backend

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/qvkare/mirror-search/internal/domain"
)

// Browser-like UA; the HTML endpoint rejects default Go clients.
const htmlUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"

// DuckDuckGoHTML scrapes the DuckDuckGo HTML endpoint. Markup-specific
// extraction lives entirely here; the orchestrator only sees SearchResults.
type DuckDuckGoHTML struct {
	client  *http.Client
	baseURL string
	name    string
}

// NewDuckDuckGoHTML creates an HTML-scraping adapter.
func NewDuckDuckGoHTML(name, baseURL string, timeout time.Duration) *DuckDuckGoHTML {
	return &DuckDuckGoHTML{
		client:  newClient(timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
		name:    name,
	}
}

func (b *DuckDuckGoHTML) Name() string { return b.name }

// Search implements domain.SearchBackend.
func (b *DuckDuckGoHTML) Search(ctx context.Context, query string, count int) ([]domain.SearchResult, error) {
	const op = "DuckDuckGoHTML.Search"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/html/", nil)
	if err != nil {
		return nil, domain.WrapOp(op, err)
	}

	q := req.URL.Query()
	q.Set("q", query)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", htmlUserAgent)
	req.Header.Set("Accept", "text/html")

	body, err := do(b.client, req, op)
	if err != nil {
		return nil, err
	}

	results, err := b.parse(body, count)
	if err != nil {
		return nil, domain.NewDomainError(op, domain.ErrUnparseableBody, err.Error())
	}
	if len(results) == 0 {
		return nil, domain.NewDomainError(op, domain.ErrEmptyResults, "")
	}
	return results, nil
}

// parse extracts results from the serp markup: each .result block holds a
// .result__a title link and a .result__snippet.
func (b *DuckDuckGoHTML) parse(body []byte, count int) ([]domain.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var results []domain.SearchResult
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if len(results) >= count {
			return false
		}

		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		target, ok := cleanResultURL(href)
		if !ok {
			return true
		}

		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}

		results = append(results, domain.SearchResult{
			Title:   title,
			URL:     target,
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
			Source:  b.name,
		})
		return true
	})

	return results, nil
}

// cleanResultURL unwraps DuckDuckGo's redirect links ("/l/?uddg=<target>")
// and rejects internal/administrative links (ads, cached-page proxies,
// login) that must not surface as results.
func cleanResultURL(href string) (string, bool) {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	// Redirect wrapper: the real target is in the uddg query parameter.
	// Query().Get has already percent-decoded it; decoding again would
	// corrupt targets containing literal '+' or '%'.
	if target := u.Query().Get("uddg"); target != "" {
		u, err = url.Parse(target)
		if err != nil {
			return "", false
		}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}
	if isInternalLink(u) {
		return "", false
	}
	return u.String(), true
}

// isInternalLink matches provider-internal destinations: ad click trackers,
// cache proxies, and account pages.
func isInternalLink(u *url.URL) bool {
	host := strings.ToLower(u.Host)
	path := strings.ToLower(u.Path)

	if strings.HasSuffix(host, "duckduckgo.com") {
		// y.js is the ad click tracker; settings and post pages are
		// administrative.
		return true
	}
	if strings.Contains(host, "webcache.") || strings.Contains(path, "/cache:") {
		return true
	}
	if strings.Contains(path, "/login") || strings.Contains(path, "/signin") {
		return true
	}
	return false
}

// Ping implements domain.SearchBackend.
func (b *DuckDuckGoHTML) Ping(ctx context.Context) error {
	return ping(ctx, b.client, b.baseURL+"/html/", "DuckDuckGoHTML.Ping")
}
