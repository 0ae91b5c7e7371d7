package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/qvkare/mirror-search/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func fakeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func fakeClient(f roundTripFunc) *http.Client {
	return &http.Client{Transport: f}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "deadline exceeded" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

const searxngBody = `{
	"results": [
		{"title": "Go", "url": "https://go.dev", "content": "The Go programming language.", "engine": "google"},
		{"title": "Go wiki", "url": "https://en.wikipedia.org/wiki/Go", "content": "", "engine": ""}
	],
	"number_of_results": 2
}`

func TestSearXNGSearch(t *testing.T) {
	b := NewSearXNG("searxng", "https://searx.example.com", time.Second)

	var gotURL string
	b.client = fakeClient(func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		return fakeResponse(200, searxngBody), nil
	})

	results, err := b.Search(context.Background(), "golang", 10)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(gotURL, "format=json") || !strings.Contains(gotURL, "q=golang") {
		t.Errorf("request URL missing expected params: %s", gotURL)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Source != "searxng/google" {
		t.Errorf("source = %q, want engine-qualified name", results[0].Source)
	}
	if results[1].Source != "searxng" {
		t.Errorf("source = %q, want plain backend name when engine missing", results[1].Source)
	}
}

func TestSearXNGSearchRespectsCount(t *testing.T) {
	b := NewSearXNG("searxng", "https://searx.example.com", time.Second)
	b.client = fakeClient(func(r *http.Request) (*http.Response, error) {
		return fakeResponse(200, searxngBody), nil
	})

	results, err := b.Search(context.Background(), "golang", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestSearXNGSearchEmptyResults(t *testing.T) {
	b := NewSearXNG("searxng", "https://searx.example.com", time.Second)
	b.client = fakeClient(func(r *http.Request) (*http.Response, error) {
		return fakeResponse(200, `{"results": []}`), nil
	})

	_, err := b.Search(context.Background(), "golang", 10)
	if !errors.Is(err, domain.ErrEmptyResults) {
		t.Errorf("err = %v, want ErrEmptyResults", err)
	}
}

func TestSearXNGSearchBadJSON(t *testing.T) {
	b := NewSearXNG("searxng", "https://searx.example.com", time.Second)
	b.client = fakeClient(func(r *http.Request) (*http.Response, error) {
		return fakeResponse(200, `<html>rate limited</html>`), nil
	})

	_, err := b.Search(context.Background(), "golang", 10)
	if !errors.Is(err, domain.ErrUnparseableBody) {
		t.Errorf("err = %v, want ErrUnparseableBody", err)
	}
}

func TestSearXNGSearchServerError(t *testing.T) {
	b := NewSearXNG("searxng", "https://searx.example.com", time.Second)
	b.client = fakeClient(func(r *http.Request) (*http.Response, error) {
		return fakeResponse(503, "unavailable"), nil
	})

	_, err := b.Search(context.Background(), "golang", 10)
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Errorf("err = %v, want ErrBackendUnavailable", err)
	}
}

func TestSearXNGSearchTimeout(t *testing.T) {
	b := NewSearXNG("searxng", "https://searx.example.com", time.Second)
	b.client = fakeClient(func(r *http.Request) (*http.Response, error) {
		return nil, timeoutError{}
	})

	_, err := b.Search(context.Background(), "golang", 10)
	if !errors.Is(err, domain.ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestSearXNGPing(t *testing.T) {
	b := NewSearXNG("searxng", "https://searx.example.com", time.Second)

	b.client = fakeClient(func(r *http.Request) (*http.Response, error) {
		return fakeResponse(429, "slow down"), nil
	})
	if err := b.Ping(context.Background()); err != nil {
		t.Errorf("4xx should count as alive, got %v", err)
	}

	b.client = fakeClient(func(r *http.Request) (*http.Response, error) {
		return fakeResponse(500, "down"), nil
	})
	if err := b.Ping(context.Background()); err == nil {
		t.Error("5xx should count as down")
	}
}
