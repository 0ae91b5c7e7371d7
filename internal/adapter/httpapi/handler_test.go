package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/qvkare/mirror-search/internal/anonymizer"
	"github.com/qvkare/mirror-search/internal/domain"
	"github.com/qvkare/mirror-search/internal/infra/config"
	"github.com/qvkare/mirror-search/internal/usecase"
)

type stubBackend struct {
	name    string
	results []domain.SearchResult
	err     error
	calls   int
}

func (s *stubBackend) Search(ctx context.Context, query string, count int) ([]domain.SearchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *stubBackend) Ping(ctx context.Context) error { return nil }
func (s *stubBackend) Name() string                   { return s.name }

func newTestHandler(t *testing.T, backends ...domain.SearchBackend) *handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := anonymizer.NewEngine(anonymizer.DefaultRuleTable(), logger)
	orch := usecase.NewOrchestrator(engine, backends, config.SearchConfig{
		MaxResults: 10,
		CacheTTL:   time.Minute,
	}, logger)
	return newHandler(orch, true, logger)
}

func TestHandleSearchMalformedJSON(t *testing.T) {
	backend := &stubBackend{name: "primary"}
	h := newTestHandler(t, backend)

	req := httptest.NewRequest("POST", "/search", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.handleSearch(rec, req)

	var resp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "Invalid JSON format" {
		t.Errorf("error = %q, want %q", resp.Error, "Invalid JSON format")
	}
	if resp.Message == "" {
		t.Error("message should describe the parse failure")
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times, want 0", backend.calls)
	}
}

func TestHandleSearchMissingQuery(t *testing.T) {
	backend := &stubBackend{name: "primary"}
	h := newTestHandler(t, backend)

	for _, body := range []string{`{}`, `{"query": null}`, `{"query": 42}`, `{"query": "   "}`} {
		req := httptest.NewRequest("POST", "/search", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.handleSearch(rec, req)

		var resp map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("body %s: decode response: %v", body, err)
		}
		if resp["error"] == nil || resp["error"] == "" {
			t.Errorf("body %s: expected error payload, got %v", body, resp)
		}
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times, want 0", backend.calls)
	}
}

func TestHandleSearchQueryTooLong(t *testing.T) {
	h := newTestHandler(t, &stubBackend{name: "primary"})

	long := strings.Repeat("a", domain.MaxQueryLength+1)
	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query":"`+long+`"}`))
	rec := httptest.NewRecorder()
	h.handleSearch(rec, req)

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] == nil {
		t.Errorf("expected error payload, got %v", resp)
	}
}

func TestHandleSearchSuccess(t *testing.T) {
	backend := &stubBackend{
		name: "primary",
		results: []domain.SearchResult{
			{Title: "Example", URL: "https://example.com", Snippet: "snippet", Source: "primary"},
		},
	}
	h := newTestHandler(t, backend)

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query":"best pizza near me"}`))
	rec := httptest.NewRecorder()
	h.handleSearch(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q", ct)
	}

	var resp domain.SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Engine != "primary" {
		t.Errorf("engine = %q, want primary", resp.Engine)
	}
	if resp.TotalResults != 1 {
		t.Errorf("totalResults = %d, want 1", resp.TotalResults)
	}
	if resp.Anonymization == nil {
		t.Error("anonymization object missing with default useAnonymization")
	}
	if !resp.Status.Anonymized {
		t.Error("status.anonymized should be true by default")
	}
}

func TestHandleSearchAnonymizationOptOut(t *testing.T) {
	backend := &stubBackend{
		name: "primary",
		results: []domain.SearchResult{
			{Title: "Example", URL: "https://example.com", Snippet: "snippet", Source: "primary"},
		},
	}
	h := newTestHandler(t, backend)

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query":"plain","useAnonymization":false}`))
	rec := httptest.NewRecorder()
	h.handleSearch(rec, req)

	var resp domain.SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Anonymization != nil {
		t.Error("anonymization object should be omitted when opted out")
	}
	if resp.Status.Anonymized {
		t.Error("status.anonymized should be false when opted out")
	}
}

func TestHandleSearchMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, &stubBackend{name: "primary"})

	req := httptest.NewRequest("GET", "/search", nil)
	rec := httptest.NewRecorder()
	h.handleSearch(rec, req)

	if rec.Code != 405 {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q, want application/json", ct)
	}
	var resp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("405 body is not JSON: %v", err)
	}
	if resp.Error == "" || resp.Message == "" {
		t.Errorf("405 body missing error payload: %+v", resp)
	}

	req = httptest.NewRequest("POST", "/health", nil)
	rec = httptest.NewRecorder()
	h.handleHealth(rec, req)
	if rec.Code != 405 || rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("health 405: status = %d, content-type = %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler(t, &stubBackend{name: "primary"})

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.handleHealth(rec, req)

	var resp domain.HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != domain.HealthHealthy {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if bh, ok := resp.Backends["primary"]; !ok || !bh.Available {
		t.Errorf("backends = %v, want primary available", resp.Backends)
	}
	if !resp.Anonymizer {
		t.Error("anonymizer liveness should be true")
	}
}

func TestHandleLLMStatus(t *testing.T) {
	h := newTestHandler(t, &stubBackend{name: "primary"})

	req := httptest.NewRequest("GET", "/llm-status", nil)
	rec := httptest.NewRecorder()
	h.handleLLMStatus(rec, req)

	var resp domain.EngineStatus
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Initialized {
		t.Error("engine should report initialized")
	}
	if resp.RulesCount == 0 {
		t.Error("rulesCount should be nonzero with the embedded table")
	}
	if resp.Version == "" || resp.ModelType == "" {
		t.Errorf("version/modelType missing: %+v", resp)
	}
}

func TestHandleRoot(t *testing.T) {
	h := newTestHandler(t, &stubBackend{name: "primary"})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	h.handleRoot(rec, req)

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["service"] != "mirror-search" {
		t.Errorf("service = %q", resp["service"])
	}

	req = httptest.NewRequest("GET", "/nope", nil)
	rec = httptest.NewRecorder()
	h.handleRoot(rec, req)
	if rec.Code != 404 {
		t.Errorf("unknown path status = %d, want 404", rec.Code)
	}
}
