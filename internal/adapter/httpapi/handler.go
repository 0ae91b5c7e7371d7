package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/qvkare/mirror-search/internal/domain"
	"github.com/qvkare/mirror-search/internal/infra/middleware"
	"github.com/qvkare/mirror-search/internal/usecase"
)

// maxRequestBody caps /search bodies at 1MB.
const maxRequestBody = 1 << 20

const serviceVersion = "2.0.0"

type handler struct {
	orch        *usecase.Orchestrator
	anonDefault bool
	logger      *slog.Logger
}

// searchRequest decodes the body loosely: Query is a json.RawMessage so a
// non-string value is detected and reported instead of failing the whole
// decode with a generic type error.
type searchRequest struct {
	Query            json.RawMessage `json:"query"`
	UseAnonymization *bool           `json:"useAnonymization"`
}

// errorResponse is the domain-error payload. Input errors are reported in
// the body, not via HTTP status codes.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newHandler(orch *usecase.Orchestrator, anonDefault bool, logger *slog.Logger) *handler {
	return &handler{orch: orch, anonDefault: anonDefault, logger: logger}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeJSONStatus(w, http.StatusMethodNotAllowed, errorResponse{
		Error:   "Method not allowed",
		Message: "only " + allowed + " is supported",
	})
}

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := err.Error()
		if msg == "http: request body too large" {
			msg = "request body too large (max 1MB)"
		}
		writeJSON(w, errorResponse{Error: "Invalid JSON format", Message: msg})
		return
	}

	var query string
	if len(req.Query) == 0 || string(req.Query) == "null" {
		writeJSON(w, errorResponse{Error: "Invalid query", Message: "query is required"})
		return
	}
	if err := json.Unmarshal(req.Query, &query); err != nil {
		writeJSON(w, errorResponse{Error: "Invalid query", Message: "query must be a string"})
		return
	}

	query = strings.TrimSpace(query)
	if query == "" {
		writeJSON(w, errorResponse{Error: "Invalid query", Message: "query must not be empty"})
		return
	}
	if len(query) > domain.MaxQueryLength {
		writeJSON(w, errorResponse{Error: "Invalid query", Message: "query exceeds maximum length"})
		return
	}

	useAnon := h.anonDefault
	if req.UseAnonymization != nil {
		useAnon = *req.UseAnonymization
	}

	resp := h.orch.Search(r.Context(), query, useAnon)
	resp.RequestID = middleware.RequestIDFromContext(r.Context())

	writeJSON(w, resp)
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, h.orch.Health(r.Context()))
}

func (h *handler) handleLLMStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, h.orch.EngineStatus())
}

// handleRoot serves a small service banner for probes hitting /.
func (h *handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]string{
		"service": "mirror-search",
		"version": serviceVersion,
		"status":  "ok",
	})
}
