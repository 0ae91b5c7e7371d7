package domain

// MaxQueryLength is the longest query accepted by the API.
const MaxQueryLength = 500

// Method identifies the anonymization strategy tier that produced a result.
type Method string

// Anonymization methods, ordered by decreasing capability.
const (
	MethodAdvanced  Method = "advanced"
	MethodRuleBased Method = "rule-based"
	MethodFallback  Method = "fallback"
)

// AnonymizationResult describes how a query was transformed before dispatch.
type AnonymizationResult struct {
	OriginalQuery      string   `json:"originalQuery"`
	AnonymizedQuery    string   `json:"anonymizedQuery"`
	Confidence         float64  `json:"confidence"`
	PreservedSemantics []string `json:"preservedSemantics"`
	Method             Method   `json:"method"`
	ProcessingTimeMs   int64    `json:"processingTimeMs"`
}

// SearchResult is one normalized result record. All fields are plain strings;
// the normalizer guarantees none of them is empty.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// SearchStatus carries the per-response privacy/transport flags.
type SearchStatus struct {
	Anonymized bool `json:"anonymized"`
	Protected  bool `json:"protected"`
	Fast       bool `json:"fast"`
	Secure     bool `json:"secure"`
}

// SearchResponse is the unified response shape returned for every search,
// including degraded (all-backends-failed) mode.
type SearchResponse struct {
	Results       []SearchResult       `json:"results"`
	TotalResults  int                  `json:"totalResults"`
	TotalTime     int64                `json:"totalTime"`
	Engine        string               `json:"engine"`
	Status        SearchStatus         `json:"status"`
	Anonymization *AnonymizationResult `json:"anonymization,omitempty"`
	ErrorInfo     map[string]string    `json:"errorInfo,omitempty"`
	Cached        bool                 `json:"cached,omitempty"`
	RequestID     string               `json:"requestId,omitempty"`
}

// BackendHealth reports liveness of a single backend.
type BackendHealth struct {
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// Overall health states.
const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

// HealthStatus is the read-only liveness report for the orchestrator.
type HealthStatus struct {
	Status     string                   `json:"status"`
	Backends   map[string]BackendHealth `json:"backends"`
	Anonymizer bool                     `json:"anonymizer"`
}

// EngineStatus reports the anonymization engine's configuration. The field
// names mirror the wire format expected by existing deployments.
type EngineStatus struct {
	Initialized bool   `json:"initialized"`
	ModelLoaded bool   `json:"modelLoaded"`
	RulesCount  int    `json:"rulesCount"`
	Version     string `json:"version"`
	ModelType   string `json:"modelType"`
	ModelPath   string `json:"modelPath"`
}
