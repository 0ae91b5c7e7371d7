package anonymizer

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/qvkare/mirror-search/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(DefaultRuleTable(), testLogger())
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnonymizeShortQueryPassthrough(t *testing.T) {
	e := newTestEngine(t)

	for _, q := range []string{"", "a", "ab", "  ab  "} {
		res := e.Anonymize(context.Background(), q)
		if res.AnonymizedQuery != q {
			t.Errorf("query %q: anonymized = %q, want input unchanged", q, res.AnonymizedQuery)
		}
		if !floatEq(res.Confidence, 0.9) {
			t.Errorf("query %q: confidence = %v, want 0.9", q, res.Confidence)
		}
		if res.Method != domain.MethodFallback {
			t.Errorf("query %q: method = %q, want fallback", q, res.Method)
		}
	}
}

func TestAnonymizeNeverEmpty(t *testing.T) {
	e := newTestEngine(t)

	queries := []string{
		"me",
		"my my my",
		"i me my mine myself",
		"best pizza near me",
		"42",
		"weather in tokyo tonight",
		"how do i file taxes",
	}
	for _, q := range queries {
		res := e.Anonymize(context.Background(), q)
		if q != "" && strings.TrimSpace(res.AnonymizedQuery) == "" {
			t.Errorf("query %q: anonymizedQuery is empty", q)
		}
		if res.OriginalQuery != q {
			t.Errorf("query %q: originalQuery = %q", q, res.OriginalQuery)
		}
	}
}

func TestAnonymizeAdvancedSubstitutions(t *testing.T) {
	e := newTestEngine(t)

	res := e.Anonymize(context.Background(), "best pizza near me in Manhattan")

	if res.Method != domain.MethodAdvanced {
		t.Fatalf("method = %q, want advanced", res.Method)
	}
	if !floatEq(res.Confidence, 0.85) {
		t.Errorf("confidence = %v, want 0.85", res.Confidence)
	}

	q := strings.ToLower(res.AnonymizedQuery)
	for _, leaked := range []string{"best", "near me", "manhattan"} {
		if strings.Contains(q, leaked) {
			t.Errorf("anonymized query %q still contains %q", res.AnonymizedQuery, leaked)
		}
	}
	if !strings.Contains(q, "pizza") {
		t.Errorf("anonymized query %q lost the search subject", res.AnonymizedQuery)
	}

	wantCats := map[string]bool{}
	for _, c := range res.PreservedSemantics {
		wantCats[c] = true
	}
	if !wantCats[CategoryLocation] || !wantCats[CategoryPreference] {
		t.Errorf("categories = %v, want location and preference", res.PreservedSemantics)
	}
}

func TestAnonymizeRuleBasedSingleMatch(t *testing.T) {
	e := newTestEngine(t)

	// "open now" is in the phrase table but matches no advanced pattern, so
	// the cascade lands on the rule-based tier with exactly one replacement.
	res := e.Anonymize(context.Background(), "restaurants open now")

	if res.Method != domain.MethodRuleBased {
		t.Fatalf("method = %q, want rule-based", res.Method)
	}
	if !floatEq(res.Confidence, 0.5) {
		t.Errorf("confidence = %v, want 0.5 (0.3 base + 0.2 for one match)", res.Confidence)
	}
	if strings.Contains(strings.ToLower(res.AnonymizedQuery), "open now") {
		t.Errorf("anonymized query %q still contains the phrase", res.AnonymizedQuery)
	}
}

func TestAnonymizeStrategyPanicDegrades(t *testing.T) {
	table := DefaultRuleTable()
	e := &Engine{
		table: table,
		strategies: []Strategy{
			panickyStrategy{},
			NewBasicStrategy(),
		},
		logger: testLogger(),
	}

	res := e.Anonymize(context.Background(), "some ordinary query")

	if res == nil || strings.TrimSpace(res.AnonymizedQuery) == "" {
		t.Fatal("a panicking tier must degrade to the next tier, not abort")
	}
	if res.Method != domain.MethodFallback {
		t.Errorf("method = %q, want the basic tier's fallback", res.Method)
	}
}

type panickyStrategy struct{}

func (panickyStrategy) Name() string { return "panicky" }
func (panickyStrategy) Attempt(string) (*domain.AnonymizationResult, error) {
	panic("boom")
}

func TestEngineLive(t *testing.T) {
	e := newTestEngine(t)
	if !e.Live() {
		t.Error("engine with the embedded table should be live")
	}

	empty, err := NewRuleTable(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if NewEngine(empty, testLogger()).Live() {
		t.Error("engine with no rules should not report live")
	}
}

func TestEngineStatus(t *testing.T) {
	e := newTestEngine(t)
	st := e.Status()

	if !st.Initialized {
		t.Error("initialized should be true")
	}
	if st.ModelLoaded {
		t.Error("modelLoaded should be false for the rule cascade")
	}
	if st.RulesCount != DefaultRuleTable().Len() {
		t.Errorf("rulesCount = %d, want %d", st.RulesCount, DefaultRuleTable().Len())
	}
	if st.Version == "" || st.ModelType == "" || st.ModelPath == "" {
		t.Errorf("status has empty identity fields: %+v", st)
	}
}
