package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sqlsage/cli/internal/cache"
	"sqlsage/cli/internal/feedback"
	"sqlsage/cli/internal/semantic"
	"sqlsage/cli/internal/store"
)

// fakeOracle scripts completions per system prompt and counts calls.
type fakeOracle struct {
	mu        sync.Mutex
	responses map[string]string
	errors    map[string]error
	calls     map[string]int
}

func (f *fakeOracle) Complete(_ context.Context, system, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[system]++
	if err := f.errors[system]; err != nil {
		return "", err
	}
	return f.responses[system], nil
}

func (f *fakeOracle) count(system string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[system]
}

// fakeRunner scripts query execution and records every statement it saw.
type fakeRunner struct {
	mu      sync.Mutex
	queries []string
	respond func(sql string) ([]string, []map[string]any, error)
}

func (f *fakeRunner) RunQuery(_ context.Context, sql string) ([]string, []map[string]any, error) {
	f.mu.Lock()
	f.queries = append(f.queries, sql)
	f.mu.Unlock()
	return f.respond(sql)
}

func (f *fakeRunner) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// fakeSchemaSource serves a fixed snapshot.
type fakeSchemaSource struct{ schema *store.Schema }

func (f *fakeSchemaSource) FetchSchema(context.Context) (*store.Schema, error) {
	return f.schema, nil
}

func testSchema() *store.Schema {
	return &store.Schema{
		Tables: map[string]map[string]string{
			"demands": {
				"id":            "integer",
				"practice_name": "text",
				"status":        "text",
				"created_at":    "timestamp",
			},
			"users": {
				"id":    "integer",
				"email": "text",
			},
			"sales": {
				"id":      "integer",
				"revenue": "numeric",
				"month":   "date",
			},
		},
	}
}

func testLayer() *semantic.Layer {
	return &semantic.Layer{
		DataDictionary: map[string]semantic.Table{
			"demands": {
				TableID:      "demands",
				BusinessName: "Demands",
				Description:  "Staffing demands",
				Columns: map[string]semantic.Column{
					"practice_name": {Type: "text", BusinessTerm: "practice"},
				},
			},
			"users": {TableID: "users", BusinessName: "Users"},
		},
		BusinessMetrics: map[string]semantic.Metric{
			"monthly_revenue": {
				Name:           "Monthly Revenue",
				RequiredTables: []string{"sales"},
			},
		},
		EntityMappings: map[string]semantic.EntityMapping{
			"practice": {
				SourceTable:  "demands",
				SourceColumn: "practice_name",
				Values: []semantic.ValueMapping{
					{CanonicalValue: "Digital Engineering", Aliases: []string{"digital", "dig eng"}},
					{CanonicalValue: "Data Engineering", Aliases: []string{"data eng"}},
				},
			},
		},
		Lexicon: map[string][]string{
			"users": {"login", "admin", "role"},
		},
		DefaultTables: []string{"demands", "users"},
	}
}

// orchestratorDeps bundles what a test wants to inspect afterwards.
type orchestratorDeps struct {
	oracle   *fakeOracle
	runner   *fakeRunner
	cache    *cache.Cache
	feedback *feedback.Store
}

func newTestOrchestrator(t *testing.T, o *fakeOracle, r *fakeRunner, withClassifier bool) (*Orchestrator, *orchestratorDeps) {
	t.Helper()

	layer := testLayer()
	fb, err := feedback.Open(filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { fb.Close() })

	c := cache.New(time.Hour)
	validator := NewValidator(nil)
	executor := NewExecutor(r)

	var classifier *Classifier
	if withClassifier {
		classifier = NewClassifier(o)
	}

	orch := NewOrchestrator(OrchestratorConfig{
		Schema:      &fakeSchemaSource{schema: testSchema()},
		Cache:       c,
		Feedback:    fb,
		Selector:    NewSelector(layer),
		Resolver:    NewResolver(layer),
		Decomposer:  NewDecomposer(o, layer, nil),
		Synthesizer: NewSynthesizer(o, layer, fb, 3, nil),
		Validator:   validator,
		Corrector:   NewCorrector(o, validator, nil),
		Executor:    executor,
		Analyzer:    NewAnalyzer(executor, nil, nil),
		Classifier:  classifier,
		Client:      o,
	})
	return orch, &orchestratorDeps{oracle: o, runner: r, cache: c, feedback: fb}
}
