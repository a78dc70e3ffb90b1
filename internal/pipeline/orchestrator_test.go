package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessHappyPath(t *testing.T) {
	o := &fakeOracle{responses: map[string]string{
		decompositionSystemPrompt: revenueTrendPlan,
		synthesisSystemPrompt:     "```sql\nSELECT month, SUM(revenue) FROM sales GROUP BY month\n```",
		insightsSystemPrompt:      "Revenue grew every month.",
	}}
	r := &fakeRunner{respond: func(string) ([]string, []map[string]any, error) {
		return []string{"month", "sum"}, []map[string]any{{"month": "2026-01", "sum": 100}}, nil
	}}
	orch, _ := newTestOrchestrator(t, o, r, false)

	resp := orch.Process(context.Background(), "Show me monthly revenue trends")

	require.Equal(t, OutcomeSuccess, resp.Outcome)
	assert.Equal(t, "SELECT month, SUM(revenue) FROM sales GROUP BY month", resp.SQL)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, "Revenue grew every month.", resp.Insight)
	assert.Equal(t, 3, resp.PlanSteps)
	assert.Contains(t, resp.TablesUsed, "sales")
	assert.False(t, resp.FromCache)
}

func TestProcessCacheShortCircuit(t *testing.T) {
	o := &fakeOracle{responses: map[string]string{
		decompositionSystemPrompt: `{"steps":[{"id":1,"description":"Execute query directly"}]}`,
		synthesisSystemPrompt:     "SELECT count(*) FROM demands",
	}}
	r := &fakeRunner{respond: func(string) ([]string, []map[string]any, error) {
		return []string{"count"}, []map[string]any{{"count": int64(5)}}, nil
	}}
	orch, _ := newTestOrchestrator(t, o, r, false)

	first := orch.Process(context.Background(), "how many demands")
	require.Equal(t, OutcomeSuccess, first.Outcome)
	synthCallsAfterFirst := o.count(synthesisSystemPrompt)

	second := orch.Process(context.Background(), "  How Many Demands  ")
	require.Equal(t, OutcomeSuccess, second.Outcome)

	assert.True(t, second.FromCache)
	assert.Equal(t, first.SQL, second.SQL, "cached call must yield identical SQL")
	assert.Equal(t, synthCallsAfterFirst, o.count(synthesisSystemPrompt),
		"second call must not invoke the oracle for synthesis")
}

func TestProcessValidationCorrectionOnce(t *testing.T) {
	o := &fakeOracle{responses: map[string]string{
		decompositionSystemPrompt: `{"steps":[{"id":1,"description":"Execute query directly"}]}`,
		synthesisSystemPrompt:     "SELECT * FROM ghost_table",
		correctionSystemPrompt:    "SELECT * FROM demands",
	}}
	r := &fakeRunner{respond: func(string) ([]string, []map[string]any, error) {
		return []string{"id"}, []map[string]any{{"id": int64(1)}}, nil
	}}
	orch, _ := newTestOrchestrator(t, o, r, false)

	resp := orch.Process(context.Background(), "list demands")

	require.Equal(t, OutcomeSuccess, resp.Outcome)
	assert.Equal(t, "SELECT * FROM demands", resp.SQL)
	assert.Equal(t, 1, o.count(correctionSystemPrompt))
}

func TestProcessExecutionCorrectionExactlyOnce(t *testing.T) {
	o := &fakeOracle{responses: map[string]string{
		decompositionSystemPrompt: `{"steps":[{"id":1,"description":"Execute query directly"}]}`,
		synthesisSystemPrompt:     "SELECT id FROM demands",
		correctionSystemPrompt:    "SELECT id FROM demands WHERE true",
	}}
	// Every execution fails: original and corrected retry.
	r := &fakeRunner{respond: func(string) ([]string, []map[string]any, error) {
		return nil, nil, errors.New("permission denied for table demands")
	}}
	orch, _ := newTestOrchestrator(t, o, r, false)

	resp := orch.Process(context.Background(), "list demand ids")

	require.Equal(t, OutcomeFailure, resp.Outcome)
	assert.Equal(t, 1, o.count(correctionSystemPrompt),
		"a double execution failure must trigger exactly one correction")
	assert.Contains(t, resp.Error, "permission denied")
	assert.Equal(t, "SELECT id FROM demands WHERE true", resp.SQL,
		"failure must carry the last attempted query")
	assert.Len(t, r.seen(), 2, "original attempt plus one corrected retry")
}

func TestProcessSynthesisFailure(t *testing.T) {
	o := &fakeOracle{
		responses: map[string]string{
			decompositionSystemPrompt: `{"steps":[{"id":1,"description":"Execute query directly"}]}`,
		},
		errors: map[string]error{
			synthesisSystemPrompt: errors.New("dial tcp: connection refused"),
		},
	}
	r := &fakeRunner{respond: func(string) ([]string, []map[string]any, error) {
		t.Fatal("nothing should execute when synthesis fails")
		return nil, nil, nil
	}}
	orch, _ := newTestOrchestrator(t, o, r, false)

	resp := orch.Process(context.Background(), "list demands")

	require.Equal(t, OutcomeFailure, resp.Outcome)
	assert.Contains(t, resp.Error, "query synthesis failed")
	assert.Empty(t, resp.SQL)
}

func TestProcessEmptyNullTriggersRecovery(t *testing.T) {
	o := &fakeOracle{responses: map[string]string{
		decompositionSystemPrompt: `{"steps":[{"id":1,"description":"Execute query directly"}]}`,
		synthesisSystemPrompt:     "SELECT id FROM demands WHERE practice_name = 'Java'",
	}}
	// Exact match yields a single NULL; the LIKE rewrite yields data.
	r := &fakeRunner{respond: func(sql string) ([]string, []map[string]any, error) {
		if strings.Contains(sql, "LIKE") {
			return []string{"id"}, []map[string]any{{"id": int64(9)}}, nil
		}
		return []string{"id"}, []map[string]any{{"id": nil}}, nil
	}}
	orch, _ := newTestOrchestrator(t, o, r, false)

	resp := orch.Process(context.Background(), "demands for Java")

	require.Equal(t, OutcomeSuccess, resp.Outcome)
	assert.True(t, resp.Recovered)
	assert.Contains(t, resp.SQL, "LIKE '%Java%'")
	assert.Contains(t, resp.Note, "partial match")
	require.Len(t, resp.Data, 1)
}

func TestProcessGeneralConversation(t *testing.T) {
	o := &fakeOracle{responses: map[string]string{
		intentSystemPrompt:  "general_conversation",
		generalSystemPrompt: "Hello! Ask me about your data.",
	}}
	r := &fakeRunner{respond: func(string) ([]string, []map[string]any, error) {
		t.Fatal("chit-chat must bypass all SQL stages")
		return nil, nil, nil
	}}
	orch, _ := newTestOrchestrator(t, o, r, true)

	resp := orch.Process(context.Background(), "hi there")

	require.Equal(t, OutcomeGeneral, resp.Outcome)
	assert.Equal(t, "Hello! Ask me about your data.", resp.Message)
	assert.Zero(t, o.count(synthesisSystemPrompt))
}

func TestProcessLogsFeedbackOnTerminalOutcomes(t *testing.T) {
	o := &fakeOracle{responses: map[string]string{
		decompositionSystemPrompt: `{"steps":[{"id":1,"description":"Execute query directly"}]}`,
		synthesisSystemPrompt:     "SELECT id FROM demands",
	}}
	calls := 0
	r := &fakeRunner{respond: func(string) ([]string, []map[string]any, error) {
		calls++
		if calls == 1 {
			// First question fails; no correction text is scripted, so the
			// correction attempt fails too and the outcome is terminal.
			return nil, nil, errors.New("boom")
		}
		return []string{"id"}, []map[string]any{{"id": int64(1)}}, nil
	}}
	orch, deps := newTestOrchestrator(t, o, r, false)

	failure := orch.Process(context.Background(), "list demands today")
	require.Equal(t, OutcomeFailure, failure.Outcome)

	success := orch.Process(context.Background(), "list all demand rows now")
	require.Equal(t, OutcomeSuccess, success.Outcome)

	stats, err := deps.feedback.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Success)
}
