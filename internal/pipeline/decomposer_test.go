package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const revenueTrendPlan = `{
  "steps": [
    {"id": 1, "description": "Group sales by month"},
    {"id": 2, "description": "Sum revenue by month"},
    {"id": 3, "description": "Order chronologically"}
  ]
}`

func TestDecomposeParsesPlan(t *testing.T) {
	o := &fakeOracle{responses: map[string]string{
		decompositionSystemPrompt: revenueTrendPlan,
	}}
	d := NewDecomposer(o, testLayer(), nil)

	plan := d.Decompose(context.Background(), "Show me monthly revenue trends")
	require.Len(t, plan.Steps, 3)
	assert.Equal(t, Step{ID: 1, Description: "Group sales by month"}, plan.Steps[0])
	assert.Equal(t, Step{ID: 2, Description: "Sum revenue by month"}, plan.Steps[1])
	assert.Equal(t, Step{ID: 3, Description: "Order chronologically"}, plan.Steps[2])
}

func TestDecomposeParsesFencedPlan(t *testing.T) {
	o := &fakeOracle{responses: map[string]string{
		decompositionSystemPrompt: "```json\n" + revenueTrendPlan + "\n```",
	}}
	d := NewDecomposer(o, testLayer(), nil)

	plan := d.Decompose(context.Background(), "Show me monthly revenue trends")
	assert.Len(t, plan.Steps, 3)
}

func TestDecomposeFallbackOnGarbage(t *testing.T) {
	o := &fakeOracle{responses: map[string]string{
		decompositionSystemPrompt: "I think you should group by month, then...",
	}}
	d := NewDecomposer(o, testLayer(), nil)

	plan := d.Decompose(context.Background(), "whatever")
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "Execute query directly", plan.Steps[0].Description)
	assert.Equal(t, 1, plan.Steps[0].ID)
}

func TestDecomposeFallbackOnOracleError(t *testing.T) {
	o := &fakeOracle{errors: map[string]error{
		decompositionSystemPrompt: errors.New("connection refused"),
	}}
	d := NewDecomposer(o, testLayer(), nil)

	plan := d.Decompose(context.Background(), "whatever")
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "Execute query directly", plan.Steps[0].Description)
}

func TestDecomposeFallbackOnEmptySteps(t *testing.T) {
	o := &fakeOracle{responses: map[string]string{
		decompositionSystemPrompt: `{"steps": []}`,
	}}
	d := NewDecomposer(o, testLayer(), nil)

	plan := d.Decompose(context.Background(), "whatever")
	require.Len(t, plan.Steps, 1)
}
