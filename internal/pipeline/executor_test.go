package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteSuccess(t *testing.T) {
	r := &fakeRunner{respond: func(string) ([]string, []map[string]any, error) {
		return []string{"id"}, []map[string]any{{"id": int64(1)}, {"id": int64(2)}}, nil
	}}
	e := NewExecutor(r)

	res := e.Execute(context.Background(), "SELECT id FROM demands")
	require.True(t, res.Success)
	assert.Equal(t, []string{"id"}, res.Columns)
	assert.Len(t, res.Data, 2)
	assert.Empty(t, res.Error)
	assert.GreaterOrEqual(t, res.DurationMs, 0.0)
}

func TestExecuteFailureNeverRaises(t *testing.T) {
	r := &fakeRunner{respond: func(string) ([]string, []map[string]any, error) {
		return nil, nil, errors.New(`relation "ghost_table" does not exist`)
	}}
	e := NewExecutor(r)

	res := e.Execute(context.Background(), "SELECT * FROM ghost_table")
	require.False(t, res.Success)
	assert.Contains(t, res.Error, "ghost_table")
	assert.Nil(t, res.Data)
}

func TestIsEmptyOrNull(t *testing.T) {
	tests := []struct {
		name   string
		result ExecutionResult
		want   bool
	}{
		{
			name:   "no rows",
			result: ExecutionResult{Success: true, Columns: []string{"avg"}},
			want:   true,
		},
		{
			name: "single NULL cell",
			result: ExecutionResult{
				Success: true,
				Columns: []string{"avg"},
				Data:    []map[string]any{{"avg": nil}},
			},
			want: true,
		},
		{
			name: "single non-null cell",
			result: ExecutionResult{
				Success: true,
				Columns: []string{"avg"},
				Data:    []map[string]any{{"avg": 12.5}},
			},
			want: false,
		},
		{
			name: "one row many columns with a null",
			result: ExecutionResult{
				Success: true,
				Columns: []string{"id", "name"},
				Data:    []map[string]any{{"id": int64(1), "name": nil}},
			},
			want: false,
		},
		{
			name: "many rows",
			result: ExecutionResult{
				Success: true,
				Columns: []string{"id"},
				Data:    []map[string]any{{"id": int64(1)}, {"id": int64(2)}},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEmptyOrNull(tt.result))
		})
	}
}
