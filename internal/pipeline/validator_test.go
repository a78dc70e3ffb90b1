package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demandsOnly() []TableDescriptor {
	return []TableDescriptor{
		{TableID: "demands", Columns: map[string]ColumnInfo{"id": {Type: "integer"}}},
		{TableID: "users", Columns: map[string]ColumnInfo{"id": {Type: "integer"}}},
	}
}

func TestValidateRejectsNonSelect(t *testing.T) {
	v := NewValidator(nil)

	for _, sql := range []string{
		"UPDATE demands SET status = 'closed'",
		"EXPLAIN SELECT 1",
		"WITH x AS (SELECT 1) SELECT * FROM x",
		"",
	} {
		res := v.Validate(context.Background(), sql, demandsOnly())
		require.False(t, res.IsValid, "sql: %q", sql)
		assert.Equal(t, []string{"Query must start with SELECT"}, res.Errors, "sql: %q", sql)
	}
}

func TestValidateBlocksWriteVerbs(t *testing.T) {
	v := NewValidator(nil)

	res := v.Validate(context.Background(), "SELECT 1; DROP TABLE demands", demandsOnly())
	require.False(t, res.IsValid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Write operation DROP not allowed", res.Errors[0])
}

func TestValidateWriteVerbWholeWordOnly(t *testing.T) {
	v := NewValidator(nil)

	// created_at and updated_at must not trip the CREATE/UPDATE ban.
	res := v.Validate(context.Background(),
		"SELECT created_at, updated_at FROM demands", demandsOnly())
	assert.True(t, res.IsValid, "errors: %v", res.Errors)
}

func TestValidateUnknownTable(t *testing.T) {
	v := NewValidator(nil)

	res := v.Validate(context.Background(), "SELECT * FROM ghost_table", demandsOnly())
	require.False(t, res.IsValid)
	assert.Equal(t, []string{"Table 'ghost_table' does not exist in schema"}, res.Errors)
}

func TestValidateAccumulatesLaterRules(t *testing.T) {
	v := NewValidator(nil)

	res := v.Validate(context.Background(),
		"SELECT * FROM ghost_table JOIN phantom ON (ghost_table.id = phantom.id", demandsOnly())
	require.False(t, res.IsValid)
	assert.Contains(t, res.Errors, "Table 'ghost_table' does not exist in schema")
	assert.Contains(t, res.Errors, "Table 'phantom' does not exist in schema")
	assert.Contains(t, res.Errors, "Unbalanced parentheses")
}

func TestValidatePlaceholderDetector(t *testing.T) {
	v := NewValidator(nil)

	res := v.Validate(context.Background(), "SELECT ... FROM demands", demandsOnly())
	require.False(t, res.IsValid)
	assert.Contains(t, res.Errors, "Query contains placeholders or is incomplete")
}

func TestValidateCleanQuery(t *testing.T) {
	v := NewValidator(nil)

	res := v.Validate(context.Background(),
		"SELECT d.id, u.email FROM demands d JOIN users u ON (d.id = u.id)", demandsOnly())
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidateAggregateWarning(t *testing.T) {
	v := NewValidator(nil)

	res := v.Validate(context.Background(),
		"SELECT COUNT(*) FROM demands HAVING COUNT(*) > 5", demandsOnly())
	assert.True(t, res.IsValid, "warnings must not affect validity")
	assert.Equal(t, []string{"Possible Logic Issue: Aggregation without GROUP BY"}, res.Warnings)
}

type fakeProber struct{ err error }

func (f *fakeProber) Explain(context.Context, string) error { return f.err }

func TestValidateExplainProbe(t *testing.T) {
	v := NewValidator(&fakeProber{err: errors.New("column \"nope\" does not exist\nLINE 1: ...")})

	res := v.Validate(context.Background(), "SELECT nope FROM demands", demandsOnly())
	require.False(t, res.IsValid)
	assert.Equal(t, []string{`Syntax Error: column "nope" does not exist`}, res.Errors)

	// Probe is skipped when static rules already failed.
	res = v.Validate(context.Background(), "SELECT * FROM ghost_table", demandsOnly())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Table 'ghost_table' does not exist in schema", res.Errors[0])
}
