// Package pipeline implements the self-correcting query synthesis pipeline:
// schema narrowing, entity resolution, decomposition, SQL synthesis,
// validation, one-shot correction, execution, and empty-result recovery,
// composed by the Orchestrator state machine.
//
// Components are constructed explicitly and injected, never reached through
// package globals, so tests can substitute fakes for the oracle and the
// store.
package pipeline

import (
	"context"
)

// ColumnInfo is one column of a selected table: its store type plus the
// business description from the semantic layer when one exists.
type ColumnInfo struct {
	Type        string
	Description string
}

// TableDescriptor is the full context for one selected table. Selection
// returns descriptors rather than ids so downstream stages never need
// another schema lookup.
type TableDescriptor struct {
	TableID      string
	BusinessName string
	Description  string
	Columns      map[string]ColumnInfo
}

// Step is one ordered unit of a query plan.
type Step struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Plan is the decomposition of a question into logical steps.
type Plan struct {
	Steps []Step `json:"steps"`
}

// ValidationResult carries the ordered findings of one validation pass.
// Warnings never affect validity.
type ValidationResult struct {
	IsValid  bool
	Errors   []string
	Warnings []string
}

// ExecutionResult is the outcome of one execution attempt. Execution never
// raises past its boundary; failures land in Error.
type ExecutionResult struct {
	Success    bool
	Columns    []string
	Data       []map[string]any
	Error      string
	DurationMs float64
}

// queryRunner is the slice of the store the executor needs.
type queryRunner interface {
	RunQuery(ctx context.Context, sql string) ([]string, []map[string]any, error)
}

// valueSource is the slice of the store the recovery analyzer needs.
type valueSource interface {
	DistinctValues(ctx context.Context, table, column string, limit int) ([]string, error)
}

// explainProber checks a query's validity against the live store without
// executing it.
type explainProber interface {
	Explain(ctx context.Context, sql string) error
}
