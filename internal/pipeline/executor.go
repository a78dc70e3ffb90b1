// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"context"
	"time"
)

// Executor runs SQL against the store. Failures never escape: every outcome
// is an ExecutionResult.
type Executor struct {
	runner queryRunner
}

// NewExecutor builds an executor over the store.
func NewExecutor(runner queryRunner) *Executor {
	return &Executor{runner: runner}
}

// Execute runs sql and materializes the rows, recording wall-clock
// duration. The pooled connection is acquired and released inside the
// runner on every path.
func (e *Executor) Execute(ctx context.Context, sql string) ExecutionResult {
	start := time.Now()
	columns, data, err := e.runner.RunQuery(ctx, sql)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		return ExecutionResult{Success: false, Error: err.Error(), DurationMs: elapsed}
	}
	return ExecutionResult{
		Success:    true,
		Columns:    columns,
		Data:       data,
		DurationMs: elapsed,
	}
}

// IsEmptyOrNull reports whether a successful result carries no usable data:
// zero rows, or exactly one row with one column whose value is NULL.
func IsEmptyOrNull(r ExecutionResult) bool {
	if len(r.Data) == 0 {
		return true
	}
	if len(r.Data) == 1 && len(r.Columns) == 1 {
		if v, ok := r.Data[0][r.Columns[0]]; ok && v == nil {
			return true
		}
	}
	return false
}
