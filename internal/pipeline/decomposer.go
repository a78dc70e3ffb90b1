// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"sqlsage/cli/internal/oracle"
	"sqlsage/cli/internal/semantic"
)

// Decomposer asks the oracle to split a question into ordered logical steps.
type Decomposer struct {
	client oracle.Client
	layer  *semantic.Layer
	log    *zap.Logger
}

// NewDecomposer builds a decomposer. log may be nil.
func NewDecomposer(client oracle.Client, layer *semantic.Layer, log *zap.Logger) *Decomposer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Decomposer{client: client, layer: layer, log: log}
}

// fallbackPlan is returned whenever the oracle's answer cannot be parsed.
// Planning failures are never fatal: the pipeline always gets a plan.
func fallbackPlan() Plan {
	return Plan{Steps: []Step{{ID: 1, Description: "Execute query directly"}}}
}

// Decompose returns the oracle's step plan for the question, degrading to a
// single direct-execution step on any oracle or parse failure.
func (d *Decomposer) Decompose(ctx context.Context, question string) Plan {
	prompt := buildDecompositionPrompt(question, d.layer)

	raw, err := complete(ctx, d.client, decompositionSystemPrompt, prompt,
		oracle.Options{Temperature: 0.1, MaxTokens: 512})
	if err != nil {
		d.log.Debug("decomposition call failed, using fallback plan", zap.Error(err))
		return fallbackPlan()
	}

	var plan Plan
	if err := json.Unmarshal([]byte(oracle.Extract(raw).Text), &plan); err != nil {
		d.log.Debug("decomposition parse failed, using fallback plan", zap.Error(err))
		return fallbackPlan()
	}
	if len(plan.Steps) == 0 {
		return fallbackPlan()
	}
	return plan
}

// complete dispatches through CompleteWith when the client supports
// per-request options, else plain Complete.
func complete(ctx context.Context, c oracle.Client, system, user string, opts oracle.Options) (string, error) {
	if oc, ok := c.(oracle.OptionsClient); ok {
		return oc.CompleteWith(ctx, system, user, opts)
	}
	return c.Complete(ctx, system, user)
}
