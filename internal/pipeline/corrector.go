// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"context"

	"go.uber.org/zap"

	"sqlsage/cli/internal/oracle"
)

// Corrector asks the oracle to repair a failing query. One shot: no
// recursive correction chains.
type Corrector struct {
	client    oracle.Client
	validator *Validator
	log       *zap.Logger
}

// NewCorrector builds a corrector. log may be nil.
func NewCorrector(client oracle.Client, validator *Validator, log *zap.Logger) *Corrector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Corrector{client: client, validator: validator, log: log}
}

// Correction is the outcome of one repair attempt.
type Correction struct {
	Success      bool
	SQL          string
	Revalidation ValidationResult
}

// Correct builds a repair prompt from the failing query, the literal error
// text, and the schema, then extracts and re-validates the oracle's answer.
// The corrected query is returned even when re-validation still reports
// errors; whether to execute it anyway is the caller's call.
func (c *Corrector) Correct(ctx context.Context, originalSQL, errorText, question string,
	tables []TableDescriptor) Correction {

	c.log.Debug("attempting correction", zap.String("error", errorText))

	prompt := buildCorrectionPrompt(originalSQL, errorText, question, schemaContext(tables))
	raw, err := complete(ctx, c.client, correctionSystemPrompt, prompt,
		oracle.Options{Temperature: 0.01, MaxTokens: 1024})
	if err != nil {
		c.log.Debug("correction call failed", zap.Error(err))
		return Correction{Success: false}
	}

	sql := oracle.ExtractSQL(raw)
	if sql == "" {
		return Correction{Success: false}
	}

	revalidation := c.validator.Validate(ctx, sql, tables)
	return Correction{Success: true, SQL: sql, Revalidation: revalidation}
}
