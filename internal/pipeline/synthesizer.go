// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"context"

	"go.uber.org/zap"

	sgerrors "sqlsage/cli/internal/errors"
	"sqlsage/cli/internal/feedback"
	"sqlsage/cli/internal/oracle"
	"sqlsage/cli/internal/semantic"
)

// Synthesizer turns a question plus its gathered context into SQL via one
// oracle call.
type Synthesizer struct {
	client   oracle.Client
	layer    *semantic.Layer
	feedback *feedback.Store
	fewShotK int
	log      *zap.Logger
}

// NewSynthesizer builds a synthesizer. feedback may be nil (no few-shot
// guidance); log may be nil.
func NewSynthesizer(client oracle.Client, layer *semantic.Layer, fb *feedback.Store, fewShotK int, log *zap.Logger) *Synthesizer {
	if fewShotK <= 0 {
		fewShotK = 3
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{client: client, layer: layer, feedback: fb, fewShotK: fewShotK, log: log}
}

// Synthesize asks the oracle for SQL answering the question. The prompt
// carries the dialect, metrics, selected schema, entity resolutions, plan
// steps, and similarity-ranked few-shot examples. The oracle's raw output
// always goes through extraction since its format is not guaranteed.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, plan Plan,
	tables []TableDescriptor, resolutions map[string]string) (string, error) {

	var positives []feedback.Example
	var negatives []feedback.Record
	if s.feedback != nil {
		var err error
		positives, negatives, err = s.feedback.Similar(ctx, question, s.fewShotK)
		if err != nil {
			// Few-shot guidance is best-effort; synthesize without it.
			s.log.Warn("few-shot retrieval failed", zap.Error(err))
		}
	}

	prompt := buildSynthesisPrompt(question, plan, tables, resolutions, s.layer, positives, negatives)

	raw, err := complete(ctx, s.client, synthesisSystemPrompt, prompt,
		oracle.Options{Temperature: 0.01, MaxTokens: 1024})
	if err != nil {
		return "", err
	}

	sql := oracle.ExtractSQL(raw)
	if sql == "" {
		return "", sgerrors.New(sgerrors.SynthesisFailed, "completion contained no query text")
	}
	return sql, nil
}
