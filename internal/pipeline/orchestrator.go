// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"sqlsage/cli/internal/cache"
	"sqlsage/cli/internal/feedback"
	"sqlsage/cli/internal/oracle"
	"sqlsage/cli/internal/store"
)

// State is one position in the per-request state machine.
type State string

const (
	StateStart            State = "START"
	StateSchemaSelected   State = "SCHEMA_SELECTED"
	StateEntitiesResolved State = "ENTITIES_RESOLVED"
	StatePlanBuilt        State = "PLAN_BUILT"
	StateSQLSynthesized   State = "SQL_SYNTHESIZED"
	StateValidated        State = "VALIDATED"
	StateCorrecting       State = "CORRECTING"
	StateExecuted         State = "EXECUTED"
	StateRecovery         State = "RECOVERY"
	StateDone             State = "DONE"
)

// Outcome is the terminal classification of one request.
type Outcome string

const (
	// OutcomeSuccess means data came back.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure means synthesis, validation, or execution was
	// unrecoverable after its single correction attempt.
	OutcomeFailure Outcome = "failure"
	// OutcomeGeneral means the question was chit-chat and bypassed the SQL
	// stages entirely.
	OutcomeGeneral Outcome = "general"
)

// Response is the result of one full request cycle.
type Response struct {
	Outcome Outcome
	SQL     string
	Columns []string
	Data    []map[string]any

	// Error is set on failure outcomes; it carries the last human-readable
	// failure message, never a stack trace.
	Error string

	// Message carries informational text: the chit-chat answer on general
	// outcomes, or the available-values hint when recovery failed.
	Message string

	// Insight is the short natural-language reading of the data.
	Insight string

	// Note explains a recovery rewrite when one happened.
	Note string

	DurationMs float64
	FromCache  bool
	Recovered  bool
	TablesUsed []string
	PlanSteps  int
}

// schemaSource is the slice of the store the orchestrator needs directly.
type schemaSource interface {
	FetchSchema(ctx context.Context) (*store.Schema, error)
}

// Orchestrator composes the pipeline stages into one request/response
// cycle. Every dependency is injected; the orchestrator owns no globals.
type Orchestrator struct {
	schema      schemaSource
	cache       *cache.Cache
	feedback    *feedback.Store
	selector    *Selector
	resolver    *Resolver
	decomposer  *Decomposer
	synthesizer *Synthesizer
	validator   *Validator
	corrector   *Corrector
	executor    *Executor
	analyzer    *Analyzer
	classifier  *Classifier
	client      oracle.Client
	log         *zap.Logger

	// onState, when set, observes every state transition. Used by the
	// interactive front end to render progress.
	onState func(State)
}

// OrchestratorConfig wires up an Orchestrator. Classifier, Analyzer, Cache,
// and Feedback may be nil; the corresponding stages are skipped.
type OrchestratorConfig struct {
	Schema      schemaSource
	Cache       *cache.Cache
	Feedback    *feedback.Store
	Selector    *Selector
	Resolver    *Resolver
	Decomposer  *Decomposer
	Synthesizer *Synthesizer
	Validator   *Validator
	Corrector   *Corrector
	Executor    *Executor
	Analyzer    *Analyzer
	Classifier  *Classifier
	Client      oracle.Client
	Logger      *zap.Logger
	OnState     func(State)
}

// NewOrchestrator builds the orchestrator from its wired components.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		schema:      cfg.Schema,
		cache:       cfg.Cache,
		feedback:    cfg.Feedback,
		selector:    cfg.Selector,
		resolver:    cfg.Resolver,
		decomposer:  cfg.Decomposer,
		synthesizer: cfg.Synthesizer,
		validator:   cfg.Validator,
		corrector:   cfg.Corrector,
		executor:    cfg.Executor,
		analyzer:    cfg.Analyzer,
		classifier:  cfg.Classifier,
		client:      cfg.Client,
		log:         log,
		onState:     cfg.OnState,
	}
}

func (o *Orchestrator) setState(s State) {
	if o.onState != nil {
		o.onState(s)
	}
}

// Process runs one question through the full cycle. The call chain is
// synchronous: oracle calls and store round-trips block until done or until
// ctx expires. Feedback is logged on every terminal outcome.
func (o *Orchestrator) Process(ctx context.Context, question string) *Response {
	o.setState(StateStart)
	o.log.Info("processing question", zap.String("question", question))

	if o.classifier != nil && o.classifier.Classify(ctx, question) == IntentGeneral {
		return o.finishGeneral(ctx, question)
	}

	// Fresh snapshot per request: the store's structure may have changed.
	schema, err := o.schema.FetchSchema(ctx)
	if err != nil {
		return o.finishFailure(ctx, question, "", "cannot read database schema: "+err.Error())
	}

	tables := o.selector.Select(question, schema)
	o.setState(StateSchemaSelected)
	o.log.Debug("schema selected", zap.Int("tables", len(tables)))

	resolutions := o.resolver.Resolve(question, tables)
	o.setState(StateEntitiesResolved)

	var sql string
	var plan Plan
	fromCache := false

	if o.cache != nil {
		if cached, ok := o.cache.Get(question); ok {
			sql = cached
			fromCache = true
			o.log.Debug("cache hit, skipping synthesis")
		}
	}

	if !fromCache {
		plan = o.decomposer.Decompose(ctx, question)
		o.setState(StatePlanBuilt)

		sql, err = o.synthesizer.Synthesize(ctx, question, plan, tables, resolutions)
		if err != nil {
			return o.finishFailure(ctx, question, "", "query synthesis failed: "+err.Error())
		}
		o.setState(StateSQLSynthesized)
		o.log.Debug("query synthesized", zap.String("sql", sql))
	}

	// Validation, with one correction attempt for this failure category.
	validation := o.validator.Validate(ctx, sql, tables)
	o.setState(StateValidated)
	if !validation.IsValid {
		o.setState(StateCorrecting)
		o.log.Info("validation failed, attempting correction",
			zap.Strings("errors", validation.Errors))

		corr := o.corrector.Correct(ctx, sql, strings.Join(validation.Errors, "; "), question, tables)
		if !corr.Success {
			return o.finishFailure(ctx, question, sql,
				"validation failed: "+strings.Join(validation.Errors, "; "))
		}
		// Executing a still-imperfect correction is an accepted risk; the
		// store has the final word.
		sql = corr.SQL
		o.setState(StateValidated)
	}

	if o.cache != nil && !fromCache {
		o.cache.Set(question, sql)
	}

	// Execution, with one correction attempt for this failure category.
	result := o.executor.Execute(ctx, sql)
	o.setState(StateExecuted)

	if !result.Success {
		o.setState(StateCorrecting)
		o.log.Info("execution failed, attempting correction", zap.String("error", result.Error))

		corr := o.corrector.Correct(ctx, sql, result.Error, question, tables)
		if corr.Success {
			sql = corr.SQL
			result = o.executor.Execute(ctx, sql)
			o.setState(StateExecuted)
			if result.Success && o.cache != nil {
				o.cache.Set(question, sql)
			}
		}
	}

	if !result.Success {
		return o.finishFailure(ctx, question, sql, result.Error)
	}

	resp := &Response{
		Outcome:    OutcomeSuccess,
		SQL:        sql,
		Columns:    result.Columns,
		Data:       result.Data,
		DurationMs: result.DurationMs,
		FromCache:  fromCache,
		TablesUsed: tableIDs(tables),
		PlanSteps:  len(plan.Steps),
	}

	if IsEmptyOrNull(result) && o.analyzer != nil {
		o.setState(StateRecovery)
		if rec, hint := o.analyzer.Analyze(ctx, sql, schema); rec != nil {
			resp.SQL = rec.SQL
			resp.Columns = rec.Result.Columns
			resp.Data = rec.Result.Data
			resp.DurationMs = rec.Result.DurationMs
			resp.Note = rec.Note
			resp.Recovered = true
		} else if hint != "" {
			resp.Message = hint
		}
	}

	o.logFeedback(ctx, question, resp.SQL, true, "")
	if o.feedback != nil && len(resp.Data) > 0 {
		// Successful executions implicitly become few-shot examples.
		if err := o.feedback.AddExample(ctx, question, resp.SQL); err != nil {
			o.log.Warn("saving few-shot example failed", zap.Error(err))
		}
	}

	if o.client != nil && len(resp.Data) > 0 {
		if insight, err := Insights(ctx, o.client, resp.Data, question); err == nil {
			resp.Insight = insight
		} else {
			o.log.Warn("insight generation failed", zap.Error(err))
		}
	}

	o.setState(StateDone)
	return resp
}

func (o *Orchestrator) finishGeneral(ctx context.Context, question string) *Response {
	answer, err := GeneralAnswer(ctx, o.client, question)
	if err != nil {
		o.log.Warn("general answer failed", zap.Error(err))
		answer = "I can help you query the connected database. Ask me something about your data."
	}
	o.logFeedback(ctx, question, "", true, "")
	o.setState(StateDone)
	return &Response{Outcome: OutcomeGeneral, Message: answer}
}

func (o *Orchestrator) finishFailure(ctx context.Context, question, sql, errMsg string) *Response {
	o.logFeedback(ctx, question, sql, false, errMsg)
	o.setState(StateDone)
	return &Response{Outcome: OutcomeFailure, SQL: sql, Error: errMsg}
}

func (o *Orchestrator) logFeedback(ctx context.Context, question, sql string, success bool, errMsg string) {
	if o.feedback == nil {
		return
	}
	if err := o.feedback.Log(ctx, question, sql, success, errMsg); err != nil {
		o.log.Warn("feedback logging failed", zap.Error(err))
	}
}

func tableIDs(tables []TableDescriptor) []string {
	ids := make([]string, len(tables))
	for i, t := range tables {
		ids[i] = t.TableID
	}
	return ids
}
