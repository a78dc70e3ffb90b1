// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"sqlsage/cli/internal/cache"
	"sqlsage/cli/internal/config"
	"sqlsage/cli/internal/dsn"
	"sqlsage/cli/internal/feedback"
	"sqlsage/cli/internal/keychain"
	"sqlsage/cli/internal/logging"
	"sqlsage/cli/internal/oracle"
	"sqlsage/cli/internal/pipeline"
	"sqlsage/cli/internal/secure"
	"sqlsage/cli/internal/semantic"
	"sqlsage/cli/internal/store"
)

// engine bundles the wired pipeline and the resources it owns. Close releases
// the connection pool, the feedback store, and flushes the logger.
type engine struct {
	cfg  config.Config
	log  *zap.Logger
	st   *store.Store
	fb   *feedback.Store
	qc   *cache.Cache
	orch *pipeline.Orchestrator
}

// resolveDSN returns the database connection string from the environment or,
// failing that, the OS keychain. Env always wins so CI and one-off usage can
// bypass the stored connection.
func resolveDSN() (string, error) {
	if env := strings.TrimSpace(os.Getenv("SQLSAGE_DSN")); env != "" {
		return env, nil
	}
	if env := strings.TrimSpace(os.Getenv("DATABASE_URL")); env != "" {
		return env, nil
	}
	km, err := keychain.GetManager()
	if err != nil {
		return "", err
	}
	v, err := km.LoadDBDSN()
	if err != nil || strings.TrimSpace(v) == "" {
		return "", errors.New("no database connection configured; run 'sqlsage connect' first")
	}
	return strings.TrimSpace(v), nil
}

// resolveOracleKey returns the oracle API key from the environment or keychain.
func resolveOracleKey() (string, error) {
	if env := strings.TrimSpace(os.Getenv("SQLSAGE_ORACLE_API_KEY")); env != "" {
		return env, nil
	}
	key, err := secure.LoadOracleAPIKey()
	if err != nil || strings.TrimSpace(key) == "" {
		return "", errors.New("no oracle API key configured; run 'sqlsage apikey set' first")
	}
	return strings.TrimSpace(key), nil
}

// openEngine loads config and secrets, connects to the database, and wires
// the full question pipeline. onState may be nil for callers that do not
// render progress.
func openEngine(ctx context.Context, onState func(pipeline.State)) (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	rawDSN, err := resolveDSN()
	if err != nil {
		return nil, err
	}
	normalizedDSN, err := dsn.Parse(rawDSN)
	if err != nil {
		return nil, err
	}

	st, err := store.Connect(ctx, normalizedDSN, store.PoolConfig{
		MinConns: int32(cfg.DB.MinConns),
		MaxConns: int32(cfg.DB.MaxConns),
	})
	if err != nil {
		return nil, err
	}

	layerPath, err := cfg.SemanticLayerFile()
	if err != nil {
		st.Close()
		return nil, err
	}
	layer, err := semantic.Load(layerPath)
	if err != nil {
		st.Close()
		return nil, err
	}

	fbPath, err := cfg.FeedbackDBFile()
	if err != nil {
		st.Close()
		return nil, err
	}
	fb, err := feedback.Open(fbPath)
	if err != nil {
		st.Close()
		return nil, err
	}

	apiKey, err := resolveOracleKey()
	if err != nil {
		fb.Close()
		st.Close()
		return nil, err
	}
	client := oracle.NewHTTPClient(oracle.Config{
		BaseURL: cfg.Oracle.BaseURL,
		APIKey:  apiKey,
		Model:   cfg.Oracle.Model,
		Timeout: time.Duration(cfg.Oracle.TimeoutSeconds) * time.Second,
	})

	qc := cache.New(time.Duration(cfg.Pipeline.CacheTTLSeconds) * time.Second)
	validator := pipeline.NewValidator(st)
	executor := pipeline.NewExecutor(st)

	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		Schema:      st,
		Cache:       qc,
		Feedback:    fb,
		Selector:    pipeline.NewSelector(layer),
		Resolver:    pipeline.NewResolver(layer),
		Decomposer:  pipeline.NewDecomposer(client, layer, log),
		Synthesizer: pipeline.NewSynthesizer(client, layer, fb, cfg.Pipeline.FewShotK, log),
		Validator:   validator,
		Corrector:   pipeline.NewCorrector(client, validator, log),
		Executor:    executor,
		Analyzer:    pipeline.NewAnalyzer(executor, st, log),
		Classifier:  pipeline.NewClassifier(client),
		Client:      client,
		Logger:      log,
		OnState:     onState,
	})

	return &engine{cfg: cfg, log: log, st: st, fb: fb, qc: qc, orch: orch}, nil
}

// Close releases everything the engine owns.
func (e *engine) Close() {
	if e.fb != nil {
		_ = e.fb.Close()
	}
	if e.st != nil {
		e.st.Close()
	}
	if e.log != nil {
		_ = e.log.Sync()
	}
}
