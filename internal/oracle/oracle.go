// Package oracle is the boundary to the hosted text-generation service.
// Everything the pipeline asks a model for (query plans, SQL, corrections,
// insights) goes through the Client interface so tests can inject fakes.
package oracle

import "context"

// Client sends one system+user prompt pair and returns the raw completion.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Options tune a single completion request.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// OptionsClient is implemented by clients that take per-request options.
// Callers that need a specific temperature assert to this; plain Complete
// uses the client defaults.
type OptionsClient interface {
	Client
	CompleteWith(ctx context.Context, system, user string, opts Options) (string, error)
}
