// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. This enables better error categorization, logging,
// and user experience by providing context-aware error information.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// OracleUnreachable indicates the text-generation service could not be reached
	// or timed out.
	OracleUnreachable Kind = "oracle_unreachable"
	// SynthesisFailed indicates the oracle returned no usable query text.
	SynthesisFailed Kind = "synthesis_failed"
	// ValidationFailed indicates a synthesized query violated the schema or
	// safety policy and could not be corrected.
	ValidationFailed Kind = "validation_failed"
	// ExecutionFailed indicates the relational store rejected the query and the
	// correction retry was exhausted.
	ExecutionFailed Kind = "execution_failed"
	// StoreUnreachable indicates the relational store connection failed.
	StoreUnreachable Kind = "store_unreachable"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the Kind carried anywhere in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}
