// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn parses and normalizes PostgreSQL connection strings for the
// relational store boundary. Questionable-but-common inputs (unencoded special
// characters in passwords) are handled by a manual fallback parser.
package dsn

import "fmt"

// Info contains parsed information from a DSN string.
type Info struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Params   map[string]string
	Original string
}

// String returns the original DSN string.
func (d *Info) String() string {
	return d.Original
}

// ParseError represents an error that occurred during DSN parsing.
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid DSN format: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid DSN format: %s", e.Reason)
}

// NewParseError creates a new ParseError.
func NewParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{
		DSN:    dsn,
		Reason: reason,
		Hint:   hint,
	}
}

// Parse parses a PostgreSQL DSN string and returns a normalized connection
// string. This is the main entry point for DSN parsing.
func Parse(dsn string) (string, error) {
	info, err := ParseInfo(dsn)
	if err != nil {
		return "", err
	}
	return Normalize(info)
}

// Validate validates a DSN string without normalizing it.
func Validate(dsn string) error {
	info, err := ParseInfo(dsn)
	if err != nil {
		return err
	}
	return validateInfo(dsn, info)
}
