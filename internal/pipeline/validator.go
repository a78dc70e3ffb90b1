// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Validator statically checks synthesized SQL against the selected schema
// and the read-only safety policy before anything touches the store.
type Validator struct {
	// prober, when set, additionally runs EXPLAIN against the live store
	// once the static rules pass. Static rules alone decide validity when
	// no connection is available.
	prober explainProber
}

// NewValidator builds a validator. prober may be nil.
func NewValidator(prober explainProber) *Validator {
	return &Validator{prober: prober}
}

var (
	reWriteVerb = regexp.MustCompile(`\b(INSERT|UPDATE|DELETE|DROP|ALTER|TRUNCATE|CREATE)\b`)
	reFromJoin  = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([a-zA-Z_]\w*)`)
	reAggregate = regexp.MustCompile(`(?i)\b(COUNT|SUM|AVG|MIN|MAX)\s*\(`)
)

// Validate runs the rule set in order. Rules 1 and 2 short-circuit with a
// single error; later rules accumulate.
func (v *Validator) Validate(ctx context.Context, sql string, tables []TableDescriptor) ValidationResult {
	var errs, warnings []string
	trimmed := strings.TrimSpace(sql)
	upper := strings.ToUpper(trimmed)

	// Rule 1: SELECT only.
	if !strings.HasPrefix(upper, "SELECT") {
		return ValidationResult{Errors: []string{"Query must start with SELECT"}}
	}

	// Rule 2: no write verbs anywhere, whole-word.
	if m := reWriteVerb.FindString(upper); m != "" {
		return ValidationResult{Errors: []string{fmt.Sprintf("Write operation %s not allowed", m)}}
	}

	// Rule 3: every FROM/JOIN identifier must be a selected table.
	known := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		known[strings.ToLower(t.TableID)] = struct{}{}
	}
	for _, m := range reFromJoin.FindAllStringSubmatch(trimmed, -1) {
		name := m[1]
		if _, ok := known[strings.ToLower(name)]; !ok {
			errs = append(errs, fmt.Sprintf("Table '%s' does not exist in schema", name))
		}
	}

	// Rule 4: balanced parentheses.
	if strings.Count(trimmed, "(") != strings.Count(trimmed, ")") {
		errs = append(errs, "Unbalanced parentheses")
	}

	// Rule 5: incomplete-query detector.
	if strings.Contains(trimmed, "...") ||
		strings.Contains(upper, "TODO") ||
		strings.Contains(upper, "PLACEHOLDER") {
		errs = append(errs, "Query contains placeholders or is incomplete")
	}

	// Heuristic: aggregates with HAVING but no GROUP BY.
	if reAggregate.MatchString(trimmed) &&
		strings.Contains(upper, "HAVING") &&
		!strings.Contains(upper, "GROUP BY") {
		warnings = append(warnings, "Possible Logic Issue: Aggregation without GROUP BY")
	}

	// Live probe: let the planner catch what regexes cannot.
	if len(errs) == 0 && v.prober != nil {
		if err := v.prober.Explain(ctx, trimmed); err != nil {
			first := strings.SplitN(err.Error(), "\n", 2)[0]
			errs = append(errs, "Syntax Error: "+first)
		}
	}

	return ValidationResult{
		IsValid:  len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}
}
