// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"

	"sqlsage/cli/internal/store"
)

// categoricalHints mark column names worth attempting value recovery on.
var categoricalHints = []string{"practice", "technology", "status", "name", "title"}

const (
	maxDistinctValues = 100
	fuzzyCutoff       = 0.3
	fuzzyTopN         = 5
	maxListedColumns  = 20
	maxSampleValues   = 5
)

// Analyzer inspects queries that executed fine but returned nothing, looks
// for near-miss WHERE literals, and retries once with a fuzzier filter.
type Analyzer struct {
	executor *Executor
	values   valueSource
	log      *zap.Logger
}

// NewAnalyzer builds an analyzer. values may be nil (no live lookups, LIKE
// rewrite only); log may be nil.
func NewAnalyzer(executor *Executor, values valueSource, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{executor: executor, values: values, log: log}
}

// Recovery is a successful rescue of an empty result.
type Recovery struct {
	SQL    string
	Result ExecutionResult
	Note   string
}

// whereLiteral is one (column, value) equality pair pulled from a WHERE
// clause.
type whereLiteral struct {
	column     string
	value      string
	caseFolded bool // came from a LOWER(...)=LOWER(...) comparison
}

var (
	reLowerEq = regexp.MustCompile(`(?i)LOWER\(([^)]+)\)\s*=\s*LOWER\(['"]([^'"]+)['"]\)`)
	rePlainEq = regexp.MustCompile(`(?i)(\w+\.?\w+)\s*=\s*['"]([^'"]+)['"]`)
)

// extractWhereLiterals pulls equality literals out of sql. Case-folded
// comparisons take priority: a plain-pattern match overlapping a folded
// match's span is suppressed.
func extractWhereLiterals(sql string) []whereLiteral {
	var out []whereLiteral

	lowerSpans := reLowerEq.FindAllStringSubmatchIndex(sql, -1)
	for _, span := range lowerSpans {
		out = append(out, whereLiteral{
			column:     strings.TrimSpace(sql[span[2]:span[3]]),
			value:      strings.TrimSpace(sql[span[4]:span[5]]),
			caseFolded: true,
		})
	}

	for _, span := range rePlainEq.FindAllStringSubmatchIndex(sql, -1) {
		overlaps := false
		for _, ls := range lowerSpans {
			if span[0] < ls[1] && ls[0] < span[1] {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		out = append(out, whereLiteral{
			column: strings.TrimSpace(sql[span[2]:span[3]]),
			value:  strings.TrimSpace(sql[span[4]:span[5]]),
		})
	}
	return out
}

// looksCategorical reports whether the column name suggests a closed value
// set worth fuzzy-matching against.
func looksCategorical(column string) bool {
	lower := strings.ToLower(column)
	for _, hint := range categoricalHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// tableForColumn resolves which table a possibly-aliased column belongs to,
// first by scanning FROM/JOIN "table alias" pairs, then by a schema-wide
// column search.
func tableForColumn(sql, column string, schema *store.Schema) (table, bareColumn string) {
	bareColumn = column
	if i := strings.LastIndex(column, "."); i >= 0 {
		alias := column[:i]
		bareColumn = column[i+1:]

		pattern := regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([a-zA-Z_]\w+)\s+` + regexp.QuoteMeta(alias) + `\b`)
		if m := pattern.FindStringSubmatch(sql); m != nil {
			return m[1], bareColumn
		}
	}
	if schema != nil {
		if t, ok := schema.TableForColumn(bareColumn); ok {
			return t, bareColumn
		}
	}
	return "", bareColumn
}

// Analyze tries to rescue an empty/NULL result. It returns either a
// Recovery (rewritten query that produced data) or a user-facing message
// listing available values, or neither when no suggestion can be made.
// Internal failures degrade to no suggestion.
func (a *Analyzer) Analyze(ctx context.Context, sql string, schema *store.Schema) (*Recovery, string) {
	literals := extractWhereLiterals(sql)
	if len(literals) == 0 {
		return nil, ""
	}

	for _, lit := range literals {
		if !looksCategorical(lit.column) {
			continue
		}

		table, bareColumn := tableForColumn(sql, lit.column, schema)

		rewritten, note := a.rewrite(ctx, sql, lit, table, bareColumn)
		if rewritten == "" || rewritten == sql {
			continue
		}

		result := a.executor.Execute(ctx, rewritten)
		if result.Success && !IsEmptyOrNull(result) {
			return &Recovery{SQL: rewritten, Result: result, Note: note}, ""
		}
	}

	return nil, a.availableValuesMessage(ctx, sql, literals, schema)
}

// rewrite picks the better of the two strategies: substitute the closest
// live value when one exists, else loosen the equality to a LIKE pattern.
func (a *Analyzer) rewrite(ctx context.Context, sql string, lit whereLiteral, table, bareColumn string) (string, string) {
	if a.values != nil && table != "" {
		if best := a.closestValue(ctx, table, bareColumn, lit.value); best != "" {
			return strings.Replace(sql, "'"+lit.value+"'", "'"+best+"'", 1),
				fmt.Sprintf("No results for '%s'. Using closest match: '%s'", lit.value, best)
		}
	}

	rewritten := convertToLike(sql, lit)
	if rewritten == sql {
		return "", ""
	}
	return rewritten, fmt.Sprintf(
		"No results found with exact match '%s'. Trying partial match with LIKE '%%%s%%'",
		lit.value, lit.value)
}

// closestValue fetches the column's live values and returns the best fuzzy
// match above the cutoff, or "".
func (a *Analyzer) closestValue(ctx context.Context, table, column, search string) string {
	actual, err := a.values.DistinctValues(ctx, table, column, maxDistinctValues)
	if err != nil {
		a.log.Debug("distinct value lookup failed",
			zap.String("table", table), zap.String("column", column), zap.Error(err))
		return ""
	}

	type ranked struct {
		value string
		score float64
	}
	var matches []ranked
	searchLower := strings.ToLower(search)
	for _, v := range actual {
		score := similarityRatio(searchLower, strings.ToLower(v))
		if score >= fuzzyCutoff {
			matches = append(matches, ranked{value: v, score: score})
		}
	}
	if len(matches) == 0 {
		return ""
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	if len(matches) > fuzzyTopN {
		matches = matches[:fuzzyTopN]
	}
	return matches[0].value
}

// similarityRatio maps Levenshtein distance onto [0,1].
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// convertToLike loosens the literal's equality to a contains pattern,
// keeping the case-insensitive wrapper when the original had one.
func convertToLike(sql string, lit whereLiteral) string {
	colQ := regexp.QuoteMeta(lit.column)
	valQ := regexp.QuoteMeta(lit.value)

	if lit.caseFolded {
		pattern := regexp.MustCompile(`(?i)LOWER\(` + colQ + `\)\s*=\s*LOWER\(['"]` + valQ + `['"]\)`)
		return pattern.ReplaceAllString(sql,
			fmt.Sprintf("LOWER(%s) LIKE LOWER('%%%s%%')", lit.column, lit.value))
	}
	pattern := regexp.MustCompile(colQ + `\s*=\s*['"]` + valQ + `['"]`)
	return pattern.ReplaceAllString(sql, fmt.Sprintf("%s LIKE '%%%s%%'", lit.column, lit.value))
}

// availableValuesMessage builds the fall-through hint: for each resolved
// column, a handful of sample values plus a count of the rest.
func (a *Analyzer) availableValuesMessage(ctx context.Context, sql string, literals []whereLiteral, schema *store.Schema) string {
	if a.values == nil {
		return ""
	}

	var b strings.Builder
	listed := 0
	for _, lit := range literals {
		if listed >= maxListedColumns {
			break
		}
		table, bareColumn := tableForColumn(sql, lit.column, schema)
		if table == "" {
			continue
		}
		values, err := a.values.DistinctValues(ctx, table, bareColumn, maxDistinctValues)
		if err != nil || len(values) == 0 {
			continue
		}

		samples := values
		if len(samples) > maxSampleValues {
			samples = samples[:maxSampleValues]
		}
		fmt.Fprintf(&b, "Available values for %s: %s", lit.column, strings.Join(samples, ", "))
		if rest := len(values) - len(samples); rest > 0 {
			fmt.Fprintf(&b, " (and %d more)", rest)
		}
		b.WriteString("\n")
		listed++
	}
	return strings.TrimSpace(b.String())
}
