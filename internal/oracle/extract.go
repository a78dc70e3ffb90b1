// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package oracle

import (
	"regexp"
	"strings"
)

// ParsedKind tags which extraction branch produced the text.
type ParsedKind int

const (
	// KindFenced means the text came from a markdown code fence.
	KindFenced ParsedKind = iota
	// KindReasoningPrefixed means a leading comment block was stripped.
	KindReasoningPrefixed
	// KindRaw means the text was taken as-is (or from the first SELECT).
	KindRaw
)

// ParsedOutput is the cleaned completion text plus how it was recovered.
type ParsedOutput struct {
	Kind ParsedKind
	Text string
}

var (
	reFence     = regexp.MustCompile("(?s)```(?:sql|json)?\\s*\\n?(.*?)```")
	reReasoning = regexp.MustCompile(`(?s)^\s*/\*.*?\*/\s*`)
	reSelect    = regexp.MustCompile(`(?is)\bSELECT\b`)
)

// Extract recovers usable text from a raw completion. Completions are
// free-form, so this tries branches in fixed priority order:
//
//  1. fenced code block (```sql, ```json, or bare fences): the contents win
//  2. leading /* ... */ reasoning block: stripped, the remainder wins
//  3. raw text, falling back to everything from the first SELECT keyword
//
// The returned text is always trimmed and carries no fence markers.
func Extract(raw string) ParsedOutput {
	if m := reFence.FindStringSubmatch(raw); m != nil {
		return ParsedOutput{Kind: KindFenced, Text: strings.TrimSpace(m[1])}
	}

	if reReasoning.MatchString(raw) {
		rest := strings.TrimSpace(reReasoning.ReplaceAllString(raw, ""))
		if rest != "" {
			return ParsedOutput{Kind: KindReasoningPrefixed, Text: rest}
		}
	}

	text := strings.TrimSpace(raw)
	if text != "" && !strings.HasPrefix(strings.ToUpper(text), "SELECT") {
		if loc := reSelect.FindStringIndex(text); loc != nil {
			return ParsedOutput{Kind: KindRaw, Text: strings.TrimSpace(text[loc[0]:])}
		}
	}
	return ParsedOutput{Kind: KindRaw, Text: text}
}

// ExtractSQL is the common case: just the cleaned text.
func ExtractSQL(raw string) string {
	return Extract(raw).Text
}
