// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sqlsage/cli/internal/oracle"
)

// Insights turns a successful result set into a short natural-language
// answer to the original question.
func Insights(ctx context.Context, client oracle.Client, data []map[string]any, question string) (string, error) {
	dataJSON, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Based on the guidelines provided, analyze this data and answer the question directly.

DATASET:
%s

QUESTION:
%s

Provide your answer now (1-2 sentences maximum with specific numbers):`, dataJSON, question)

	raw, err := complete(ctx, client, insightsSystemPrompt, prompt,
		oracle.Options{Temperature: 0.3, MaxTokens: 256})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// GeneralAnswer handles chit-chat that bypasses the SQL stages entirely.
func GeneralAnswer(ctx context.Context, client oracle.Client, question string) (string, error) {
	raw, err := complete(ctx, client, generalSystemPrompt, question,
		oracle.Options{Temperature: 0.7, MaxTokens: 200})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}
