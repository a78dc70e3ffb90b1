// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"context"
	"fmt"
	"strings"

	"sqlsage/cli/internal/oracle"
)

// Intent is the coarse classification of a user message.
type Intent string

const (
	// IntentSQL means the user wants data from the database.
	IntentSQL Intent = "sql_query"
	// IntentGeneral means greetings, chitchat, or questions about the tool.
	IntentGeneral Intent = "general_conversation"
)

// Classifier decides whether a message needs the SQL pipeline at all.
type Classifier struct {
	client oracle.Client
}

// NewClassifier builds a classifier.
func NewClassifier(client oracle.Client) *Classifier {
	return &Classifier{client: client}
}

// Classify asks the oracle for a one-word intent. When the answer is
// unclear or the call fails, the message is treated as a data question so
// the pipeline still gets a chance at it.
func (c *Classifier) Classify(ctx context.Context, question string) Intent {
	prompt := fmt.Sprintf("Classify this user message:\n%q\n\nClassification:", question)

	raw, err := complete(ctx, c.client, intentSystemPrompt, prompt,
		oracle.Options{Temperature: 0.1, MaxTokens: 50})
	if err != nil {
		return IntentSQL
	}
	if strings.Contains(strings.ToLower(raw), "sql") {
		return IntentSQL
	}
	return IntentGeneral
}
