// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"sqlsage/cli/internal/feedback"
	"sqlsage/cli/internal/semantic"
)

const sqlDialect = "PostgreSQL"

const synthesisSystemPrompt = "You are an expert " + sqlDialect + " developer. Output ONLY SQL."

const decompositionSystemPrompt = "You are a SQL query planner. Output JSON only."

const correctionSystemPrompt = "You are a SQL expert. Fix the query directly."

const intentSystemPrompt = `You are an intent classifier for a database assistant.

Classify the user's message as one of these intents:
- "sql_query": the user wants data or statistics from the database
- "general_conversation": greetings, clarifications, chitchat, or questions about the system itself

CRITICAL RULES:
- Respond with ONLY ONE WORD: either "sql_query" or "general_conversation"
- No explanations, no punctuation, just the classification

EXAMPLES:
"hi" -> general_conversation
"what can you do?" -> general_conversation
"list all open demands" -> sql_query
"how many users are there?" -> sql_query
"what is the average fulfillment time?" -> sql_query`

const generalSystemPrompt = `You are a helpful assistant for a natural-language database query tool.

Your role:
- Answer general questions about the system
- Provide friendly greetings and responses
- Keep responses concise (2-3 sentences maximum)
- Be professional but conversational

The system can query the connected database, calculate statistics, and
analyze results. For data questions, encourage the user to ask something
specific about their tables.`

const insightsSystemPrompt = `You are a query results analyst. Analyze database query results and
provide direct, metric-focused answers.

CRITICAL RULES:
- Provide ONLY the final answer in 1-2 sentences maximum.
- FIRST: check the number of records in the data. If data exists, do NOT say there are 0 results.
- ALWAYS include specific numerical values from the data.
- If the data is a list of records, summarize the count.
- Use natural, conversational language.
- NO explanations about the task, workflow, or analysis process.
- Start immediately with the answer.`

// buildDecompositionPrompt embeds available metrics and two worked examples.
func buildDecompositionPrompt(question string, layer *semantic.Layer) string {
	metrics, _ := json.MarshalIndent(layer.BusinessMetrics, "", "  ")

	return fmt.Sprintf(`You are a SQL query planner. Your task is to decompose natural language
business questions into logical steps.

## Business Context
Business Metrics Available:
%s

## Few-Shot Examples

Example 1:
Q: "Show me monthly revenue trends"
A: {
  "steps": [
    {"id": 1, "description": "Group sales by month"},
    {"id": 2, "description": "Sum revenue by month"},
    {"id": 3, "description": "Order chronologically"}
  ]
}

Example 2:
Q: "Compare Q1 sales with Q2 and show growth percentage"
A: {
  "steps": [
    {"id": 1, "description": "Calculate Q1 total sales"},
    {"id": 2, "description": "Calculate Q2 total sales"},
    {"id": 3, "description": "Calculate (Q2-Q1)/Q1 * 100"},
    {"id": 4, "description": "Return comparison as single row"}
  ]
}

## Your Task
Decompose this query: "%s"

Return a JSON object with "steps" array following the format above.`, metrics, question)
}

// buildSynthesisPrompt assembles the full generation context: dialect,
// metrics, schema text, entity resolutions, plan steps, and the few-shot
// guidance pulled from the feedback store.
func buildSynthesisPrompt(question string, plan Plan, tables []TableDescriptor,
	resolutions map[string]string, layer *semantic.Layer,
	positives []feedback.Example, negatives []feedback.Record) string {

	metrics, _ := json.MarshalIndent(layer.BusinessMetrics, "", "  ")
	resolutionsJSON, _ := json.MarshalIndent(resolutions, "", "  ")
	steps, _ := json.MarshalIndent(plan.Steps, "", "  ")

	var schema strings.Builder
	for _, t := range tables {
		fmt.Fprintf(&schema, "\nTable: %s (ID: %s)\n", t.BusinessName, t.TableID)
		if t.Description != "" {
			fmt.Fprintf(&schema, "Description: %s\n", t.Description)
		}
		schema.WriteString("Columns:\n")
		cols := make([]string, 0, len(t.Columns))
		for c := range t.Columns {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		for _, c := range cols {
			info := t.Columns[c]
			fmt.Fprintf(&schema, "  - %s (%s): %s\n", c, info.Type, info.Description)
		}
	}

	var examples strings.Builder
	if len(positives) > 0 {
		examples.WriteString("\n## Guidelines (Follow these patterns):\n")
		for _, ex := range positives {
			fmt.Fprintf(&examples, "Q: %s\nSQL: %s\n\n", ex.Question, ex.SQL)
		}
	}
	if len(negatives) > 0 {
		examples.WriteString("\n## Anti-Patterns (Avoid these mistakes):\n")
		for _, ex := range negatives {
			fmt.Fprintf(&examples, "Q: %s\nBAD SQL: %s\nError: %s\n\n", ex.Question, ex.SQL, ex.Error)
		}
	}

	return fmt.Sprintf(`# Task: Generate SQL Query

## Database Dialect
%s

## Business Metrics
%s

## Schema Information
%s

## Entity Resolutions (Use these values in WHERE clauses)
%s

## Query Decomposition Plan
%s
%s
## Your Task
Generate SQL for this question: "%s"

Requirements:
- Use ONLY tables/columns present in the schema above.
- Apply entity resolutions where provided.
- Match %s syntax.
- Output only the SQL query without markdown or explanation.`,
		sqlDialect, metrics, schema.String(), resolutionsJSON, steps,
		examples.String(), question, sqlDialect)
}

// buildCorrectionPrompt carries the failing query, the literal error, and
// the schema context.
func buildCorrectionPrompt(originalSQL, errorText, question, schemaContext string) string {
	return fmt.Sprintf(`The following SQL generated an error. Please fix it.

User Question: %s

Original SQL:
%s

Error Message:
%s

Database Schema:
%s

Provide only the corrected SQL query.`, question, originalSQL, errorText, schemaContext)
}

// schemaContext renders descriptors into the compact text used by the
// correction prompt.
func schemaContext(tables []TableDescriptor) string {
	var b strings.Builder
	for _, t := range tables {
		b.WriteString(t.TableID + ":\n")
		cols := make([]string, 0, len(t.Columns))
		for c := range t.Columns {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		for _, c := range cols {
			fmt.Fprintf(&b, "  - %s (%s)\n", c, t.Columns[c].Type)
		}
	}
	return b.String()
}
