// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"sqlsage/cli/internal/logging"
	"sqlsage/cli/internal/pipeline"
)

// maxRenderedRows caps the table printed to the terminal. The full result
// still counts for feedback and insights; only the display is truncated.
const maxRenderedRows = 50

// renderResponse prints one pipeline response: the query, the result table,
// and any insight, recovery note, or failure explanation.
func renderResponse(resp *pipeline.Response) {
	switch resp.Outcome {
	case pipeline.OutcomeGeneral:
		pterm.Println()
		pterm.Println(resp.Message)
		pterm.Println()
		return

	case pipeline.OutcomeFailure:
		pterm.Println()
		if logging.ParseOracleError(resp.Error) != logging.OracleErrorUnknown {
			logging.PresentOracleError(resp.Error)
		} else {
			title := pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Query Failed")
			details := resp.Error
			if resp.SQL != "" {
				details += "\n\nLast attempted query:\n" + resp.SQL
			}
			pterm.Println(pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(details))
		}
		pterm.Println()
		return
	}

	pterm.Println()
	pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint(resp.SQL))
	if resp.FromCache {
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("(from cache)"))
	}
	pterm.Println()

	if resp.Note != "" {
		pterm.Println(pterm.NewStyle(pterm.FgYellow).Sprint("⚠ " + resp.Note))
		pterm.Println()
	}

	if len(resp.Data) == 0 {
		pterm.Println("No results found.")
		if resp.Message != "" {
			pterm.Println()
			pterm.Println(resp.Message)
		}
		pterm.Println()
		return
	}

	renderTable(resp.Columns, resp.Data)

	shown := len(resp.Data)
	if shown > maxRenderedRows {
		shown = maxRenderedRows
	}
	summary := fmt.Sprintf("%d row(s) in %.1f ms", len(resp.Data), resp.DurationMs)
	if shown < len(resp.Data) {
		summary += fmt.Sprintf(", showing first %d", shown)
	}
	pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint(summary))

	if resp.Insight != "" {
		pterm.Println()
		title := pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Insight")
		pterm.Println(pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(resp.Insight))
	}
	pterm.Println()
}

// renderTable prints result rows as a pterm table, preserving column order.
func renderTable(columns []string, rows []map[string]any) {
	data := pterm.TableData{columns}
	for i, row := range rows {
		if i >= maxRenderedRows {
			break
		}
		cells := make([]string, len(columns))
		for j, col := range columns {
			cells[j] = formatCell(row[col])
		}
		data = append(data, cells)
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// formatCell converts a result value to display text. NULL renders as a
// dimmed marker so it is distinguishable from the string "NULL".
func formatCell(v any) string {
	if v == nil {
		return pterm.NewStyle(pterm.FgGray).Sprint("∅")
	}
	s := fmt.Sprint(v)
	// Keep very wide cells from wrecking the table layout.
	if len(s) > 120 {
		s = s[:117] + "..."
	}
	return strings.ReplaceAll(s, "\n", " ")
}
