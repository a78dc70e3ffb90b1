// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlsage/cli/internal/session"
	"sqlsage/cli/internal/terminal"
)

// replCmd starts an interactive question loop against the connected database.
// The engine is wired once, so the schema cache, query cache and feedback
// store are shared across all questions in the session.
var replCmd = &cobra.Command{
	Use:     "repl",
	Aliases: []string{"chat"},
	Short:   "Start an interactive question session",
	Long: `The repl command opens an interactive session. Type a question, get the
result, ask the next one. Identical questions within the cache window reuse
the already-synthesized query.

Session commands:
  stats   show feedback history and the session query cache
  clear   drop the query cache for this session
  exit    leave the session (also: quit, or Ctrl+D)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		render := session.NewRenderer()
		eng, err := openEngine(cmd.Context(), render.Observe)
		if err != nil {
			return err
		}
		defer eng.Close()

		pterm.Println()
		pterm.Println(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("SQLSage ") + pterm.NewStyle(pterm.FgGray).Sprint(Version))
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("Ask a question about your data. Type 'exit' to leave."))
		pterm.Println()

		reader := bufio.NewReader(os.Stdin)
		for {
			prompt := "❯ "
			pterm.Print(pterm.NewStyle(pterm.FgGreen).Sprint(prompt))
			line, err := reader.ReadString('\n')
			if err != nil {
				// Ctrl+D: leave quietly on its own line.
				fmt.Println()
				return nil
			}
			question := strings.TrimSpace(line)

			switch strings.ToLower(question) {
			case "":
				continue
			case "exit", "quit":
				pterm.Println("Bye.")
				return nil
			case "clear":
				eng.qc.Clear()
				pterm.Info.Println("Query cache cleared.")
				continue
			case "stats":
				fbStats, err := eng.fb.Stats(cmd.Context())
				if err != nil {
					pterm.Warning.Println("Could not read feedback stats: " + err.Error())
					continue
				}
				cacheStats := eng.qc.Stats()
				pterm.Printf("Questions: %d  Successful: %d  Success rate: %.1f%%  Few-shots: %d\n",
					fbStats.Total, fbStats.Success, fbStats.SuccessRate, fbStats.FewShots)
				pterm.Printf("Cached queries this session: %d (TTL %ds)\n",
					cacheStats.Entries, cacheStats.TTLSeconds)
				continue
			}

			// Replace the echoed prompt line with the progress area.
			terminal.ClearPreviousLines(len(prompt) + len(question))

			pterm.Println(pterm.NewStyle(pterm.FgGreen).Sprint(prompt) + question)
			render.Start()
			resp := eng.orch.Process(cmd.Context(), question)
			render.Stop()

			renderResponse(resp)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
