// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"sqlsage/cli/internal/session"
)

// askCmd answers a single question and exits. The question is everything
// after the command name, so quoting is optional.
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question and print the answer",
	Long: `The ask command runs a single natural-language question through the query
pipeline: it selects the relevant tables, synthesizes SQL, validates and
executes it, and prints the result with a short insight.

Example:
  sqlsage ask how many open demands are there per practice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return errors.New("question is required, e.g.: sqlsage ask how many users signed up this month")
		}

		render := session.NewRenderer()
		eng, err := openEngine(cmd.Context(), render.Observe)
		if err != nil {
			return err
		}
		defer eng.Close()

		render.Start()
		resp := eng.orch.Process(cmd.Context(), question)
		render.Stop()

		renderResponse(resp)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
