// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the SQLSage application.
// It implements subcommands for asking natural-language questions against a
// PostgreSQL database, managing the connection and oracle credentials, and
// inspecting schema and feedback statistics, using the Cobra CLI framework.
// The package renders results with a rich terminal UI built on pterm.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "sqlsage",
	Short:         "Ask your PostgreSQL database questions in plain language",
	Long:          `SQLSage turns natural-language questions into SQL, runs them against your PostgreSQL database, and explains the results. Queries are validated, corrected and retried automatically before you ever see an error.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("sqlsage %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
}
