// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlsage/cli/internal/config"
	"sqlsage/cli/internal/feedback"
)

var statsFailures int

// statsCmd summarizes the feedback history: how many questions were asked,
// how many succeeded, and the most recent failures with their errors.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show question history and success rate",
	Long: `The stats command reads the local feedback store and prints the total number
of questions asked, the success rate, how many successful answers were kept
as few-shot examples, and the most recent failures.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		fbPath, err := cfg.FeedbackDBFile()
		if err != nil {
			return err
		}
		fb, err := feedback.Open(fbPath)
		if err != nil {
			return err
		}
		defer fb.Close()

		stats, err := fb.Stats(cmd.Context())
		if err != nil {
			return err
		}

		pterm.Println(pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Feedback")).
			WithPadding(1).
			Sprint(feedbackDetails(stats)))
		pterm.Println()

		failures, err := fb.RecentFailures(cmd.Context(), statsFailures)
		if err != nil {
			return err
		}
		if len(failures) == 0 {
			return nil
		}

		pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("Recent failures"))
		data := pterm.TableData{{"Question", "Error"}}
		for _, f := range failures {
			data = append(data, []string{truncate(f.Question, 60), truncate(f.Error, 60)})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsFailures, "failures", 5, "How many recent failures to list")
}

// feedbackDetails formats the feedback summary box body. SuccessRate comes
// back from the store already scaled to a percentage.
func feedbackDetails(st feedback.Stats) string {
	return fmt.Sprintf("Questions asked:   %d\nSuccessful:        %d\nSuccess rate:      %.1f%%\nFew-shot examples: %d",
		st.Total, st.Success, st.SuccessRate, st.FewShots)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
