// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sqlsage/cli/internal/config"
	"sqlsage/cli/internal/httperrors"
	"sqlsage/cli/internal/oracle"
	"sqlsage/cli/internal/secure"
	"sqlsage/cli/internal/terminal"
)

// apikeyCmd groups oracle API key management.
var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage the oracle API key",
	Long: `The apikey command manages the API key used to call the text-generation
endpoint. The key is stored in the OS keychain, never in config files.`,
}

// apikeySetCmd prompts for the key, verifies it with a minimal completion
// request, and saves it in the keychain.
var apikeySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store and verify the oracle API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)
		promptText := "Enter oracle API key: "
		fmt.Print(promptText)
		key, _ := reader.ReadString('\n')
		key = strings.TrimSpace(key)

		// Keep the key out of terminal scrollback.
		terminal.ClearPreviousLines(len(promptText) + len(key))

		if key == "" {
			return errors.New("API key is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		stopSpinner := startInlineSpinner(os.Stdout, "verifying API key",
			[]string{"-", "\\", "|", "/"}, 100*time.Millisecond)

		client := oracle.NewHTTPClient(oracle.Config{
			BaseURL: cfg.Oracle.BaseURL,
			APIKey:  key,
			Model:   cfg.Oracle.Model,
			Timeout: time.Duration(cfg.Oracle.TimeoutSeconds) * time.Second,
		})
		_, err = client.CompleteWith(cmd.Context(), "Reply with OK.", "ping",
			oracle.Options{Temperature: 0, MaxTokens: 5})
		stopSpinner()
		if err != nil {
			host := httperrors.ExtractHostFromURL(cfg.Oracle.BaseURL)
			return httperrors.FormatNetworkError(err, "verifying the API key against "+host)
		}

		if err := secure.SaveOracleAPIKey(key); err != nil {
			fmt.Println("❌ Failed to save the API key securely.")
			return err
		}

		fmt.Println("✅ Oracle API key verified and saved!")
		return nil
	},
}

// apikeyClearCmd removes the stored key.
var apikeyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored oracle API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := secure.ClearOracleAPIKey(); err != nil {
			return err
		}
		fmt.Println("Oracle API key removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(apikeyCmd)
	apikeyCmd.AddCommand(apikeySetCmd)
	apikeyCmd.AddCommand(apikeyClearCmd)
}
