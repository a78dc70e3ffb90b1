// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sqlsage/cli/internal/keychain"
	"sqlsage/cli/internal/secure"
)

var disconnectAll bool

// disconnectCmd removes the stored database connection from the keychain.
// With --all it also removes the oracle API key.
var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Remove the stored database connection",
	Long: `The disconnect command removes the database connection string from the OS
keychain. Pass --all to also remove the oracle API key and start from a
clean slate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if disconnectAll {
			km, err := keychain.GetManager()
			if err != nil {
				return err
			}
			if err := km.ClearAll(); err != nil {
				return err
			}
			fmt.Println("All stored secrets removed.")
			return nil
		}
		if err := secure.ClearDB(); err != nil {
			return err
		}
		fmt.Println("Database connection removed.")
		fmt.Println("Run 'sqlsage connect' to configure a new one.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(disconnectCmd)
	disconnectCmd.Flags().BoolVar(&disconnectAll, "all", false, "Also remove the oracle API key")
}
