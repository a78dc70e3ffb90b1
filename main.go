// Package main is the entry point for the SQLSage CLI application.
// It turns natural-language questions into validated SQL queries against
// a PostgreSQL database and renders the results in the terminal.
package main

import (
	"sqlsage/cli/cmd"
)

// main initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
