// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

// OracleErrorType represents the category of an oracle call failure.
type OracleErrorType int

const (
	OracleErrorUnknown OracleErrorType = iota
	OracleErrorNetwork
	OracleErrorAuth
	OracleErrorTimeout
	OracleErrorRateLimit
	OracleErrorInternal
)

// ParseOracleError categorizes an oracle error message.
func ParseOracleError(errMsg string) OracleErrorType {
	lower := strings.ToLower(errMsg)

	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "connection reset") || strings.Contains(lower, "no such host") {
		return OracleErrorNetwork
	}
	if strings.Contains(lower, "deadline") || strings.Contains(lower, "timeout") {
		return OracleErrorTimeout
	}
	if strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key") {
		return OracleErrorAuth
	}
	if strings.Contains(lower, "429") || strings.Contains(lower, "rate limit") {
		return OracleErrorRateLimit
	}
	if strings.Contains(lower, "500") || strings.Contains(lower, "internal server error") {
		return OracleErrorInternal
	}

	return OracleErrorUnknown
}

// FormatOracleError formats an oracle failure in a user-friendly way.
func FormatOracleError(errMsg string) string {
	errType := ParseOracleError(errMsg)

	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Oracle Unreachable"))
	builder.WriteString("\n\n")

	switch errType {
	case OracleErrorNetwork:
		builder.WriteString("The connection to the text-generation service failed.\n")
		builder.WriteString("This usually happens when:\n")
		builder.WriteString("  • Your internet connection was disrupted\n")
		builder.WriteString("  • The configured oracle endpoint is wrong\n")
		builder.WriteString("  • A firewall or proxy closed the connection\n")

	case OracleErrorTimeout:
		builder.WriteString("The text-generation service took too long to respond.\n")
		builder.WriteString("This could be due to:\n")
		builder.WriteString("  • Slow or unstable internet connection\n")
		builder.WriteString("  • A long schema prompt for a slow model\n")
		builder.WriteString("  • A too-small oracle timeout in the config\n")

	case OracleErrorAuth:
		builder.WriteString("Authentication with the text-generation service failed.\n")
		builder.WriteString("To fix this:\n")
		builder.WriteString("  • Run 'sqlsage apikey set' to store a valid key\n")
		builder.WriteString("  • Check that the key matches the configured endpoint\n")

	case OracleErrorRateLimit:
		builder.WriteString("The text-generation service is rate limiting requests.\n")
		builder.WriteString("Wait a moment before asking again.\n")

	case OracleErrorInternal:
		builder.WriteString("The text-generation service reported an internal error.\n")
		builder.WriteString("This is usually transient; try the question again.\n")

	default:
		builder.WriteString("The request to the text-generation service failed.\n")
	}

	builder.WriteString("\n")

	if errType == OracleErrorAuth {
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please run 'sqlsage apikey set' and try again"))
	} else {
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please try your question again"))
	}

	builder.WriteString("\n")

	if strings.TrimSpace(errMsg) != "" {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(errMsg)))
	}

	return builder.String()
}

// PresentOracleError displays a formatted oracle failure.
func PresentOracleError(errMsg string) {
	fmt.Println()
	fmt.Println(FormatOracleError(errMsg))
	fmt.Println()
}
