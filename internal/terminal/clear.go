// Package terminal provides small helpers for terminal manipulation.
package terminal

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/term"
)

// ClearPreviousLines erases previously printed text from the terminal.
// textLength is the total number of characters printed (prompt + input);
// the helper works out how many screen lines that occupied at the current
// terminal width and clears them with ANSI escapes. One extra line is
// cleared to account for the newline emitted when the user presses Enter.
func ClearPreviousLines(textLength int) {
	termWidth := 80 // fallback when size detection fails
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		termWidth = width
	}

	totalLines := int(math.Ceil(float64(textLength) / float64(termWidth)))
	if totalLines < 1 {
		totalLines = 1
	}

	linesToClear := totalLines + 1

	for i := 0; i < linesToClear; i++ {
		fmt.Print("\r\x1b[2K")
		if i < linesToClear-1 {
			fmt.Print("\x1b[1A")
		}
	}
}
