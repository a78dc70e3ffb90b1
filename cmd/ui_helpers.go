package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// startInlineSpinner starts a simple inline spinner animation on a single line.
// It displays rotating animation frames followed by the provided text, updating
// the same line in the terminal. The spinner runs in a separate goroutine and
// can be stopped by calling the returned function.
//
// The spinner clears its line when stopped so whatever the caller prints next
// starts at column zero.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				// Clear the spinner line completely, then return
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				// primitive protection against very long lines
				if len(line) > 2000 {
					line = line[:2000]
				}
				fmt.Fprintf(w, "\r%s", line)
				i++
			}
		}
	}()
	return func() {
		close(stop)
		wg.Wait()
	}
}
