package session

import (
	"strings"
	"sync"
	"unicode/utf8"

	"sqlsage/cli/internal/pipeline"
)

// Tracker accumulates observed pipeline states into a renderable stage list.
// It is safe for concurrent use: the orchestrator reports transitions from
// the request goroutine while the renderer ticks from its own.
type Tracker struct {
	mu        sync.Mutex
	completed []string
	seen      map[string]struct{}
	inflight  string
	done      bool

	// maxLineLen pads every rendered line to the widest one seen so far to
	// prevent flickering when the area repaints.
	maxLineLen int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

// Observe records one state transition.
func (t *Tracker) Observe(s pipeline.State) {
	view, ok := stageViews[s]
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if view.completed != "" {
		// Validation can be re-entered after a correction; show it once.
		if _, dup := t.seen[view.completed]; !dup {
			t.seen[view.completed] = struct{}{}
			t.completed = append(t.completed, view.completed)
		}
	}
	t.inflight = view.inflight
	if s == pipeline.StateDone {
		t.done = true
	}
}

// Done reports whether a terminal state was observed.
func (t *Tracker) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Reset prepares the tracker for the next question in the same session.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed = nil
	t.seen = make(map[string]struct{})
	t.inflight = ""
	t.done = false
	t.maxLineLen = 0
}

// Lines renders the current stage list using the given spinner frame.
// All lines are padded to the widest seen so far.
func (t *Tracker) Lines(frame string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	lines := make([]string, 0, len(t.completed)+1)
	for _, label := range t.completed {
		lines = append(lines, "✓ "+label)
	}
	if !t.done && t.inflight != "" {
		lines = append(lines, frame+" "+t.inflight)
	}

	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > t.maxLineLen {
			t.maxLineLen = n
		}
	}
	for i := range lines {
		if pad := t.maxLineLen - utf8.RuneCountInString(lines[i]); pad > 0 {
			lines[i] += strings.Repeat(" ", pad)
		}
	}
	return strings.Join(lines, "\n")
}
