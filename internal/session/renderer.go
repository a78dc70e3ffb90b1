package session

import (
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"sqlsage/cli/internal/pipeline"
)

// spinner frames similar to the docker CLI.
var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Renderer animates the stage list in a pterm area while a question runs.
// The area removes itself when stopped so the final result starts on a clean
// screen. One renderer serves a whole interactive session; call Start before
// each question and Stop after.
type Renderer struct {
	mu      sync.Mutex
	tracker *Tracker
	area    *pterm.AreaPrinter
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool

	frameIdx int
	last     string
}

// NewRenderer creates a renderer with a fresh tracker.
func NewRenderer() *Renderer {
	return &Renderer{tracker: NewTracker()}
}

// Observe is wired as the orchestrator's state hook.
func (r *Renderer) Observe(s pipeline.State) {
	r.tracker.Observe(s)
	r.update()
}

// Start hides the cursor, opens the area, and begins the spinner ticker.
// Starting twice is a no-op.
func (r *Renderer) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.tracker.Reset()

	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return
	}
	r.area = area
	r.stop = make(chan struct{})
	r.running = true
	r.last = ""

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				r.mu.Lock()
				r.frameIdx++
				r.mu.Unlock()
				r.update()
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop halts the ticker, removes the area, and restores the cursor.
func (r *Renderer) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	close(r.stop)
	r.running = false
	r.mu.Unlock()

	r.wg.Wait()

	r.mu.Lock()
	if r.area != nil {
		_ = r.area.Stop()
		r.area = nil
	}
	r.mu.Unlock()
	cursor.Show()
}

func (r *Renderer) update() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running || r.area == nil {
		return
	}
	text := r.tracker.Lines(frames[r.frameIdx%len(frames)])
	if text == r.last {
		return
	}
	r.last = text
	r.area.Update(text)
}
