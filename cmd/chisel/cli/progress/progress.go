// Package progress renders an animated status line while a long-running
// subprocess call is in flight.
//
// An Indicator is a scoped resource: Start spawns the repaint goroutine
// and Stop signals it and waits for it to finish before returning, so the
// foreground never interleaves its own output with a repaint. Stop must
// be reached on every path; callers pair Start with a deferred Stop.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// frameInterval is the repaint cadence of the status line.
const frameInterval = 100 * time.Millisecond

// frames are the spinner glyphs, repainted in order.
var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

// Indicator animates a status line on a background goroutine.
// It is purely cosmetic: when the output is not a terminal the animation
// is suppressed entirely and Start/Stop become no-ops.
type Indicator struct {
	w        io.Writer
	message  string
	interval time.Duration
	enabled  bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// New returns an Indicator labeled with message, writing to stderr.
// The animation is enabled only when stderr is a terminal.
func New(message string) *Indicator {
	return &Indicator{
		w:        os.Stderr,
		message:  message,
		interval: frameInterval,
		enabled:  term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// NewWithWriter returns an always-enabled Indicator writing to w.
// Used by tests to observe the repaint loop without a terminal.
func NewWithWriter(w io.Writer, message string) *Indicator {
	return &Indicator{
		w:        w,
		message:  message,
		interval: frameInterval,
		enabled:  true,
	}
}

// Start begins the animation. Calling Start on a running Indicator is a
// no-op.
func (i *Indicator) Start() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.enabled || i.stop != nil {
		return
	}

	i.stop = make(chan struct{})
	i.done = make(chan struct{})
	go i.spin(i.stop, i.done)
}

// Stop ends the animation, waits for the repaint goroutine to exit, and
// clears the status line. Safe to call multiple times and safe to call
// without a prior Start.
func (i *Indicator) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.stop == nil {
		return
	}

	close(i.stop)
	<-i.done
	i.stop = nil
	i.done = nil

	// Clear the line only after the goroutine has finished writing.
	fmt.Fprint(i.w, "\r"+strings.Repeat(" ", len(i.message)+8)+"\r")
}

// Run executes fn with the indicator animating around it.
func (i *Indicator) Run(fn func()) {
	i.Start()
	defer i.Stop()
	fn()
}

// spin is the repaint loop. It owns all writes between Start and Stop.
func (i *Indicator) spin(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	idx := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			frame := spinnerStyle.Render(frames[idx%len(frames)])
			fmt.Fprintf(i.w, "\r%s %s...", frame, i.message)
			idx++
		}
	}
}
