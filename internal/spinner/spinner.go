// Package spinner draws a one-line progress indicator while the wizard waits
// on a generator or the store.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const interval = 80 * time.Millisecond

// Spinner is a running indicator. The zero value is not usable; call Start.
type Spinner struct {
	w io.Writer

	mu      sync.Mutex
	message string
	// width is the widest line drawn so far, in terminal cells.
	width int

	done     chan struct{}
	cleared  chan struct{}
	stopOnce sync.Once
}

// Start draws an animated spinner followed by message on w until Stop is called.
func Start(w io.Writer, message string) *Spinner {
	s := &Spinner{
		w:       w,
		message: message,
		done:    make(chan struct{}),
		cleared: make(chan struct{}),
	}
	go s.loop()
	return s
}

// Update replaces the message shown next to the spinner.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Stop halts the animation and clears the line. It is safe to call more than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	<-s.cleared
}

//nolint:errcheck // terminal writes; nothing useful to do on failure
func (s *Spinner) loop() {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.mu.Lock()
		line := frames[i%len(frames)] + " " + s.message
		w := runewidth.StringWidth(line)
		pad := max(s.width-w, 0)
		s.width = max(s.width, w)
		s.mu.Unlock()
		fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", pad))

		select {
		case <-s.done:
			s.mu.Lock()
			width := s.width
			s.mu.Unlock()
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", width))
			close(s.cleared)
			return
		case <-ticker.C:
		}
	}
}
