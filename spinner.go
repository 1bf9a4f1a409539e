package main

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner provides a simple terminal loading animation while a session
// gathers its readings. Writes made through it while it spins clear the
// animation line first, so log lines are not drawn over
type Spinner struct {
	out   io.Writer
	chars []string
	delay time.Duration
	end   chan struct{}
	wg    sync.WaitGroup

	mu     sync.Mutex
	active bool
}

func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{
		out:   out,
		chars: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		delay: 100 * time.Millisecond,
	}
}

func (s *Spinner) Start(message string) {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()

	s.end = make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.delay)
		defer ticker.Stop()

		i := 0
		for {
			s.draw("\r%s %s", s.chars[i%len(s.chars)], message)
			i++

			select {
			case <-s.end:
				s.draw("\r✅ %s\n", message)
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *Spinner) Stop() {
	close(s.end)
	s.wg.Wait()

	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// Write passes p to the underlying writer, clearing the animation line
// first while the spinner runs; the next tick redraws it
func (s *Spinner) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		fmt.Fprint(s.out, "\r\033[K")
	}
	return s.out.Write(p)
}

func (s *Spinner) draw(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}
