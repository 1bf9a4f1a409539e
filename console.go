package main

import (
	"fmt"
	"io"
	"strings"
)

// consoleSink prints the rendered slots in popup order once the session
// is done - it satisfies the sink interface
type consoleSink struct {
	out      io.Writer
	rendered map[slot]content
}

// newConsoleSink creates a console sink printing to out
func newConsoleSink(out io.Writer) *consoleSink {
	return &consoleSink{out: out, rendered: map[slot]content{}}
}

func (s *consoleSink) write(r result) error {
	s.rendered[r.slot()] = r.render()
	return nil
}

func (s *consoleSink) flush() error {
	for _, sl := range slots {
		c, ok := s.rendered[sl]
		if !ok {
			continue
		}

		text := strings.ReplaceAll(c.text, "\n", "\n  ")
		if _, err := fmt.Fprintf(s.out, "%s: %s\n", sl, text); err != nil {
			return fmt.Errorf("failed to write to console: %w", err)
		}
	}

	return nil
}
