package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// newLogger returns a leveled logger writing to w, human readable when w
// is a terminal and JSON otherwise
func newLogger(level string, w io.Writer) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}

	if isTerminal(w) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// isTerminal reports whether w, or the writer a Spinner draws on, is an
// interactive terminal
func isTerminal(w io.Writer) bool {
	if s, ok := w.(*Spinner); ok {
		w = s.out
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
