// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a config string to a slog level. Unknown values are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger writing to w.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Setup installs the default logger. Logs go to file when set, otherwise to
// stderr, or nowhere when quiet (the TUI owns the terminal). The returned
// function closes the log file.
func Setup(level, file string, quiet bool) (func() error, error) {
	var w io.Writer = os.Stderr
	closer := func() error { return nil }

	switch {
	case file != "":
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return closer, fmt.Errorf("opening log file: %w", err)
		}
		w, closer = f, f.Close
	case quiet:
		w = io.Discard
	}

	slog.SetDefault(New(w, level))
	return closer, nil
}
