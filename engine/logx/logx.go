// Package logx sets up the structured logger shared by every component.
package logx

import (
	"io"
	"log/slog"
)

// UserLevel is the verbosity selected on the command line. Messages at or above it are shown.
// It can be changed while running.
var UserLevel = new(slog.LevelVar)

func init() {
	UserLevel.Set(slog.LevelWarn)
}

// LevelFromFlags returns the level for the verbosity flags:
//   - vv: slog.LevelDebug
//   - v: slog.LevelInfo
//   - q: slog.LevelError
//   - (default: slog.LevelWarn)
//
// The flags are evaluated in that order, so vv wins over q.
func LevelFromFlags(vv, v, q bool) slog.Level {
	switch {
	case vv:
		return slog.LevelDebug
	case v:
		return slog.LevelInfo
	case q:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// NewLogger creates a text logger filtered by UserLevel.
//
// Parameters:
//   - w: the output
//
// Returns:
//   - *slog.Logger: the logger
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: UserLevel}))
}

// SetDefault sets UserLevel, installs a text logger on w as the slog default and returns it.
//
// Parameters:
//   - w: the output
//   - level: the verbosity
//
// Returns:
//   - *slog.Logger: the installed logger
func SetDefault(w io.Writer, level slog.Level) *slog.Logger {
	UserLevel.Set(level)
	logger := NewLogger(w)
	slog.SetDefault(logger)
	return logger
}

// Component returns a child logger tagged with the component name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", name)
}
