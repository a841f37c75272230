// Package logging constructs the slog handlers used across the application.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// ParseLevel converts a textual log level into a slog.Level. Unknown values
// fall back to info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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

// NewLogger creates a configured slog.Logger instance. It does not set the
// global logger, allowing for isolated logger instances. The "text" format
// uses a colorized tint handler; "json" uses the standard JSON handler.
func NewLogger(w io.Writer, levelStr, formatStr string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := ParseLevel(levelStr)

	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(w, &tint.Options{Level: level})
	}

	return slog.New(handler)
}
