// Package logging provides structured logging utilities.
//
// Console logs are bracketed, with colors on a terminal:
// [LEVEL] [SYSTEM] [HH:MM:SS] message key=value
//
// Setting format "json" switches to slog's JSON handler.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/eshaffer321/statement-reconciler/internal/infrastructure/config"
)

// NewLogger creates a structured logger writing to stderr, so interactive
// prompts on stdout stay readable
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	return NewLoggerTo(os.Stderr, cfg)
}

// NewLoggerTo creates a structured logger writing to w
func NewLoggerTo(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(NewBracketHandler(w, opts))
}

// NewLoggerWithSystem creates a logger with a system prefix (e.g., "engine", "api", "storage")
func NewLoggerWithSystem(cfg config.LoggingConfig, system string) *slog.Logger {
	logger := NewLogger(cfg)
	return logger.With("system", system)
}

// ParseLevel maps a config level name to a slog level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
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
