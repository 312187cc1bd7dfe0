// Package logging provides structured logging utilities.
//
// Console logs are formatted as:
// [LEVEL] [COMPONENT] [HH:MM:SS] message key=value
package logging

import (
	"log/slog"
	"os"

	"github.com/mkeren/finsight-backend/internal/infrastructure/config"
)

// NewLogger creates a structured logger based on config
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = NewConsoleHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// NewLoggerWithComponent creates a logger with a component prefix
// (e.g. "api", "matcher", "reconciler") shown in its own bracket.
func NewLoggerWithComponent(cfg config.LoggingConfig, component string) *slog.Logger {
	return NewLogger(cfg).With("component", component)
}
