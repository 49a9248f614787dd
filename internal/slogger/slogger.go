// Package slogger provides structured logging for execkit using Go's slog
// with charmbracelet/log as the handler. The logger travels in the context so
// library code such as internal/exec can log without holding a reference.
package slogger

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type contextKey string

const loggerKey contextKey = "logger"

// Config holds logger configuration.
type Config struct {
	// Verbosity controls log level:
	// 0 (default) -> Error only
	// 1 (-v)      -> Info level
	// 2+ (-vv)    -> Debug level
	Verbosity int

	// Output is the writer for log output. Defaults to os.Stderr.
	Output io.Writer

	// Prefix is printed before every message (empty = none).
	Prefix string
}

// Level maps a verbosity count to a charm log level.
func Level(verbosity int) charmlog.Level {
	switch {
	case verbosity >= 2:
		return charmlog.DebugLevel
	case verbosity == 1:
		return charmlog.InfoLevel
	default:
		return charmlog.ErrorLevel
	}
}

// New creates a new slog.Logger with charmbracelet/log as the handler.
func New(cfg Config) *slog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	handler := charmlog.NewWithOptions(output, charmlog.Options{
		Level:           Level(cfg.Verbosity),
		Prefix:          cfg.Prefix,
		ReportTimestamp: cfg.Verbosity >= 2,
		ReportCaller:    false,
	})

	return slog.New(handler)
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context.
// Returns a discarding logger if none is set (never returns nil).
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.New(discardHandler{})
}

// L is a convenience alias for FromContext.
func L(ctx context.Context) *slog.Logger {
	return FromContext(ctx)
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
