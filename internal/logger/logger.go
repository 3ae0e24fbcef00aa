// Package logger provides a slog-based structured logger with context support.
package logger

import (
	"context"
	"io"
	"log/slog"
)

// Level mirrors slog levels so callers don't import slog directly.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// LoggerInterface is the logging contract used across the application.
// All methods take a context so handlers can extract trace IDs.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) LoggerInterface
}

// Logger implements LoggerInterface on top of log/slog.
type Logger struct {
	sl *slog.Logger
}

// New creates a Logger writing to out at the given level.
// service is attached to every record. A custom handler may be passed to
// override the default text handler (nil uses the default).
func New(out io.Writer, level Level, service string, handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	}
	sl := slog.New(handler)
	if service != "" {
		sl = sl.With("service", service)
	}
	return &Logger{sl: sl}
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.sl.DebugContext(ctx, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.sl.InfoContext(ctx, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.sl.WarnContext(ctx, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.sl.ErrorContext(ctx, msg, args...)
}

// With returns a child logger with the given key-value pairs attached.
func (l *Logger) With(args ...any) LoggerInterface {
	return &Logger{sl: l.sl.With(args...)}
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() *Logger {
	return New(io.Discard, LevelError+4, "", nil)
}

var _ LoggerInterface = (*Logger)(nil)
