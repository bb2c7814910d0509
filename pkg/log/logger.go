package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents the severity of a log message.
type Level int

// Log levels, lowest to highest severity.
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name (case-insensitive) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("log: unknown level %q", s)
	}
}

// Field is one structured logging attribute.
type Field struct {
	Key   string
	Value any
}

// F creates a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Err creates a Field carrying an error under the conventional "error" key.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Logger is the logging interface LiteQueue components write against.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a Logger that includes the given fields in every entry.
	With(fields ...Field) Logger
}

// Option configures a logger created by NewLogger.
type Option func(*options)

type options struct {
	level Level
	json  bool
	out   io.Writer
}

// WithLevel sets the minimum level emitted.
func WithLevel(level Level) Option {
	return func(o *options) { o.level = level }
}

// WithJSON selects JSON output instead of the default text format.
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithOutput directs output to w instead of stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// NewLogger creates a slog-backed Logger.
func NewLogger(opts ...Option) Logger {
	o := options{level: InfoLevel, out: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	ho := &slog.HandlerOptions{Level: toSlogLevel(o.level)}
	var h slog.Handler
	if o.json {
		h = slog.NewJSONHandler(o.out, ho)
	} else {
		h = slog.NewTextHandler(o.out, ho)
	}
	return &slogLogger{sl: slog.New(h)}
}

// FromSlog wraps an existing slog.Logger in the Logger interface.
func FromSlog(sl *slog.Logger) Logger {
	if sl == nil {
		return Noop()
	}
	return &slogLogger{sl: sl}
}

type slogLogger struct {
	sl *slog.Logger
}

func (l *slogLogger) Debug(msg string, fields ...Field) { l.log(slog.LevelDebug, msg, fields) }
func (l *slogLogger) Info(msg string, fields ...Field)  { l.log(slog.LevelInfo, msg, fields) }
func (l *slogLogger) Warn(msg string, fields ...Field)  { l.log(slog.LevelWarn, msg, fields) }
func (l *slogLogger) Error(msg string, fields ...Field) { l.log(slog.LevelError, msg, fields) }

func (l *slogLogger) With(fields ...Field) Logger {
	return &slogLogger{sl: l.sl.With(fieldsToArgs(fields)...)}
}

func (l *slogLogger) log(level slog.Level, msg string, fields []Field) {
	l.sl.LogAttrs(context.Background(), level, msg, fieldsToAttrs(fields)...)
}

func toSlogLevel(level Level) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func fieldsToAttrs(fields []Field) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	return attrs
}

func fieldsToArgs(fields []Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}

// NoopLogger discards every entry. It is the logger queue components fall
// back to when the caller supplies none.
type NoopLogger struct{}

func (NoopLogger) Debug(string, ...Field) {}
func (NoopLogger) Info(string, ...Field)  {}
func (NoopLogger) Warn(string, ...Field)  {}
func (NoopLogger) Error(string, ...Field) {}

func (n NoopLogger) With(...Field) Logger { return n }

// Noop returns a Logger that does nothing.
func Noop() Logger { return NoopLogger{} }
