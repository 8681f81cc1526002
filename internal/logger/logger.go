package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger interface for structured logging
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Fatal(msg string, err error, fields ...interface{})
	With(fields ...interface{}) Logger
}

// Config selects level and output format
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json", "text"
}

// SlogLogger implements Logger on top of log/slog
type SlogLogger struct {
	log *slog.Logger
}

// New creates a logger writing to stdout
func New(cfg Config) Logger {
	return NewWithWriter(os.Stdout, cfg)
}

// NewWithWriter creates a logger writing to w
func NewWithWriter(w io.Writer, cfg Config) Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return &SlogLogger{log: slog.New(handler)}
}

// NewNop returns a logger that discards everything
func NewNop() Logger {
	return NewWithWriter(io.Discard, Config{Level: "error"})
}

// ParseLevel converts a level name to slog.Level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// Info logs an info message
func (l *SlogLogger) Info(msg string, fields ...interface{}) {
	l.log.Info(msg, fields...)
}

// Error logs an error message
func (l *SlogLogger) Error(msg string, err error, fields ...interface{}) {
	l.log.Error(msg, append([]interface{}{"error", err}, fields...)...)
}

// Warn logs a warning message
func (l *SlogLogger) Warn(msg string, fields ...interface{}) {
	l.log.Warn(msg, fields...)
}

// Debug logs a debug message
func (l *SlogLogger) Debug(msg string, fields ...interface{}) {
	l.log.Debug(msg, fields...)
}

// Fatal logs a fatal error and exits
func (l *SlogLogger) Fatal(msg string, err error, fields ...interface{}) {
	l.Error(msg, err, fields...)
	os.Exit(1)
}

// With returns a logger that adds fields to every record
func (l *SlogLogger) With(fields ...interface{}) Logger {
	return &SlogLogger{log: l.log.With(fields...)}
}
