package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger is the diagnostic logger handed to commands and connections.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config selects level, encoding and destination. Zero values mean warn,
// text and stderr.
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

type handle struct {
	sl    *slog.Logger
	level *slog.LevelVar
}

// New builds a slog-backed Logger whose handler masks secrets.
func New(cfg Config) (Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	level := new(slog.LevelVar)
	level.Set(lvl)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: maskAttr}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		h = slog.NewTextHandler(out, opts)
	case "json":
		h = slog.NewJSONHandler(out, opts)
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}
	return handle{sl: slog.New(h), level: level}, nil
}

// ParseLevel maps debug, info, warn (or warning) and error to a slog level.
// The empty string is warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("logger: unknown level %q", s)
}

// SetLevel changes the level of l and every logger derived from it with
// With. Loggers not built by New are left alone.
func SetLevel(l Logger, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if h, ok := l.(handle); ok {
		h.level.Set(lvl)
	}
	return nil
}

// Slog exposes the *slog.Logger behind l for packages that take one.
func Slog(l Logger) *slog.Logger {
	if h, ok := l.(handle); ok {
		return h.sl
	}
	return slog.Default()
}

func (h handle) Debug(msg string, args ...any) { h.sl.Debug(msg, args...) }
func (h handle) Info(msg string, args ...any)  { h.sl.Info(msg, args...) }
func (h handle) Warn(msg string, args ...any)  { h.sl.Warn(msg, args...) }
func (h handle) Error(msg string, args ...any) { h.sl.Error(msg, args...) }

func (h handle) With(args ...any) Logger {
	return handle{sl: h.sl.With(args...), level: h.level}
}

var fallback = sync.OnceValue(func() Logger {
	l, _ := New(Config{})
	return l
})
