// Package logging configures the application's slog logger.
//
// Console output goes through tint; an optional JSON file sink is rotated by
// lumberjack. Components obtain a child logger with WithComponent.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization
type Options struct {
	Level     string    // debug|info|warn|error
	Format    string    // "console" or "json"
	File      string    // optional path for rotated JSON logs
	AddSource bool
	Output    io.Writer // console writer, defaults to os.Stderr
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *slog.Logger
)

// L returns the application logger, falling back to slog.Default before Init is called
func L() *slog.Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultLogger == nil {
		return slog.Default()
	}
	return defaultLogger
}

// Init builds a logger from opts and installs it as the slog default
func Init(opts Options) *slog.Logger {
	logger := New(opts)

	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
	slog.SetDefault(logger)

	return logger
}

// New builds a logger from opts without touching the defaults
func New(opts Options) *slog.Logger {
	lvl := ParseLevel(opts.Level)
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var handlers []slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		handlers = append(handlers, slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	} else {
		handlers = append(handlers, tint.NewHandler(out, &tint.Options{
			Level:      lvl,
			AddSource:  opts.AddSource,
			TimeFormat: time.Kitchen,
		}))
	}

	if file := strings.TrimSpace(opts.File); file != "" {
		w := &lumberjack.Logger{Filename: file, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0]).With(slog.String("app", "map-gallery"))
	}
	return slog.New(&fanout{hs: handlers}).With(slog.String("app", "map-gallery"))
}

// WithComponent returns a logger tagged with the component name
func WithComponent(name string) *slog.Logger {
	return L().With(slog.String("component", name))
}

// ParseLevel converts a level name to a slog.Level, defaulting to info
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

// fanout sends every record to all handlers.
type fanout struct{ hs []slog.Handler }

func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(f.hs))
	for i, h := range f.hs {
		hs[i] = h.WithAttrs(attrs)
	}
	return &fanout{hs: hs}
}

func (f *fanout) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(f.hs))
	for i, h := range f.hs {
		hs[i] = h.WithGroup(name)
	}
	return &fanout{hs: hs}
}
