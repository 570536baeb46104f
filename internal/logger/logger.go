// Package logger configures slog for the server. INFO and WARN records go
// to one writer, ERROR and above to another, and optionally all records are
// copied to a log file.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configure Setup. Zero writers mean os.Stdout and os.Stderr.
type Options struct {
	Level  slog.Level
	Format string // "text" or "json"
	Path   string
	Stdout io.Writer
	Stderr io.Writer
}

// levelRouter is a slog.Handler that sends ERROR+ to errs and the rest to out.
type levelRouter struct {
	level slog.Leveler
	out   slog.Handler
	errs  slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level.Level()
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.errs.Handle(ctx, r)
	}
	return lr.out.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{level: lr.level, out: lr.out.WithAttrs(attrs), errs: lr.errs.WithAttrs(attrs)}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{level: lr.level, out: lr.out.WithGroup(name), errs: lr.errs.WithGroup(name)}
}

// Setup builds a logger from opts. The returned cleanup closes the log file
// and is never nil.
func Setup(opts Options) (*slog.Logger, func(), error) {
	cleanup := func() {}

	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	errs := opts.Stderr
	if errs == nil {
		errs = os.Stderr
	}

	if opts.Path != "" {
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, cleanup, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		out = io.MultiWriter(out, f)
		errs = io.MultiWriter(errs, f)
	}

	hopts := &slog.HandlerOptions{Level: opts.Level}
	newHandler := func(w io.Writer) slog.Handler {
		if opts.Format == "json" {
			return slog.NewJSONHandler(w, hopts)
		}
		return slog.NewTextHandler(w, hopts)
	}

	handler := &levelRouter{level: opts.Level, out: newHandler(out), errs: newHandler(errs)}
	return slog.New(handler), cleanup, nil
}

// ParseLevel converts a level name to a slog.Level. Unknown names are info.
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
