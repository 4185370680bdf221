// Package logging centralises the zerolog setup shared by the daemon
// entrypoint and every package that accepts an optional *zerolog.Logger.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config controls the daemon's root logger.
type Config struct {
	Level  string // "debug", "info", "warn", "error"; default "info"
	Format string // "console" or "json"; default "console"
}

// New builds a root logger from cfg, writing to stderr. "console" format
// (or an empty Format) gets zerolog's human-readable ConsoleWriter;
// anything else falls back to zerolog's native JSON encoding.
func New(cfg Config) zerolog.Logger {
	var w io.Writer = os.Stderr
	if strings.EqualFold(cfg.Format, "console") || cfg.Format == "" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	logger = logger.Level(ParseLevel(cfg.Level))
	return logger
}

// ParseLevel maps a config string to a zerolog.Level, defaulting to Info on
// anything unrecognized rather than erroring — a daemon shouldn't refuse to
// start over a typo in a log level.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

type ctxKey struct{}

// WithContext attaches logger to ctx, retrievable via FromContext.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, &logger)
}

// FromContext extracts the logger attached by WithContext, or a disabled
// logger if none was attached.
func FromContext(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
		return l
	}
	disabled := zerolog.Nop()
	return &disabled
}
