// Package logging builds the root zerolog.Logger the orchestrator hands to
// every subsystem and ModuleContext (spec.md §4.10 expansion), generalizing
// the teacher's cmd/server/main.go call to pkg/logger.New(logger.Config{...})
// into a small, dependency-free constructor over the same library.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config mirrors the teacher's logger.Config shape: a level name and a
// pretty/console-writer toggle for local development.
type Config struct {
	// Level is one of "trace", "debug", "info", "warn", "error", "fatal",
	// "panic", case-insensitive. Defaults to "info" if empty or unrecognized.
	Level string
	// Pretty selects zerolog's human-readable console writer instead of raw
	// JSON lines.
	Pretty bool
	// Output overrides the destination writer. Defaults to os.Stderr.
	Output io.Writer
}

// New builds the root logger, timestamped, at the configured level.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Component returns a child logger scoped to name, the same
// `.With().Str("component", ...).Logger()` idiom the teacher's
// internal/queue/worker.go and internal/events/bus.go use at each
// subsystem's construction site.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// Module returns a child logger scoped to a module name, used by
// internal/hctx when constructing a ModuleContext.
func Module(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("module", name).Logger()
}
