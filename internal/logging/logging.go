// Package logging builds the zerolog loggers used across the bridge.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options mirrors the logging part of the configuration.
type Options struct {
	Level  string
	Pretty bool
	Output io.Writer
}

// New returns a root logger. An unknown level falls back to debug.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.DebugLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Named returns a child logger tagged with a component name.
func Named(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("name", name).Logger()
}
