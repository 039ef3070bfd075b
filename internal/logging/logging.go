// Package logging sets up the structured logger every other package in
// this module writes through. It wraps github.com/rs/zerolog rather than
// the standard library's log package, giving callers leveled, field-
// tagged output instead of plain text lines.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Level is the minimum level that gets emitted. Empty defaults to
	// "info".
	Level string
	// Pretty selects zerolog's human-readable console writer instead of
	// JSON; meant for local/interactive runs, not production deployments.
	Pretty bool
	// Output overrides the destination writer. Defaults to os.Stderr.
	Output io.Writer
}

// New builds a root zerolog.Logger from opts. Component loggers should be
// derived from it via Logger.With().Str("component", name).Logger() rather
// than constructed independently, so every line carries a consistent
// timestamp format and level filter.
func New(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if opts.Output != nil {
		out = opts.Output
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
