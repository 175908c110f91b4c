// Package log builds the zerolog loggers used by the command line tool.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for building a logger.
type Config struct {
	Level   string    // optional log level ("debug", "info", etc.), LOG_LEVEL is used if empty
	Output  io.Writer // optional writer (defaults to os.Stderr)
	Console bool      // human readable output instead of JSON
}

// New returns a logger for cfg.  Unknown levels fall back to info.
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	lvl := cfg.Level
	if lvl == "" {
		lvl = os.Getenv("LOG_LEVEL")
	}
	if lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil && parsed != zerolog.NoLevel {
			level = parsed
		}
	}

	writer := cfg.Output
	if writer == nil {
		writer = os.Stderr
	}
	if cfg.Console {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.Kitchen}
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}
