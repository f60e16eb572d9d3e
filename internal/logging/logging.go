// Package logging builds the zerolog loggers used by the command line
// tools.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config configures a logger.
type Config struct {
	// Level is a zerolog level name. Defaults to info.
	Level string

	// Format is FormatJSON or FormatConsole. Defaults to FormatJSON.
	Format string

	// Disabled discards all output.
	Disabled bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// Configure returns a logger for cfg. Unknown levels fall back to info.
func Configure(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}

	switch {
	case cfg.Disabled:
		output = io.Discard
	case strings.EqualFold(cfg.Format, FormatConsole):
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}
