// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the process-wide logger. Components derive children from it via
// WithComponent.
var Logger = zerolog.Nop()

// ParseLevel maps the user-facing level names onto zerolog levels. Unknown
// names disable logging.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

// Init configures the global logger. Output always goes to w (stderr when
// nil) because stdout carries the selection result.
func Init(level string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	lvl := ParseLevel(level)
	zerolog.SetGlobalLevel(lvl)

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
	}
	Logger = zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	log.Logger = Logger
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}
