// Package logging builds the zerolog loggers used across predprey.
//
// Library packages accept a zerolog.Logger through an option and default to
// zerolog.Nop(); only the command line decides where records go.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a JSON logger tagged with a component field.
func New(w io.Writer, component string) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("component", component).Logger()
}

// Console returns a human-readable logger for terminals.
func Console(w io.Writer, component string) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return zerolog.New(cw).With().Timestamp().Str("component", component).Logger()
}

// ParseLevel accepts zerolog level names and treats "" as info.
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
}
