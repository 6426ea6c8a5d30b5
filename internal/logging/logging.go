// Package logging builds the zerolog loggers shared by the insight binaries.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a JSON logger on stdout tagged with the service name.
func New(service, level string) zerolog.Logger {
	return NewWithWriter(os.Stdout, service, level)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(w io.Writer, service, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().
		Str("service", service).
		Timestamp().
		Logger()
}
