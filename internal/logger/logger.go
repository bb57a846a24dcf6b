// Package logger builds the zerolog logger shared by the Lambda entrypoint
// and the local server.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger at the given level. Development runs outside Lambda
// get a console writer, everything else gets one JSON object per line so
// CloudWatch can index the fields.
func New(level string, appEnv string, lambda bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	if !lambda && (appEnv == "" || appEnv == "dev") {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(out, level)
}

func NewWithWriter(out io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "image-upload").Logger()
}
