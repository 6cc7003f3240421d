package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is attached to every log line.
const ServiceName = "facultrack"

// Setup initializes the global zerolog logger based on environment configuration.
//   - level: log level string (trace, debug, info, warn, error, fatal, panic)
//   - format: "json" for production, "pretty" for human-readable dev output
func Setup(level, format string) zerolog.Logger {
	return New(os.Stdout, level, format)
}

// New builds a logger writing to w. Tests pass a buffer here.
func New(w io.Writer, level, format string) zerolog.Logger {
	writer := w
	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Str("service", ServiceName).
		Logger()
}
