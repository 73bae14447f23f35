package log

import (
	"io"
	"os"
	"time"

	"github.com/ipfans/fxlogger"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// NewLogger creates a configured zerolog.Logger instance
func NewLogger() zerolog.Logger {
	return newLogger(os.Stdout, os.Getenv("DEBUG") == "true")
}

func newLogger(out io.Writer, debug bool) zerolog.Logger {
	logWriter := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(logWriter).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Module provides the application logger and routes fx's own events through it.
func Module() fx.Option {
	logger := NewLogger()
	return fx.Options(
		fx.WithLogger(fxlogger.WithZerolog(logger)),
		fx.Module(
			"log",
			fx.Supply(logger),
		),
	)
}
