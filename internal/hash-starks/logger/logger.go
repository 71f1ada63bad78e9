// Package logger provides the shared logger for the proving pipeline.
//
// The root logger uses github.com/rs/zerolog with a console writer. The level
// comes from the HASH_STARKS_LOG environment variable (trace, debug, info,
// warn, error, off) and defaults to info.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const levelEnv = "HASH_STARKS_LOG"

var logger zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	logger = zerolog.New(output).With().Timestamp().Logger().Level(levelFromEnv())

	if strings.HasSuffix(os.Args[0], ".test") {
		logger = zerolog.Nop()
	}
}

func levelFromEnv() zerolog.Level {
	switch strings.ToLower(os.Getenv(levelEnv)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "", "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// SetOutput changes the output of the global logger.
func SetOutput(w io.Writer) {
	logger = logger.Output(w)
}

// Set allows overriding the global logger.
func Set(l zerolog.Logger) {
	logger = l
}

// Disable disables logging.
func Disable() {
	logger = zerolog.Nop()
}

// Logger returns a sublogger for a component.
func Logger() zerolog.Logger {
	return logger
}
