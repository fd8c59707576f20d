// Package logger provides a configurable logger across arcanum components.
//
// The root logger uses github.com/rs/zerolog with a console writer. It is
// disabled when running under go test.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	logger = zerolog.New(output).With().Timestamp().Logger()
	if strings.HasSuffix(os.Args[0], ".test") {
		logger = zerolog.Nop()
	}
}

// SetOutput changes the output of the root logger.
func SetOutput(w io.Writer) {
	logger = logger.Output(w)
}

// Set replaces the root logger.
func Set(l zerolog.Logger) {
	logger = l
}

// Disable the root logger.
func Disable() {
	logger = zerolog.Nop()
}

// Logger returns the root logger.
func Logger() zerolog.Logger {
	return logger
}
