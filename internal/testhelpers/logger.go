// Package testhelpers holds fixtures shared by the package tests.
package testhelpers

import (
	"io"
	"log/slog"
	"os"

	"github.com/tatianab/integrity-trail/internal/logging"
)

// LevelEnv names the variable that sets the level of test loggers, for example TEST_LOG_LEVEL=warn to quiet
// a verbose run. The default is debug.
const LevelEnv = "TEST_LOG_LEVEL"

// NewLogger returns a text logger writing to logSink, such as io.Discard or os.Stderr, with the same context
// handler the game uses so that attributes added with logging.WithAttrs show up in test output.
func NewLogger(logSink io.Writer) *slog.Logger {
	return NewLoggerAt(logSink, Level())
}

// NewLoggerAt is NewLogger with a fixed level.
func NewLoggerAt(logSink io.Writer, level slog.Level) *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{Level: level})))
}

// Level reads LevelEnv.
func Level() slog.Level {
	name, ok := os.LookupEnv(LevelEnv)
	if !ok || name == "" {
		return slog.LevelDebug
	}
	return logging.ParseLevel(name)
}
