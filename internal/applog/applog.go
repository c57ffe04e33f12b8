// Package applog wraps charmbracelet/log for the core's recoverable-error
// and fallback logging. It is deliberately narrow: the hot per-attempt
// path never logs, only the named recoverable conditions in the error
// handling design (catalog exhaustion, dropped inconsistent attempts,
// numerical-edge fallbacks).
package applog

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the leveled, key/value logger components take a reference to.
type Logger = log.Logger

// New returns a logger writing to stderr at the given level.
func New(level log.Level) *Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}

// Discard returns a logger that drops everything, for tests that don't
// want log noise but still need a non-nil *Logger.
func Discard() *Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}
