// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// defaultLogger is the package-level default logger instance. It is read by
// concurrent conversions, so access goes through an atomic pointer.
//
//nolint:gochecknoglobals // Package-level logger is intentional for convenience
var defaultLogger atomic.Pointer[log.Logger]

// New creates a new logger writing to stderr with the specified level.
// Valid levels: "debug", "info", "warn", "error".
func New(level string) *log.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a new logger writing to w with the specified level.
func NewWithWriter(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
		Prefix:          "htmlmd",
	})

	setLoggerLevel(logger, level)

	return logger
}

// setLoggerLevel applies a level name, falling back to info for names
// charmbracelet/log does not know.
func setLoggerLevel(logger *log.Logger, level string) {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		name = "warn"
	}
	parsed, err := log.ParseLevel(name)
	if err != nil {
		parsed = log.InfoLevel
	}
	logger.SetLevel(parsed)
}

// Default returns the package-level default logger.
func Default() *log.Logger {
	if logger := defaultLogger.Load(); logger != nil {
		return logger
	}
	defaultLogger.CompareAndSwap(nil, New("info"))
	return defaultLogger.Load()
}

// SetDefault sets the package-level default logger.
func SetDefault(logger *log.Logger) {
	defaultLogger.Store(logger)
}

// SetLevel updates the log level of the default logger.
func SetLevel(level string) {
	setLoggerLevel(Default(), level)
}
