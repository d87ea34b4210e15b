package reporter

import (
	"io"
	"os"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output. Defaults to os.Stderr, leaving
	// stdout for converted Markdown.
	Writer io.Writer

	// Format specifies the output format.
	Format Format

	// Color controls colorized output: "auto", "always" or "never".
	Color string

	// Compact disables JSON indentation.
	Compact bool

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is.
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer: os.Stderr,
		Format: FormatText,
		Color:  "auto",
	}
}
