// Package reporter writes the outcome of a conversion batch in a chosen
// format.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/htmlmd/pkg/runner"
)

// Reporter formats and writes batch results.
type Reporter interface {
	// Report writes formatted output for the given result.
	Report(ctx context.Context, result *runner.Result) error
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	defaults := DefaultOptions()
	if opts.Writer == nil {
		opts.Writer = defaults.Writer
	}
	if opts.Color == "" {
		opts.Color = defaults.Color
	}

	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatText, FormatTable, FormatSummary:
		opts.Format = format
		return NewTextReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
