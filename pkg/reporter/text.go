package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/htmlmd/internal/ui/pretty"
	"github.com/yaklabco/htmlmd/pkg/runner"
)

// TextReporter writes styled terminal output. The text format lists
// failures followed by a one-line summary; table adds a per-file table and
// summary replaces the one-liner with aggregate statistics.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	width  int
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		width:  pretty.TerminalWidth(opts.Writer),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (err error) {
	if result == nil {
		result = &runner.Result{}
	}

	bw := bufio.NewWriterSize(r.opts.Writer, bufWriterSize)
	defer func() {
		if flushErr := bw.Flush(); err == nil && flushErr != nil {
			err = fmt.Errorf("flush report: %w", flushErr)
		}
	}()

	_, _ = bw.WriteString(r.styles.FormatFailures(result))

	switch r.opts.Format {
	case FormatTable:
		if len(result.Files) > 0 {
			table := pretty.NewTableFormatter(r.styles, r.width)
			_, _ = bw.WriteString(table.FormatTable(result, r.opts.WorkingDir))
		}
		_, _ = bw.WriteString(r.styles.FormatSummaryOneLine(result.Stats, result.Duration))
	case FormatSummary:
		_, _ = bw.WriteString(r.styles.FormatSummary(result.Stats))
	default:
		_, _ = bw.WriteString(r.styles.FormatSummaryOneLine(result.Stats, result.Duration))
	}

	return nil
}
