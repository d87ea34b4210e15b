package pretty

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/htmlmd/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func files(n int) string {
	if n == 1 {
		return wordFile
	}
	return wordFiles
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 files converted, 1 unchanged, 1 failed (1 timed out) in 40ms".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats, duration time.Duration) string {
	if stats.FilesDiscovered == 0 {
		return s.Warning.Render("No HTML files found") + "\n"
	}

	converted := fmt.Sprintf("%d %s converted", stats.FilesConverted, files(stats.FilesConverted))
	if stats.FilesFailed == 0 && stats.FilesSkipped == 0 {
		converted = s.Success.Render(converted)
	}
	parts := []string{converted}

	if stats.FilesUnchanged > 0 {
		parts = append(parts, s.Dim.Render(fmt.Sprintf("%d unchanged", stats.FilesUnchanged)))
	}
	if stats.FilesSkipped > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
	}
	if stats.FilesFailed > 0 {
		failed := fmt.Sprintf("%d failed", stats.FilesFailed)
		if stats.FilesTimedOut > 0 {
			failed += fmt.Sprintf(" (%d timed out)", stats.FilesTimedOut)
		}
		parts = append(parts, s.Error.Render(failed))
	}

	line := strings.Join(parts, ", ")
	if duration > 0 {
		line += s.Dim.Render(" in " + duration.Round(time.Millisecond).String())
	}
	return line + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	row := func(label string, style func(...string) string, value int) {
		fmt.Fprintf(&builder, "  %-18s %s\n", label+":", style(strconv.Itoa(value)))
	}

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	row("Files found", s.SummaryValue.Render, stats.FilesDiscovered)
	row("Files converted", s.SummaryValue.Render, stats.FilesConverted)
	if stats.FilesWritten > 0 {
		row("Written", s.Success.Render, stats.FilesWritten)
	}
	if stats.FilesUnchanged > 0 {
		row("Unchanged", s.Dim.Render, stats.FilesUnchanged)
	}
	if stats.FilesSkipped > 0 {
		row("Skipped", s.Warning.Render, stats.FilesSkipped)
	}
	if stats.FilesFailed > 0 {
		row("Failed", s.Failure.Render, stats.FilesFailed)
	}
	if stats.FilesTimedOut > 0 {
		row("Timed out", s.Failure.Render, stats.FilesTimedOut)
	}

	builder.WriteString("\n")
	fmt.Fprintf(&builder, "  %-18s %s\n", "HTML read:", s.SummaryValue.Render(FormatBytes(stats.BytesIn)))
	fmt.Fprintf(&builder, "  %-18s %s\n", "Markdown produced:", s.SummaryValue.Render(FormatBytes(stats.BytesOut)))
	builder.WriteString("\n")

	switch {
	case stats.FilesFailed > 0:
		builder.WriteString(s.Failure.Render("Conversion failed"))
	case stats.FilesSkipped > 0:
		builder.WriteString(s.Warning.Render("Conversion completed with skipped files"))
	default:
		builder.WriteString(s.Success.Render("Conversion succeeded"))
	}
	builder.WriteString("\n")

	return builder.String()
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}
