package pretty

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/htmlmd/pkg/runner"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 5 // FILE, OUTPUT, CHARSET, SIZE, STATUS
	minFileWidth     = 20
	minCharsetWidth  = 7
	minSizeWidth     = 4
	minStatusWidth   = 9
	heavySeparator   = "="
)

// TableRow represents a single converted file in the results table.
type TableRow struct {
	File    string
	Output  string
	Charset string
	Size    string
	Status  runner.Status
}

// TableFormatter formats per-file batch results as a styled table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter. A non-positive termWidth
// uses the default width.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{styles: styles, termWidth: termWidth}
}

type columnWidths struct {
	file    int
	output  int
	charset int
	size    int
	status  int
}

func (w columnWidths) total() int {
	return w.file + w.output + w.charset + w.size + w.status + tablePadding*tableColumnCount
}

// FormatTable formats runner results as a styled table. Paths are shown
// relative to workDir when they lie below it.
func (t *TableFormatter) FormatTable(result *runner.Result, workDir string) string {
	if result == nil || len(result.Files) == 0 {
		return ""
	}

	rows := make([]TableRow, 0, len(result.Files))
	for _, file := range result.Files {
		rows = append(rows, OutcomeToTableRow(file, workDir))
	}

	widths := t.calculateColumnWidths(rows)

	var builder strings.Builder
	header := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s  %-*s",
		widths.file, "FILE",
		widths.output, "OUTPUT",
		widths.charset, "CHARSET",
		widths.size, "SIZE",
		widths.status, "STATUS",
	)
	separator := t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, widths.total()))

	builder.WriteString(t.styles.TableHeader.Render(header))
	builder.WriteString("\n")
	builder.WriteString(separator)
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}

	builder.WriteString(separator)
	builder.WriteString("\n")

	return builder.String()
}

// calculateColumnWidths sizes columns to their content and shrinks the path
// columns to fit the terminal.
func (t *TableFormatter) calculateColumnWidths(rows []TableRow) columnWidths {
	widths := columnWidths{
		file:    minFileWidth,
		output:  minFileWidth,
		charset: minCharsetWidth,
		size:    minSizeWidth,
		status:  minStatusWidth,
	}

	for _, row := range rows {
		widths.file = max(widths.file, len(row.File))
		widths.output = max(widths.output, len(row.Output))
		widths.charset = max(widths.charset, len(row.Charset))
		widths.size = max(widths.size, len(row.Size))
	}

	if excess := widths.total() - t.termWidth; excess > 0 {
		widths.output = max(minFileWidth, widths.output-excess)
	}
	if excess := widths.total() - t.termWidth; excess > 0 {
		widths.file = max(minFileWidth, widths.file-excess)
	}

	return widths
}

func (t *TableFormatter) formatRow(row TableRow, widths columnWidths) string {
	status := fmt.Sprintf("%-*s", widths.status, string(row.Status))
	return fmt.Sprintf(" %-*s  %-*s  %-*s  %*s  %s",
		widths.file, truncateFilePath(row.File, widths.file),
		widths.output, truncateFilePath(row.Output, widths.output),
		widths.charset, row.Charset,
		widths.size, row.Size,
		t.statusStyle(row.Status).Render(status),
	)
}

func (t *TableFormatter) statusStyle(status runner.Status) lipgloss.Style {
	switch status {
	case runner.StatusWritten:
		return t.styles.Success
	case runner.StatusUnchanged:
		return t.styles.Dim
	case runner.StatusSkipped:
		return t.styles.Warning
	case runner.StatusFailed, runner.StatusTimedOut:
		return t.styles.Error
	default:
		return lipgloss.NewStyle()
	}
}

// OutcomeToTableRow converts a file outcome to a table row.
func OutcomeToTableRow(outcome runner.FileOutcome, workDir string) TableRow {
	row := TableRow{
		File:    relativeTo(outcome.Path, workDir),
		Charset: outcome.Charset,
		Size:    FormatBytes(outcome.InputBytes),
		Status:  outcome.Status,
	}
	if outcome.Error == nil && outcome.Status != runner.StatusSkipped {
		row.Output = relativeTo(outcome.Output, workDir)
		row.Size = FormatBytes(outcome.InputBytes) + " -> " + FormatBytes(outcome.OutputBytes)
	}
	if row.Charset == "" {
		row.Charset = "-"
	}
	if row.Output == "" {
		row.Output = "-"
	}
	return row
}

func relativeTo(path, workDir string) string {
	if workDir == "" {
		return path
	}
	rel, err := filepath.Rel(workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
