package pretty_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/htmlmd/internal/ui/pretty"
	"github.com/yaklabco/htmlmd/pkg/runner"
)

func TestTableFormatter_FormatTable(t *testing.T) {
	t.Parallel()

	workDir := filepath.FromSlash("/work")
	result := &runner.Result{Files: []runner.FileOutcome{
		{
			Path: filepath.FromSlash("/work/docs/index.html"), Output: filepath.FromSlash("/work/docs/index.md"),
			Charset: "utf-8", InputBytes: 2048, OutputBytes: 512, Status: runner.StatusWritten,
		},
		{
			Path: filepath.FromSlash("/work/bad.html"), Output: filepath.FromSlash("/work/bad.md"),
			Charset: "utf-8", InputBytes: 10, Status: runner.StatusFailed, Error: errors.New("boom"),
		},
	}}

	table := pretty.NewTableFormatter(pretty.NewStyles(false), 0).FormatTable(result, workDir)
	lines := strings.Split(strings.TrimSuffix(table, "\n"), "\n")
	require.Len(t, lines, 5)

	assert.True(t, strings.HasPrefix(lines[0], " FILE"))
	assert.Contains(t, lines[0], "STATUS")
	assert.Equal(t, strings.Repeat("=", len(lines[1])), lines[1])
	assert.Equal(t, lines[1], lines[4])

	assert.Contains(t, lines[2], filepath.FromSlash("docs/index.html"))
	assert.Contains(t, lines[2], filepath.FromSlash("docs/index.md"))
	assert.Contains(t, lines[2], "2.0 KiB -> 512 B")
	assert.Contains(t, lines[2], "written")

	assert.Contains(t, lines[3], "bad.html")
	assert.NotContains(t, lines[3], "bad.md")
	assert.Contains(t, lines[3], "failed")
}

func TestTableFormatter_Empty(t *testing.T) {
	t.Parallel()

	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), 80)
	assert.Empty(t, formatter.FormatTable(nil, ""))
	assert.Empty(t, formatter.FormatTable(&runner.Result{}, ""))
}

func TestTableFormatter_TruncatesLongPaths(t *testing.T) {
	t.Parallel()

	long := filepath.FromSlash("/" + strings.Repeat("deep/", 30) + "page.html")
	result := &runner.Result{Files: []runner.FileOutcome{
		{Path: long, Output: strings.TrimSuffix(long, ".html") + ".md", Charset: "utf-8", Status: runner.StatusWritten},
	}}

	table := pretty.NewTableFormatter(pretty.NewStyles(false), 80).FormatTable(result, "")
	row := strings.Split(table, "\n")[2]
	assert.Contains(t, row, "...")
	assert.Contains(t, row, "page.html")
	assert.Contains(t, row, "page.md")
}

func TestOutcomeToTableRow(t *testing.T) {
	t.Parallel()

	row := pretty.OutcomeToTableRow(runner.FileOutcome{
		Path: filepath.FromSlash("/elsewhere/a.html"), Status: runner.StatusSkipped, InputBytes: 5,
	}, filepath.FromSlash("/work"))

	assert.Equal(t, filepath.FromSlash("/elsewhere/a.html"), row.File)
	assert.Equal(t, "-", row.Output)
	assert.Equal(t, "-", row.Charset)
	assert.Equal(t, "5 B", row.Size)
	assert.Equal(t, runner.StatusSkipped, row.Status)
}
