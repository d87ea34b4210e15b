package pretty_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/htmlmd/internal/ui/pretty"
	"github.com/yaklabco/htmlmd/pkg/runner"
)

func TestFormatSummaryOneLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stats    runner.Stats
		duration time.Duration
		want     string
	}{
		{
			name: "no files",
			want: "No HTML files found\n",
		},
		{
			name:  "single file",
			stats: runner.Stats{FilesDiscovered: 1, FilesConverted: 1, FilesWritten: 1},
			want:  "1 file converted\n",
		},
		{
			name:     "unchanged with duration",
			stats:    runner.Stats{FilesDiscovered: 3, FilesConverted: 3, FilesWritten: 1, FilesUnchanged: 2},
			duration: 1500 * time.Microsecond,
			want:     "3 files converted, 2 unchanged in 2ms\n",
		},
		{
			name: "failures and skips",
			stats: runner.Stats{
				FilesDiscovered: 5, FilesConverted: 2, FilesWritten: 2,
				FilesSkipped: 1, FilesFailed: 2, FilesTimedOut: 1,
			},
			want: "2 files converted, 1 skipped, 2 failed (1 timed out)\n",
		},
	}

	styles := pretty.NewStyles(false)
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, styles.FormatSummaryOneLine(testCase.stats, testCase.duration))
		})
	}
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		out := styles.FormatSummary(runner.Stats{
			FilesDiscovered: 2, FilesConverted: 2, FilesWritten: 2,
			BytesIn: 2048, BytesOut: 100,
		})
		assert.Contains(t, out, "Summary")
		assert.Contains(t, out, "Files found:       2")
		assert.Contains(t, out, "Written:           2")
		assert.Contains(t, out, "HTML read:         2.0 KiB")
		assert.Contains(t, out, "Markdown produced: 100 B")
		assert.Contains(t, out, "Conversion succeeded")
		assert.NotContains(t, out, "Failed")
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		out := styles.FormatSummary(runner.Stats{FilesDiscovered: 2, FilesFailed: 2, FilesTimedOut: 1})
		assert.Contains(t, out, "Failed:            2")
		assert.Contains(t, out, "Timed out:         1")
		assert.Contains(t, out, "Conversion failed")
	})

	t.Run("skipped", func(t *testing.T) {
		t.Parallel()

		out := styles.FormatSummary(runner.Stats{FilesDiscovered: 1, FilesSkipped: 1})
		assert.Contains(t, out, "Conversion completed with skipped files")
	})
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0 B", pretty.FormatBytes(0))
	assert.Equal(t, "1023 B", pretty.FormatBytes(1023))
	assert.Equal(t, "1.5 KiB", pretty.FormatBytes(1536))
	assert.Equal(t, "1.0 MiB", pretty.FormatBytes(1<<20))
}

func TestFormatFailures(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	result := &runner.Result{Files: []runner.FileOutcome{
		{Path: "a.html", Status: runner.StatusWritten},
		{Path: "b.html", Status: runner.StatusFailed, Error: errors.New("b.html: nesting depth exceeded limit of 10")},
		{Path: "c.html", Status: runner.StatusTimedOut, Error: errors.New("c.html: conversion timed out after 1s")},
	}}

	want := "b.html\n  error nesting depth exceeded limit of 10\n" +
		"c.html\n  timeout conversion timed out after 1s\n"
	assert.Equal(t, want, styles.FormatFailures(result))
	assert.Empty(t, styles.FormatFailures(nil))
	assert.Empty(t, styles.FormatFailure(runner.FileOutcome{Path: "a.html"}))
}
