package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/yaklabco/htmlmd/pkg/runner"
)

// jsonSchemaVersion is bumped when the JSON layout changes incompatibly.
const jsonSchemaVersion = "1"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult describes one converted file.
type JSONFileResult struct {
	Path        string `json:"path"`
	Output      string `json:"output,omitempty"`
	Status      string `json:"status"`
	Charset     string `json:"charset,omitempty"`
	InputBytes  int    `json:"inputBytes"`
	OutputBytes int    `json:"outputBytes"`
	DurationMS  int64  `json:"durationMs"`
	Error       string `json:"error,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesDiscovered int   `json:"filesDiscovered"`
	FilesConverted  int   `json:"filesConverted"`
	FilesWritten    int   `json:"filesWritten"`
	FilesUnchanged  int   `json:"filesUnchanged"`
	FilesSkipped    int   `json:"filesSkipped"`
	FilesFailed     int   `json:"filesFailed"`
	FilesTimedOut   int   `json:"filesTimedOut"`
	BytesIn         int   `json:"bytesIn"`
	BytesOut        int   `json:"bytesOut"`
	DurationMS      int64 `json:"durationMs"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{opts: opts}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (err error) {
	bw := bufio.NewWriterSize(r.opts.Writer, bufWriterSize)
	defer func() {
		if flushErr := bw.Flush(); err == nil && flushErr != nil {
			err = fmt.Errorf("flush report: %w", flushErr)
		}
	}()

	encoder := json.NewEncoder(bw)
	encoder.SetEscapeHTML(false)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(r.buildOutput(result)); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{Version: jsonSchemaVersion, Files: []JSONFileResult{}}
	if result == nil {
		return output
	}

	for _, file := range result.Files {
		entry := JSONFileResult{
			Path:        r.relative(file.Path),
			Status:      string(file.Status),
			Charset:     file.Charset,
			InputBytes:  file.InputBytes,
			OutputBytes: file.OutputBytes,
			DurationMS:  file.Duration.Milliseconds(),
		}
		if file.Output != "" {
			entry.Output = r.relative(file.Output)
		}
		if file.Error != nil {
			entry.Error = file.Error.Error()
		}
		output.Files = append(output.Files, entry)
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		FilesDiscovered: stats.FilesDiscovered,
		FilesConverted:  stats.FilesConverted,
		FilesWritten:    stats.FilesWritten,
		FilesUnchanged:  stats.FilesUnchanged,
		FilesSkipped:    stats.FilesSkipped,
		FilesFailed:     stats.FilesFailed,
		FilesTimedOut:   stats.FilesTimedOut,
		BytesIn:         stats.BytesIn,
		BytesOut:        stats.BytesOut,
		DurationMS:      result.Duration.Milliseconds(),
	}
	return output
}

func (r *JSONReporter) relative(path string) string {
	if r.opts.WorkingDir == "" {
		return filepath.ToSlash(path)
	}
	if rel, err := filepath.Rel(r.opts.WorkingDir, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}
