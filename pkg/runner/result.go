package runner

import (
	"errors"
	"time"
)

// Status describes what happened to one input file.
type Status string

// File statuses.
const (
	StatusWritten   Status = "written"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed out"
)

// FileOutcome records the conversion of one input file.
type FileOutcome struct {
	// Path is the input file path.
	Path string

	// Output is the Markdown file path.
	Output string

	// Charset is the encoding the input was decoded from.
	Charset string

	// InputBytes and OutputBytes are the raw input and Markdown sizes.
	InputBytes  int
	OutputBytes int

	// Duration is the wall time spent on the file.
	Duration time.Duration

	// Status summarizes the outcome.
	Status Status

	// Error is set if the file could not be converted or written.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int

	// FilesConverted is the number of files converted successfully,
	// whether or not their output changed.
	FilesConverted int

	// FilesWritten is the number of Markdown files written.
	FilesWritten int

	// FilesUnchanged is the number of outputs that already matched.
	FilesUnchanged int

	// FilesSkipped is the number of inputs modified during conversion.
	FilesSkipped int

	// FilesFailed is the number of files that encountered errors,
	// including timeouts.
	FilesFailed int

	// FilesTimedOut is the number of conversions abandoned at the deadline.
	FilesTimedOut int

	// BytesIn and BytesOut total the input and output sizes.
	BytesIn  int
	BytesOut int
}

// Result is the overall runner result.
type Result struct {
	// Files contains the outcome for each processed file, ordered by path.
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats

	// Duration is the wall time of the whole run.
	Duration time.Duration
}

// HasFailures reports whether any file failed or timed out.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesFailed > 0
}

// Err joins the errors of all failed files, or returns nil.
func (r *Result) Err() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, file := range r.Files {
		if file.Error != nil {
			errs = append(errs, file.Error)
		}
	}
	return errors.Join(errs...)
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	r.Stats.BytesIn += outcome.InputBytes

	switch outcome.Status {
	case StatusWritten:
		r.Stats.FilesConverted++
		r.Stats.FilesWritten++
	case StatusUnchanged:
		r.Stats.FilesConverted++
		r.Stats.FilesUnchanged++
	case StatusSkipped:
		r.Stats.FilesSkipped++
	case StatusTimedOut:
		r.Stats.FilesFailed++
		r.Stats.FilesTimedOut++
	case StatusFailed:
		r.Stats.FilesFailed++
	}

	if outcome.Error == nil {
		r.Stats.BytesOut += outcome.OutputBytes
	}
}
