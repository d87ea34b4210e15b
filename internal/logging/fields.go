// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldDuration   = "duration"

	// Configuration fields.
	FieldConfig    = "config"
	FieldFragment  = "fragment"
	FieldRule      = "rule"
	FieldMaxDepth  = "max_depth"
	FieldJobs      = "jobs"
	FieldTimeout   = "timeout"
	FieldCharset   = "charset"
	FieldEnvSource = "env"

	// Conversion fields.
	FieldInputBytes  = "input_bytes"
	FieldOutputBytes = "output_bytes"
	FieldStage       = "stage"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesConverted  = "files_converted"
	FieldFilesFailed     = "files_failed"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
