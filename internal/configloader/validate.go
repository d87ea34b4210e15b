package configloader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/htmlmd"
)

// Sources recorded for option values that do not come from a file or the
// environment.
const (
	SourceDefault = "default"
	SourceFlag    = "flag"
)

// ValidationError represents an invalid configuration value together with
// where it came from.
type ValidationError struct {
	// Field is the option key (e.g., "rule").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// Source is the config file path, environment variable, SourceFlag or
	// SourceDefault that supplied the value.
	Source string

	// Line is the line number in the config file (if known).
	Line int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.Source != "" {
		if e.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", e.Source, e.Line))
		} else {
			parts = append(parts, e.Source)
		}
	}

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FromFlag reports whether the invalid value was given on the command line.
func (e *ValidationError) FromFlag() bool {
	return e.Source == SourceFlag
}

// origin records where an option value was set.
type origin struct {
	source string
	line   int
}

// Validate builds conversion options from merged values. An invalid or
// unknown key is reported as *ValidationError naming the source that set it.
func Validate(values map[string]any, origins map[string]origin) (htmlmd.Options, error) {
	opts, err := htmlmd.OptionsFromMap(values)
	if err == nil {
		return opts, nil
	}

	var optErr *htmlmd.UnsupportedOptionError
	if !errors.As(err, &optErr) {
		return htmlmd.Options{}, err
	}

	where, ok := origins[optErr.Name]
	if !ok {
		where = origin{source: SourceDefault}
	}
	return htmlmd.Options{}, &ValidationError{
		Field:   optErr.Name,
		Value:   optErr.Value,
		Message: optErr.Reason,
		Source:  where.source,
		Line:    where.line,
		Err:     err,
	}
}
