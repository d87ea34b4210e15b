package htmlmd

import (
	"errors"
	"fmt"

	"github.com/yaklabco/htmlmd/pkg/hast"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrUnsupportedOption matches every *UnsupportedOptionError.
	ErrUnsupportedOption = errors.New("unsupported option")

	// ErrDepthExceeded matches every *DepthExceededError.
	ErrDepthExceeded = hast.ErrDepthExceeded

	// ErrInternal matches every *InternalError.
	ErrInternal = errors.New("internal error")
)

// UnsupportedOptionError reports an unknown option key or an invalid value.
type UnsupportedOptionError struct {
	Name   string
	Value  any
	Reason string
}

// Error implements the error interface.
func (e *UnsupportedOptionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unsupported option %q", e.Name)
	}
	return fmt.Sprintf("unsupported option %q: %s", e.Name, e.Reason)
}

// Is matches ErrUnsupportedOption.
func (e *UnsupportedOptionError) Is(target error) bool {
	return target == ErrUnsupportedOption
}

// DepthExceededError reports input nested deeper than Options.MaxDepth.
type DepthExceededError = hast.DepthExceededError

// InternalError reports a failure inside the pipeline that ordinary input
// cannot cause.
type InternalError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	if e.Err == nil {
		return "internal error: " + e.Message
	}
	return fmt.Sprintf("internal error: %s: %v", e.Message, e.Err)
}

// Unwrap returns the underlying error.
func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is matches ErrInternal.
func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}
