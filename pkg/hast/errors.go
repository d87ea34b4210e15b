package hast

import (
	"errors"
	"fmt"
)

// DefaultMaxDepth is the default bound on element nesting.
const DefaultMaxDepth = 1000

// ErrDepthExceeded is matched by every DepthExceededError via errors.Is.
var ErrDepthExceeded = errors.New("nesting depth exceeded")

// DepthExceededError reports input nested deeper than the configured limit.
type DepthExceededError struct {
	Limit int
}

// Error implements the error interface.
func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("nesting depth exceeded limit of %d", e.Limit)
}

// Is matches ErrDepthExceeded.
func (e *DepthExceededError) Is(target error) bool {
	return target == ErrDepthExceeded
}
