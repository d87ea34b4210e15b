package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/htmlmd"
	"github.com/yaklabco/htmlmd/internal/charset"
	"github.com/yaklabco/htmlmd/internal/configloader"
)

// Exit codes for htmlmd, following sysexits.h where one applies.
const (
	// ExitSuccess indicates every input converted.
	ExitSuccess = 0

	// ExitConversionFailed indicates at least one input could not be converted.
	ExitConversionFailed = 1

	// ExitInvalidUsage indicates invalid command-line usage or option values.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file or environment errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// Sentinel errors used to pick an exit code.
var (
	// ErrUsage marks invalid command-line usage.
	ErrUsage = errors.New("invalid usage")

	// ErrConfig marks a configuration that could not be loaded.
	ErrConfig = errors.New("failed to load configuration")

	// ErrIO marks a failure reading input or writing output.
	ErrIO = errors.New("i/o error")

	// ErrConversionFailed is returned after a batch in which some files
	// failed. The failures have already been reported.
	ErrConversionFailed = errors.New("conversion failed")
)

// ExitCodeFromError maps a command error to a process exit code.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *configloader.ValidationError
	if errors.As(err, &validationErr) {
		if validationErr.FromFlag() {
			return ExitInvalidUsage
		}
		return ExitConfigError
	}

	switch {
	case errors.Is(err, ErrUsage),
		errors.Is(err, htmlmd.ErrUnsupportedOption),
		errors.Is(err, charset.ErrUnknownCharset):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, htmlmd.ErrInternal):
		return ExitInternalError
	case errors.Is(err, ErrIO),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission):
		return ExitIOError
	default:
		return ExitConversionFailed
	}
}
