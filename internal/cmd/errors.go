package cmd

import (
	"errors"

	berrors "github.com/boldpkg/bold/internal/errors"
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Err  error
	Code int

	// Printed is set when the command already reported the error to the
	// user, so main must not print it again.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return ExitCodeName(e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, berrors.ErrValidation), errors.Is(err, berrors.ErrSerialization):
		return ExitValidationError
	case errors.Is(err, berrors.ErrDuplicateName):
		return ExitDuplicateName
	case errors.Is(err, berrors.ErrResolution):
		return ExitResolutionError
	case errors.Is(err, berrors.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, berrors.ErrHash):
		return ExitHashError
	default:
		return ExitGeneralError
	}
}

// withExitCode wraps err in an ExitError carrying its mapped code. Nil stays nil.
func withExitCode(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return NewExitError(err, ExitCodeFromError(err))
}
