package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrSerialization indicates a value that has no canonical encoding
	// (cyclic reference, unsupported Go type).
	ErrSerialization = errors.New("serialization error")

	// ErrHash indicates the digest function was unavailable or failed.
	ErrHash = errors.New("hash error")

	// ErrDuplicateName indicates a second identity registered under a name
	// already marked unique.
	ErrDuplicateName = errors.New("duplicate unique name")

	// ErrResolution indicates a dependency reference that is neither an
	// identity, a recipe, nor a recipe factory.
	ErrResolution = errors.New("resolution error")

	// ErrValidation indicates malformed recipe, system, or catalog content.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a recipe, system, or file was not found.
	ErrNotFound = errors.New("not found")
)
