//nolint:revive // Package name matches the package it tests
package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	all := []error{ErrSerialization, ErrHash, ErrDuplicateName, ErrResolution, ErrValidation, ErrNotFound}
	for i := range all {
		for j := range all {
			if i != j {
				assert.NotEqual(t, all[i], all[j])
			}
		}
	}
}

func TestDetailErrorError(t *testing.T) {
	detail := &DetailError{
		Type:     "validation failed",
		Message:  "invalid version",
		Location: "catalog.yaml",
		Field:    "recipes.busybox.version",
		Context:  map[string]string{"Recipe": "busybox", "Alias": "src"},
		Hint:     "Use semver format",
	}

	output := detail.Error()

	assert.Contains(t, output, "Error: validation failed")
	assert.Contains(t, output, "Location: catalog.yaml")
	assert.Contains(t, output, "Field: recipes.busybox.version")
	assert.Contains(t, output, "Recipe: busybox")
	assert.Contains(t, output, "invalid version")
	assert.Contains(t, output, "Hint: Use semver format")
	assert.Less(t, strings.Index(output, "Alias"), strings.Index(output, "Recipe"), "context keys are sorted")
}

func TestDetailErrorUnwrap(t *testing.T) {
	detail := &DetailError{
		Type:    "test",
		Message: "test message",
		Cause:   ErrValidation,
	}

	assert.True(t, errors.Is(detail, ErrValidation))
	assert.Equal(t, ErrValidation, detail.Unwrap())
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("invalid value", "catalog.cue", "recipes.x.version", "Use semver format")

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var detail *DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "validation failed", detail.Type)
	assert.Equal(t, "catalog.cue", detail.Location)
	assert.Equal(t, "recipes.x.version", detail.Field)
}

func TestNewDuplicateNameError(t *testing.T) {
	err := NewDuplicateNameError("busybox", "busybox@aaa", "busybox@bbb")

	assert.True(t, errors.Is(err, ErrDuplicateName))
	assert.Contains(t, err.Error(), `name "busybox"`)
	assert.Contains(t, err.Error(), "Existing: busybox@aaa")
	assert.Contains(t, err.Error(), "Location: busybox@bbb")
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("recipe not in catalog", "hello", "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrHash, "digest command failed")

	assert.True(t, errors.Is(wrapped, ErrHash))
	assert.Contains(t, wrapped.Error(), "digest command failed")
}
