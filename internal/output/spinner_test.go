package output

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Tests run without a terminal, so the action runs inline.
func TestRunWithSpinner_NoTTY(t *testing.T) {
	if IsTTY() {
		t.Skip("attached to a terminal")
	}

	called := false
	err := RunWithSpinner(context.Background(), func() error {
		called = true
		return nil
	}, WithTitle("Hashing recipes..."))
	assert.NoError(t, err)
	assert.True(t, called)

	boom := errors.New("boom")
	err = RunWithSpinner(context.Background(), func() error { return boom })
	assert.ErrorIs(t, err, boom)
}
