package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestVersionCmd_Execute(t *testing.T) {
	isolate(t)

	out, err := run(t, "--hasher", "blake3", "version")
	require.NoError(t, err)

	assert.Contains(t, out, "bold version")
	assert.Contains(t, out, "CUE SDK:")
	assert.Contains(t, out, "Hasher:    blake3")
	assert.NotContains(t, out, "Program:")
}

func TestVersionCmd_CommandHasher(t *testing.T) {
	isolate(t)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Hasher:    command")
	assert.Contains(t, out, "Program:")
}

func TestHashProgram(t *testing.T) {
	assert.Contains(t, hashProgram([]string{"bold-no-such-program"}), "not found in PATH")
	assert.NotEmpty(t, hashProgram(nil))
}
