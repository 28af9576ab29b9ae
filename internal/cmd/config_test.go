package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigInitCmd(t *testing.T) {
	cmd := NewConfigInitCmd()

	assert.Equal(t, "init", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.Flags().Lookup("force"))
}

func TestConfigInit_CreatesFile(t *testing.T) {
	home := isolate(t)

	_, err := run(t, "config", "init")
	require.NoError(t, err)

	path := filepath.Join(home, ".bold", "config.yaml")
	require.FileExists(t, path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# bold configuration")
	assert.Contains(t, string(data), "kind: command")
	assert.Contains(t, string(data), "format: json")
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".bold", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: yaml\n"), 0o600))

	_, err := run(t, "config", "init")
	require.Error(t, err)
	assert.Equal(t, ExitValidationError, ExitCodeFromError(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "output:\n  format: yaml\n", string(data))

	_, err = run(t, "config", "init", "--force")
	require.NoError(t, err)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "format: json")
}

func TestConfigInit_CustomPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "bold.yaml")

	_, err := run(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestConfigVet(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.yaml")
	require.NoError(t, os.WriteFile(valid, []byte("hasher:\n  kind: blake3\n"), 0o600))
	out, err := run(t, "--config", valid, "config", "vet")
	require.NoError(t, err)
	assert.Contains(t, out, "Config is valid")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("hasher:\n  kind: md5\n"), 0o600))
	_, err = run(t, "--config", invalid, "config", "vet")
	assert.Equal(t, ExitValidationError, ExitCodeFromError(err))

	_, err = run(t, "--config", filepath.Join(dir, "missing.yaml"), "config", "vet")
	assert.Equal(t, ExitNotFound, ExitCodeFromError(err))
}

func TestConfigInit_ThenVet(t *testing.T) {
	isolate(t)

	_, err := run(t, "config", "init")
	require.NoError(t, err)
	_, err = run(t, "config", "vet")
	assert.NoError(t, err)
}

func TestConfigFile_AppliesToBuild(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hasher:\n  kind: sha256\noutput:\n  format: yaml\n"), 0o600))

	fromFile, err := run(t, "--config", path, "build")
	require.NoError(t, err)
	fromFlags, err := run(t, "--hasher", "sha256", "-o", "yaml", "build")
	require.NoError(t, err)

	assert.Equal(t, fromFlags, fromFile)
}
