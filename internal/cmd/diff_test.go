package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSnapshot builds the given catalog files and stores the snapshot
// under name in dir.
func writeSnapshot(t *testing.T, dir, name string, args ...string) string {
	t.Helper()
	out, err := runSHA256(t, append([]string{"build"}, args...)...)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(out), 0o644))
	return path
}

func TestDiff_Retargeted(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	before := writeSnapshot(t, dir, "before.json", fixture(t, "apps.yaml"), fixture(t, "systems.cue"))
	after := writeSnapshot(t, dir, "after.json", fixture(t, "apps-v2.yaml"), fixture(t, "systems.cue"))

	out, err := run(t, "diff", before, after)
	require.NoError(t, err)

	assert.Contains(t, out, "Added:")
	assert.Contains(t, out, "Removed:")
	assert.Contains(t, out, "Retargeted:")
	assert.Contains(t, out, "recipe libgreet")
	assert.Contains(t, out, "recipe greeter")
	assert.Contains(t, out, "system edge")
	assert.Contains(t, out, "1.3.0")
	assert.Contains(t, out, "Summary:")
}

func TestDiff_Equivalent(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	a := writeSnapshot(t, dir, "a.json")
	b := writeSnapshot(t, dir, "b.json")

	out, err := run(t, "diff", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "snapshots are equivalent")
}

func TestDiff_MixedFormats(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	jsonPath := writeSnapshot(t, dir, "snap.json")
	out, err := runSHA256(t, "build", "-o", "yaml")
	require.NoError(t, err)
	yamlPath := filepath.Join(dir, "snap.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(out), 0o644))

	out, err = run(t, "diff", jsonPath, yamlPath)
	require.NoError(t, err)
	assert.Contains(t, out, "snapshots are equivalent")
}

func TestDiff_Errors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	good := writeSnapshot(t, dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("[1, 2]"), 0o644))

	_, err := run(t, "diff", good, filepath.Join(dir, "missing.json"))
	assert.Equal(t, ExitNotFound, ExitCodeFromError(err))

	_, err = run(t, "diff", bad, good)
	assert.Equal(t, ExitValidationError, ExitCodeFromError(err))

	_, err = run(t, "diff", good)
	assert.Error(t, err)
}
