package cmd

import (
	"bytes"
	"testing"

	"github.com/boldpkg/bold/internal/config"
	"github.com/boldpkg/bold/internal/testutil"
)

// isolate points HOME at a temp dir and clears BOLD_* variables so no
// local configuration leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{config.EnvConfig, config.EnvHasher, config.EnvHashCommand, config.EnvHashTimeout, config.EnvOutput} {
		t.Setenv(k, "")
	}
	boldConfig, resolvedConfig, resolveErr = nil, nil, nil
	return home
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

// runSHA256 runs with the in-process SHA-256 hasher so no external program
// is needed.
func runSHA256(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return run(t, append([]string{"--hasher", "sha256"}, args...)...)
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	return testutil.FixturePath(t, "catalog", name)
}
