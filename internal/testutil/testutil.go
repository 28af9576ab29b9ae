// Package testutil provides test helpers shared across bold packages.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/boldpkg/bold/internal/hasher"
	"github.com/boldpkg/bold/internal/recipe"
)

// FixturePath returns the absolute path to a file under the module's
// testdata directory.
func FixturePath(t *testing.T, parts ...string) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	// Walk up to the directory holding go.mod
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(append([]string{dir, "testdata"}, parts...)...)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find module root from %s", wd)
		}
		dir = parent
	}
}

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// CopyFixture copies a testdata directory to a temporary location and
// returns it.
func CopyFixture(t *testing.T, fixtureName string) string {
	t.Helper()
	src := osfs.New(FixturePath(t, fixtureName))
	dstDir := t.TempDir()
	dst := osfs.New(dstDir)

	if err := copyDir(src, dst, ""); err != nil {
		t.Fatalf("failed to copy fixture %s: %v", fixtureName, err)
	}
	return dstDir
}

func copyDir(src, dst billy.Filesystem, dir string) error {
	entries, err := src.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if err := dst.MkdirAll(path, 0o755); err != nil {
				return err
			}
			if err := copyDir(src, dst, path); err != nil {
				return err
			}
			continue
		}
		data, err := util.ReadFile(src, path)
		if err != nil {
			return err
		}
		if err := util.WriteFile(dst, path, data, e.Mode().Perm()); err != nil {
			return err
		}
	}
	return nil
}

// RequireProgram skips the test when name is not on PATH.
func RequireProgram(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

// CountingHasher is a SHA-256 hasher that counts its invocations.
type CountingHasher struct {
	calls atomic.Int64
	inner hasher.Hasher
}

// NewCountingHasher returns a CountingHasher with zero calls.
func NewCountingHasher() *CountingHasher {
	return &CountingHasher{inner: hasher.NewDigest(hasher.SHA256)}
}

// Hash implements hasher.Hasher.
func (c *CountingHasher) Hash(text []byte) (string, error) {
	c.calls.Add(1)
	return c.inner.Hash(text)
}

// Calls returns the number of Hash invocations so far.
func (c *CountingHasher) Calls() int {
	return int(c.calls.Load())
}

// NewComposer returns a composer hashing in-process with SHA-256.
func NewComposer() *recipe.Composer {
	return recipe.NewComposer(hasher.NewDigest(hasher.SHA256))
}
