// Package hasher turns canonical text into digests.
//
// The default Hasher runs an external digest process. In-process hashers
// (sha256, sha512, blake3) are provided for environments without one and
// for tests.
package hasher

import (
	"fmt"
	"strings"
	"time"

	berrors "github.com/boldpkg/bold/internal/errors"
)

// Kind names a hasher implementation in configuration.
type Kind string

const (
	// KindCommand pipes text through an external process.
	KindCommand Kind = "command"
	// KindSHA256 hashes in-process with SHA-256.
	KindSHA256 Kind = "sha256"
	// KindSHA512 hashes in-process with SHA-512.
	KindSHA512 Kind = "sha512"
	// KindBLAKE3 hashes in-process with BLAKE3-256.
	KindBLAKE3 Kind = "blake3"
)

// DefaultCommand is the digest process used when none is configured.
var DefaultCommand = []string{"sh", "-c", "sha256sum | cut -d ' ' -f 1"}

// Hasher is a pure function from canonical text to a digest string.
// The same text must always produce the same digest.
type Hasher interface {
	Hash(text []byte) (string, error)
}

// Func adapts a function to the Hasher interface.
type Func func(text []byte) (string, error)

// Hash calls f(text).
func (f Func) Hash(text []byte) (string, error) {
	return f(text)
}

// Options selects and configures a Hasher.
type Options struct {
	// Kind is the implementation. Empty means KindCommand.
	Kind Kind

	// Command is the argv of the digest process for KindCommand.
	// Empty means DefaultCommand.
	Command []string

	// Timeout bounds a single digest process run. Zero disables it.
	Timeout time.Duration
}

// New returns the Hasher described by opts.
func New(opts Options) (Hasher, error) {
	switch Kind(strings.ToLower(string(opts.Kind))) {
	case "", KindCommand:
		argv := opts.Command
		if len(argv) == 0 {
			argv = DefaultCommand
		}
		return NewCommand(argv, opts.Timeout), nil
	case KindSHA256:
		return NewDigest(SHA256), nil
	case KindSHA512:
		return NewDigest(SHA512), nil
	case KindBLAKE3:
		return NewBLAKE3(), nil
	default:
		return nil, fmt.Errorf("%w: unknown hasher kind %q (valid: %s)",
			berrors.ErrValidation, opts.Kind, strings.Join(ValidKinds(), ", "))
	}
}

// ValidKinds returns the accepted Kind names.
func ValidKinds() []string {
	return []string{string(KindCommand), string(KindSHA256), string(KindSHA512), string(KindBLAKE3)}
}
