package hasher

import (
	// Register the algorithms go-digest looks up through crypto.Hash.
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/hex"
	"fmt"

	"github.com/opencontainers/go-digest"
	"github.com/zeebo/blake3"

	berrors "github.com/boldpkg/bold/internal/errors"
)

// Algorithms accepted by NewDigest.
const (
	SHA256 = digest.SHA256
	SHA512 = digest.SHA512
)

// Digest hashes in-process with a go-digest algorithm and returns the bare
// hex encoding (no "sha256:" prefix), matching what sha256sum prints.
type Digest struct {
	alg digest.Algorithm
}

// NewDigest creates a Digest hasher for alg.
func NewDigest(alg digest.Algorithm) *Digest {
	return &Digest{alg: alg}
}

// Hash implements Hasher.
func (d *Digest) Hash(text []byte) (string, error) {
	if !d.alg.Available() {
		return "", fmt.Errorf("%w: digest algorithm %q unavailable", berrors.ErrHash, d.alg)
	}
	return d.alg.FromBytes(text).Encoded(), nil
}

// BLAKE3 hashes in-process with 256-bit BLAKE3.
type BLAKE3 struct{}

// NewBLAKE3 creates a BLAKE3 hasher.
func NewBLAKE3() *BLAKE3 {
	return &BLAKE3{}
}

// Hash implements Hasher.
func (BLAKE3) Hash(text []byte) (string, error) {
	sum := blake3.Sum256(text)
	return hex.EncodeToString(sum[:]), nil
}
