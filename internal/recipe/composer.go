// Package recipe defines content-addressed recipes and systems.
//
// A Recipe's identity is name@digest, where digest is the hash of the
// canonical text of its metadata with every dependency replaced by the
// dependency's identity. Changing any field of a dependency therefore changes
// the identity of everything that depends on it.
package recipe

import (
	"errors"
	"fmt"

	"github.com/boldpkg/bold/internal/canonical"
	berrors "github.com/boldpkg/bold/internal/errors"
	"github.com/boldpkg/bold/internal/hasher"
)

// Composer creates recipes and systems that share one hash function.
// It holds no other state; callers own it explicitly.
type Composer struct {
	hasher hasher.Hasher
}

// NewComposer creates a Composer hashing with h.
func NewComposer(h hasher.Hasher) *Composer {
	return &Composer{hasher: h}
}

// Hasher returns the composer's hash function.
func (c *Composer) Hasher() hasher.Hasher {
	return c.hasher
}

// Digest hashes the canonical text of v. Values without a lossless
// canonical form are rejected with ErrSerialization before hashing.
func (c *Composer) Digest(v canonical.Value) (string, error) {
	if c == nil || c.hasher == nil {
		return "", fmt.Errorf("%w: composer has no hasher", berrors.ErrHash)
	}
	if err := canonical.Validate(v); err != nil {
		return "", err
	}
	d, err := c.hasher.Hash(canonical.Marshal(v))
	if err != nil {
		if errors.Is(err, berrors.ErrHash) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", berrors.ErrHash, err)
	}
	if d == "" {
		return "", fmt.Errorf("%w: empty digest", berrors.ErrHash)
	}
	return d, nil
}

// Build calls f with the composer and p.
func (c *Composer) Build(f Factory, p Params) (*Recipe, error) {
	if p == nil {
		p = Params{}
	}
	return f(c, p)
}
