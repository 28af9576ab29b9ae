package recipe

import (
	"fmt"

	berrors "github.com/boldpkg/bold/internal/errors"
)

// Params configures a Factory. Dependencies are always built with empty Params.
type Params map[string]string

// Get returns the value for key, or def when unset.
func (p Params) Get(key, def string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Factory produces a Recipe.
type Factory func(c *Composer, p Params) (*Recipe, error)

type refKind int

const (
	refInvalid refKind = iota
	refIdentity
	refFactory
	refInstance
)

// Ref references a recipe by identity, by factory, or by instance.
// The zero Ref is invalid and fails resolution.
type Ref struct {
	kind     refKind
	identity string
	factory  Factory
	recipe   *Recipe
}

// ID references a recipe by its identity (name@digest).
func ID(identity string) Ref {
	return Ref{kind: refIdentity, identity: identity}
}

// Func references the recipe a factory produces with empty Params.
func Func(f Factory) Ref {
	return Ref{kind: refFactory, factory: f}
}

// Use references an existing recipe.
func Use(r *Recipe) Ref {
	return Ref{kind: refInstance, recipe: r}
}

// IsIdentity reports whether r is an identity-only reference.
func (r Ref) IsIdentity() bool {
	return r.kind == refIdentity
}

// Resolve returns the referenced identity and, unless r is an identity-only
// reference, the recipe itself. Factories are invoked with c and empty Params.
func (r Ref) Resolve(c *Composer) (string, *Recipe, error) {
	switch r.kind {
	case refIdentity:
		if _, _, err := ParseIdentity(r.identity); err != nil {
			return "", nil, err
		}
		return r.identity, nil, nil
	case refFactory:
		if r.factory == nil {
			return "", nil, fmt.Errorf("%w: nil recipe factory", berrors.ErrResolution)
		}
		rec, err := r.factory(c, Params{})
		if err != nil {
			return "", nil, err
		}
		if rec == nil {
			return "", nil, fmt.Errorf("%w: recipe factory returned no recipe", berrors.ErrResolution)
		}
		return rec.Identity(), rec, nil
	case refInstance:
		if r.recipe == nil {
			return "", nil, fmt.Errorf("%w: nil recipe", berrors.ErrResolution)
		}
		return r.recipe.Identity(), r.recipe, nil
	default:
		return "", nil, fmt.Errorf("%w: reference is not an identity, recipe, or factory", berrors.ErrResolution)
	}
}

// String describes the reference for logs and errors.
func (r Ref) String() string {
	switch r.kind {
	case refIdentity:
		return r.identity
	case refFactory:
		return "<factory>"
	case refInstance:
		if r.recipe == nil {
			return "<nil recipe>"
		}
		return r.recipe.Identity()
	default:
		return "<invalid>"
	}
}
