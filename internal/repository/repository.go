// Package repository aggregates recipes and systems into the snapshot the
// external builder consumes.
//
// A Repository is owned by the caller that assembles it and is not safe for
// concurrent use. Every Add call either succeeds completely or leaves the
// repository unchanged.
package repository

import (
	"fmt"
	"sort"

	berrors "github.com/boldpkg/bold/internal/errors"
	"github.com/boldpkg/bold/internal/output"
	"github.com/boldpkg/bold/internal/recipe"
)

// Snapshot keys.
const (
	KeyNamedRecipes = "named_recipes"
	KeyRecipes      = "recipes"
	KeyNamedSystems = "named_systems"
	KeySystems      = "systems"
)

// Repository holds the dependency closure of everything added to it.
type Repository struct {
	composer *recipe.Composer

	recipes      map[string]*recipe.Recipe
	namedRecipes map[string]string

	systems      map[string]*recipe.ResolvedSystem
	namedSystems map[string]string
}

// New creates an empty Repository. c builds recipes from factories.
func New(c *recipe.Composer) *Repository {
	return &Repository{
		composer:     c,
		recipes:      make(map[string]*recipe.Recipe),
		namedRecipes: make(map[string]string),
		systems:      make(map[string]*recipe.ResolvedSystem),
		namedSystems: make(map[string]string),
	}
}

// Composer returns the composer used to invoke factories.
func (r *Repository) Composer() *recipe.Composer {
	return r.composer
}

type addOptions struct {
	unique *bool
}

// AddOption configures AddRecipe and AddSystem.
type AddOption func(*addOptions)

// WithUniqueName sets whether the entity's name must map to a single
// identity. Recipes default to false, systems to true.
func WithUniqueName(unique bool) AddOption {
	return func(o *addOptions) {
		o.unique = &unique
	}
}

func resolveOptions(def bool, opts []AddOption) bool {
	o := addOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.unique == nil {
		return def
	}
	return *o.unique
}

// AddRecipe resolves ref and adds the recipe with its transitive closure.
// An identity-only ref must name a recipe already in the repository; it can
// be used to register a unique name for it.
func (r *Repository) AddRecipe(ref recipe.Ref, opts ...AddOption) (*recipe.Recipe, error) {
	unique := resolveOptions(false, opts)

	rec, err := r.resolve(ref)
	if err != nil {
		return nil, err
	}

	if unique {
		if err := checkUnique(r.namedRecipes, rec.Name(), rec.Digest()); err != nil {
			return nil, err
		}
	}

	pending := make(map[string]*recipe.Recipe)
	r.walk(rec, pending)
	if err := r.checkClosure(pending); err != nil {
		return nil, err
	}

	r.commit(pending)
	if unique {
		r.namedRecipes[rec.Name()] = rec.Digest()
	}
	return rec, nil
}

// AddSystem resolves every package of s, adds each package's closure and
// then the system itself. Names are unique unless WithUniqueName(false).
func (r *Repository) AddSystem(s *recipe.System, opts ...AddOption) (*recipe.ResolvedSystem, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil system", berrors.ErrResolution)
	}
	unique := resolveOptions(true, opts)

	rs, err := s.Resolve()
	if err != nil {
		return nil, err
	}

	if unique {
		if err := checkUnique(r.namedSystems, rs.Name(), rs.Digest); err != nil {
			return nil, err
		}
	}

	pending := make(map[string]*recipe.Recipe)
	for i, rec := range rs.Packages {
		if rec != nil {
			r.walk(rec, pending)
			continue
		}
		if _, ok := r.recipes[rs.PackageIDs[i]]; !ok {
			return nil, fmt.Errorf("%w: system %s: package %s is not in the repository",
				berrors.ErrResolution, rs.Name(), rs.PackageIDs[i])
		}
	}
	if err := r.checkClosure(pending); err != nil {
		return nil, err
	}

	r.commit(pending)
	r.systems[rs.Identity()] = rs
	if unique {
		r.namedSystems[rs.Name()] = rs.Digest
	}
	output.Debug("system added", "identity", rs.Identity(), "packages", len(rs.PackageIDs))
	return rs, nil
}

// AddSystemFactory builds a system with f and empty Params, then adds it.
func (r *Repository) AddSystemFactory(f recipe.SystemFactory, opts ...AddOption) (*recipe.ResolvedSystem, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil system factory", berrors.ErrResolution)
	}
	s, err := f(r.composer, recipe.Params{})
	if err != nil {
		return nil, err
	}
	return r.AddSystem(s, opts...)
}

func (r *Repository) resolve(ref recipe.Ref) (*recipe.Recipe, error) {
	id, rec, err := ref.Resolve(r.composer)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}
	if existing, ok := r.recipes[id]; ok {
		return existing, nil
	}
	return nil, berrors.NewNotFoundError(
		fmt.Sprintf("recipe %s is not in the repository", id), "",
		"add the recipe itself or a factory that builds it")
}

// walk stages rec and its subrecipes. Identities already in the repository
// or already staged are not descended into again.
func (r *Repository) walk(rec *recipe.Recipe, pending map[string]*recipe.Recipe) {
	id := rec.Identity()
	if _, ok := r.recipes[id]; ok {
		output.Debug("closure walk skipped known recipe", "identity", id)
		return
	}
	if _, ok := pending[id]; ok {
		return
	}
	pending[id] = rec

	subs := rec.Subrecipes()
	ids := make([]string, 0, len(subs))
	for sub := range subs {
		ids = append(ids, sub)
	}
	sort.Strings(ids)
	for _, sub := range ids {
		r.walk(subs[sub], pending)
	}
}

// checkClosure fails when a staged recipe depends on an identity that is
// neither staged nor in the repository.
func (r *Repository) checkClosure(pending map[string]*recipe.Recipe) error {
	ids := sortedKeys(pending)
	for _, id := range ids {
		for _, dep := range pending[id].DependencyIdentities() {
			if _, ok := pending[dep]; ok {
				continue
			}
			if _, ok := r.recipes[dep]; ok {
				continue
			}
			return fmt.Errorf("%w: recipe %s depends on %s, which is not in the repository",
				berrors.ErrResolution, id, dep)
		}
	}
	return nil
}

func (r *Repository) commit(pending map[string]*recipe.Recipe) {
	for _, id := range sortedKeys(pending) {
		r.recipes[id] = pending[id]
		output.Debug("recipe added", "identity", id)
	}
}

func checkUnique(named map[string]string, name, digest string) error {
	existing, ok := named[name]
	if !ok || existing == digest {
		return nil
	}
	return berrors.NewDuplicateNameError(name,
		recipe.FormatIdentity(name, existing), recipe.FormatIdentity(name, digest))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
