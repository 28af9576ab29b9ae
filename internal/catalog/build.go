package catalog

import (
	"fmt"
	"strings"

	"github.com/boldpkg/bold/internal/canonical"
	berrors "github.com/boldpkg/bold/internal/errors"
	"github.com/boldpkg/bold/internal/output"
	"github.com/boldpkg/bold/internal/recipe"
	"github.com/boldpkg/bold/internal/repository"
)

// Result holds what Build added, by catalog name.
type Result struct {
	Recipes map[string]*recipe.Recipe
	Systems map[string]*recipe.ResolvedSystem
}

type builder struct {
	cat      *Catalog
	repo     *repository.Repository
	composer *recipe.Composer

	built    map[string]*recipe.Recipe
	visiting map[string]bool
}

// Build composes every recipe and system of the catalog and adds them to
// repo. Recipes are built once each, dependencies first.
func (c *Catalog) Build(repo *repository.Repository) (*Result, error) {
	b := &builder{
		cat:      c,
		repo:     repo,
		composer: repo.Composer(),
		built:    make(map[string]*recipe.Recipe),
		visiting: make(map[string]bool),
	}
	res := &Result{
		Recipes: make(map[string]*recipe.Recipe, len(c.Recipes)),
		Systems: make(map[string]*recipe.ResolvedSystem, len(c.Systems)),
	}

	for _, name := range c.RecipeNames() {
		rec, err := b.recipe(name)
		if err != nil {
			return nil, err
		}
		if _, err := repo.AddRecipe(recipe.Use(rec), repository.WithUniqueName(c.Recipes[name].Unique)); err != nil {
			return nil, fmt.Errorf("adding recipe %s: %w", name, err)
		}
		res.Recipes[name] = rec
	}

	for _, name := range c.SystemNames() {
		sys, err := b.system(name)
		if err != nil {
			return nil, err
		}
		rs, err := repo.AddSystem(sys)
		if err != nil {
			return nil, fmt.Errorf("adding system %s: %w", name, err)
		}
		res.Systems[name] = rs
	}

	output.Debug("catalog built", "recipes", len(res.Recipes), "systems", len(res.Systems))
	return res, nil
}

func (b *builder) recipe(name string) (*recipe.Recipe, error) {
	if rec, ok := b.built[name]; ok {
		return rec, nil
	}
	if b.visiting[name] {
		return nil, berrors.NewValidationError(
			fmt.Sprintf("recipe %s depends on itself", name), "recipes."+name, "depends", "")
	}
	b.visiting[name] = true
	defer delete(b.visiting, name)

	spec := b.cat.Recipes[name]
	depends, err := b.refs(spec.Depends, "recipes."+name+".depends")
	if err != nil {
		return nil, err
	}
	buildDepends, err := b.refs(spec.Recipe.BuildDepends, "recipes."+name+".recipe.buildDepends")
	if err != nil {
		return nil, err
	}

	phases := make(recipe.Phases, len(spec.Recipe.Phases))
	for phase, step := range spec.Recipe.Phases {
		phases[recipe.Phase(phase)] = recipe.Step{Cmd: step.Cmd}
	}

	rec, err := b.composer.New(recipe.Metadata{
		Name:      name,
		Version:   spec.Version,
		ShortDesc: spec.ShortDesc,
		Depends:   depends,
		Recipe: recipe.Build{
			Externals:    spec.Recipe.Externals,
			BuildDepends: buildDepends,
			Phases:       phases,
		},
	})
	if err != nil {
		return nil, err
	}

	b.built[name] = rec
	return rec, nil
}

func (b *builder) refs(targets map[string]string, location string) (map[string]recipe.Ref, error) {
	out := make(map[string]recipe.Ref, len(targets))
	for alias, target := range targets {
		ref, err := b.ref(target, location+"."+alias)
		if err != nil {
			return nil, err
		}
		out[alias] = ref
	}
	return out, nil
}

// ref resolves a dependency target: an identity, a catalog recipe, or a
// unique name already in the repository, in that order.
func (b *builder) ref(target, location string) (recipe.Ref, error) {
	if strings.Contains(target, "@") {
		if _, _, err := recipe.ParseIdentity(target); err != nil {
			return recipe.Ref{}, fmt.Errorf("%s: %w", location, err)
		}
		return recipe.ID(target), nil
	}
	if _, ok := b.cat.Recipes[target]; ok {
		rec, err := b.recipe(target)
		if err != nil {
			return recipe.Ref{}, err
		}
		return recipe.Use(rec), nil
	}
	if digest, ok := b.repo.NamedRecipes()[target]; ok {
		return recipe.ID(recipe.FormatIdentity(target, digest)), nil
	}
	return recipe.Ref{}, berrors.NewNotFoundError(
		fmt.Sprintf("recipe %q is not defined", target), location,
		"define it in a catalog file, or enable the common recipes")
}

func (b *builder) system(name string) (*recipe.System, error) {
	spec := b.cat.Systems[name]
	location := "systems." + name

	packages := make([]recipe.Ref, len(spec.Packages))
	for i, target := range spec.Packages {
		ref, err := b.ref(target, fmt.Sprintf("%s.packages[%d]", location, i))
		if err != nil {
			return nil, err
		}
		packages[i] = ref
	}

	users := make(map[string]canonical.Value, len(spec.Users))
	for user, raw := range spec.Users {
		v, err := canonical.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%s.users.%s: %w", location, user, err)
		}
		users[user] = v
	}

	var deployTarget canonical.Value
	if len(spec.DeployTarget) > 0 {
		v, err := canonical.Parse(spec.DeployTarget)
		if err != nil {
			return nil, fmt.Errorf("%s.deployTarget: %w", location, err)
		}
		deployTarget = v
	}

	return b.composer.NewSystem(recipe.SystemMetadata{
		Name:         name,
		Packages:     packages,
		Users:        users,
		DeployTarget: deployTarget,
	})
}
