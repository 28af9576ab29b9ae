// Package catalog loads declarative recipe and system definitions and builds
// them into a repository. It also provides the common recipes.
package catalog

import (
	"encoding/json"
	"sort"
)

// Catalog is the unified content of one or more catalog files.
type Catalog struct {
	Recipes map[string]RecipeSpec `json:"recipes"`
	Systems map[string]SystemSpec `json:"systems"`
}

// RecipeSpec declares a recipe. Dependency values name a catalog recipe, a
// recipe already registered under a unique name, or an identity.
type RecipeSpec struct {
	Version   string            `json:"version"`
	ShortDesc string            `json:"shortDesc"`
	Depends   map[string]string `json:"depends"`
	Recipe    BuildSpec         `json:"recipe"`

	// Unique registers the recipe name as unique. Defaults to true.
	Unique bool `json:"unique"`
}

// BuildSpec declares how a recipe is built.
type BuildSpec struct {
	Externals    map[string]string    `json:"externals"`
	BuildDepends map[string]string    `json:"buildDepends"`
	Phases       map[string]PhaseSpec `json:"phases"`
}

// PhaseSpec is the command of one phase.
type PhaseSpec struct {
	Cmd string `json:"cmd"`
}

// SystemSpec declares a system. Users and DeployTarget are kept as raw JSON
// and converted to canonical values when the system is built.
type SystemSpec struct {
	Packages     []string                   `json:"packages"`
	Users        map[string]json.RawMessage `json:"users"`
	DeployTarget json.RawMessage            `json:"deployTarget,omitempty"`
}

// RecipeNames returns the recipe names, sorted.
func (c *Catalog) RecipeNames() []string {
	return sortedNames(c.Recipes)
}

// SystemNames returns the system names, sorted.
func (c *Catalog) SystemNames() []string {
	return sortedNames(c.Systems)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
