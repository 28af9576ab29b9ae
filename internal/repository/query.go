package repository

import (
	"maps"
	"sort"

	"github.com/boldpkg/bold/internal/canonical"
	"github.com/boldpkg/bold/internal/recipe"
)

// Recipe returns the recipe stored under identity.
func (r *Repository) Recipe(identity string) (*recipe.Recipe, bool) {
	rec, ok := r.recipes[identity]
	return rec, ok
}

// Identities returns every recipe identity, sorted.
func (r *Repository) Identities() []string {
	return sortedKeys(r.recipes)
}

// NamedRecipes returns the unique recipe names and their digests.
func (r *Repository) NamedRecipes() map[string]string {
	return maps.Clone(r.namedRecipes)
}

// FindByName returns every recipe called name, sorted by identity.
func (r *Repository) FindByName(name string) []*recipe.Recipe {
	var out []*recipe.Recipe
	for _, id := range sortedKeys(r.recipes) {
		if rec := r.recipes[id]; rec.Name() == name {
			out = append(out, rec)
		}
	}
	return out
}

// System returns the system stored under identity.
func (r *Repository) System(identity string) (*recipe.ResolvedSystem, bool) {
	rs, ok := r.systems[identity]
	return rs, ok
}

// Systems returns every system identity, sorted.
func (r *Repository) Systems() []string {
	return sortedKeys(r.systems)
}

// NamedSystems returns the unique system names and their digests.
func (r *Repository) NamedSystems() map[string]string {
	return maps.Clone(r.namedSystems)
}

// Stats counts the repository contents.
type Stats struct {
	Recipes      int
	NamedRecipes int
	Systems      int
	NamedSystems int
}

// Stats returns the repository counts.
func (r *Repository) Stats() Stats {
	return Stats{
		Recipes:      len(r.recipes),
		NamedRecipes: len(r.namedRecipes),
		Systems:      len(r.systems),
		NamedSystems: len(r.namedSystems),
	}
}

// Snapshot returns the repository document: named_recipes, recipes,
// named_systems and systems.
func (r *Repository) Snapshot() canonical.Map {
	recipes := make(canonical.Map, len(r.recipes))
	for id, rec := range r.recipes {
		recipes[id] = rec.Value()
	}
	systems := make(canonical.Map, len(r.systems))
	for id, rs := range r.systems {
		systems[id] = canonical.Clone(rs.Value)
	}
	return canonical.Map{
		KeyNamedRecipes: stringMap(r.namedRecipes),
		KeyRecipes:      recipes,
		KeyNamedSystems: stringMap(r.namedSystems),
		KeySystems:      systems,
	}
}

// String returns the canonical encoding of Snapshot.
func (r *Repository) String() string {
	return string(canonical.Marshal(r.Snapshot()))
}

func stringMap(m map[string]string) canonical.Map {
	out := make(canonical.Map, len(m))
	for k, v := range m {
		out[k] = canonical.String(v)
	}
	return out
}

// Entries returns recipe and system names grouped by kind, sorted by name
// then identity.
func (r *Repository) Entries() []Entry {
	out := make([]Entry, 0, len(r.recipes)+len(r.systems))
	for id, rec := range r.recipes {
		out = append(out, Entry{Kind: KindRecipe, Name: rec.Name(), Version: rec.Version(), Identity: id})
	}
	for id, rs := range r.systems {
		out = append(out, Entry{Kind: KindSystem, Name: rs.Name(), Identity: id})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Identity < out[j].Identity
	})
	return out
}

// Entry kinds.
const (
	KindRecipe = "recipe"
	KindSystem = "system"
)

// Entry describes one stored recipe or system.
type Entry struct {
	Kind     string
	Name     string
	Version  string
	Identity string
}
