package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/boldpkg/bold/internal/recipe"
)

// Issue is a problem found by Vet.
type Issue struct {
	// Kind is "recipe" or "system".
	Kind string

	// Name is the catalog entry.
	Name string

	// Field is the offending field path within the entry.
	Field string

	// Message describes the problem.
	Message string
}

// String renders the issue on one line.
func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s: %s", i.Kind, i.Name, i.Field, i.Message)
}

// External locator schemes understood by the builder.
var externalSchemes = []string{"src://", "repo://"}

// Vet checks catalog content the schema cannot express: semver versions,
// external locators and dependency targets. known holds recipe names
// available outside the catalog, such as the common recipes.
func (c *Catalog) Vet(known map[string]bool) []Issue {
	var issues []Issue

	for _, name := range c.RecipeNames() {
		spec := c.Recipes[name]
		add := func(field, format string, args ...any) {
			issues = append(issues, Issue{Kind: "recipe", Name: name, Field: field, Message: fmt.Sprintf(format, args...)})
		}

		if strings.Contains(name, "@") {
			add("name", "name may not contain '@'")
		}

		if spec.Version == "" {
			add("version", "version is empty")
		} else if _, err := semver.NewVersion(spec.Version); err != nil {
			add("version", "%q is not a semantic version: %v", spec.Version, err)
		}

		for _, alias := range sortedNames(spec.Recipe.Externals) {
			loc := spec.Recipe.Externals[alias]
			if !validExternal(loc) {
				add("recipe.externals."+alias, "%q must be a src:// or repo:// locator", loc)
			}
		}

		for phase := range spec.Recipe.Phases {
			if !recipe.Phase(phase).Valid() {
				add("recipe.phases."+phase, "unknown phase")
			}
		}

		for _, alias := range sortedNames(spec.Depends) {
			if msg := c.checkTarget(spec.Depends[alias], known); msg != "" {
				add("depends."+alias, "%s", msg)
			}
		}
		for _, alias := range sortedNames(spec.Recipe.BuildDepends) {
			if msg := c.checkTarget(spec.Recipe.BuildDepends[alias], known); msg != "" {
				add("recipe.buildDepends."+alias, "%s", msg)
			}
		}
	}

	for _, name := range c.SystemNames() {
		for i, target := range c.Systems[name].Packages {
			if msg := c.checkTarget(target, known); msg != "" {
				issues = append(issues, Issue{Kind: "system", Name: name, Field: fmt.Sprintf("packages[%d]", i), Message: msg})
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Kind != issues[j].Kind {
			return issues[i].Kind < issues[j].Kind
		}
		return issues[i].Name < issues[j].Name
	})
	return issues
}

func (c *Catalog) checkTarget(target string, known map[string]bool) string {
	if strings.Contains(target, "@") {
		if !recipe.LooksLikeIdentity(target) {
			return fmt.Sprintf("%q is not a name@digest identity", target)
		}
		return ""
	}
	if _, ok := c.Recipes[target]; ok || known[target] {
		return ""
	}
	return fmt.Sprintf("recipe %q is not defined", target)
}

func validExternal(loc string) bool {
	for _, scheme := range externalSchemes {
		if rest, ok := strings.CutPrefix(loc, scheme); ok && rest != "" {
			return true
		}
	}
	return false
}
