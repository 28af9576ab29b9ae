package recipe

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/boldpkg/bold/internal/canonical"
	berrors "github.com/boldpkg/bold/internal/errors"
	"github.com/boldpkg/bold/internal/merge"
	"github.com/boldpkg/bold/internal/output"
)

// Metadata is the descriptive content of a recipe.
type Metadata struct {
	// Name is the human-readable recipe name. Required; may not contain '@'.
	Name string

	// Version is the upstream version.
	Version string

	// ShortDesc is a one-line description.
	ShortDesc string

	// Depends are runtime dependencies by alias. The executor exposes each
	// as $DEP_<alias>.
	Depends map[string]Ref

	// Recipe describes how to build.
	Recipe Build
}

// Build is the build description of a recipe.
type Build struct {
	// Externals are opaque source locators (src://name, repo://path) by
	// alias, exposed to phases as $EXT_<alias>.
	Externals map[string]string

	// BuildDepends are build-time dependencies by alias ($BDEP_<alias>).
	BuildDepends map[string]Ref

	// Phases holds the command of each lifecycle stage.
	Phases Phases
}

// Recipe is an immutable, content-addressed build unit.
type Recipe struct {
	composer *Composer
	meta     Metadata

	depends      map[string]string
	buildDepends map[string]string
	subrecipes   map[string]*Recipe

	value  canonical.Map
	digest string
}

// New resolves every dependency of md to an identity, hashes the result and
// returns the Recipe. md is not modified.
func (c *Composer) New(md Metadata) (*Recipe, error) {
	if md.Name == "" {
		return nil, berrors.NewValidationError("recipe name is required", "", "name", "")
	}
	if strings.Contains(md.Name, "@") {
		return nil, berrors.NewValidationError(
			fmt.Sprintf("recipe name %q may not contain '@'", md.Name), "", "name", "")
	}
	if err := md.Recipe.Phases.validate(); err != nil {
		return nil, fmt.Errorf("recipe %s: %w", md.Name, err)
	}

	r := &Recipe{
		composer:   c,
		subrecipes: make(map[string]*Recipe),
	}

	var err error
	var depRefs, bdepRefs map[string]Ref
	r.depends, depRefs, err = r.resolveAll(c, md.Name, "depends", md.Depends)
	if err != nil {
		return nil, err
	}
	r.buildDepends, bdepRefs, err = r.resolveAll(c, md.Name, "recipe.buildDepends", md.Recipe.BuildDepends)
	if err != nil {
		return nil, err
	}

	r.meta = Metadata{
		Name:      md.Name,
		Version:   md.Version,
		ShortDesc: md.ShortDesc,
		Depends:   depRefs,
		Recipe: Build{
			Externals:    copyStrings(md.Recipe.Externals),
			BuildDepends: bdepRefs,
			Phases:       md.Recipe.Phases.clone(),
		},
	}
	r.value = r.buildValue()

	r.digest, err = c.Digest(r.value)
	if err != nil {
		return nil, fmt.Errorf("hashing recipe %s: %w", md.Name, err)
	}

	output.Debug("recipe composed", "identity", r.Identity(), "subrecipes", len(r.subrecipes))
	return r, nil
}

// resolveAll resolves refs in alias order, recording recipe instances as
// subrecipes. It returns alias->identity and the refs to keep in metadata.
func (r *Recipe) resolveAll(c *Composer, name, field string, refs map[string]Ref) (map[string]string, map[string]Ref, error) {
	ids := make(map[string]string, len(refs))
	kept := make(map[string]Ref, len(refs))

	aliases := make([]string, 0, len(refs))
	for alias := range refs {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	for _, alias := range aliases {
		id, rec, err := refs[alias].Resolve(c)
		if err != nil {
			return nil, nil, fmt.Errorf("recipe %s: %s.%s: %w", name, field, alias, err)
		}
		ids[alias] = id
		if rec != nil {
			r.subrecipes[id] = rec
			kept[alias] = Use(rec)
		} else {
			kept[alias] = ID(id)
		}
	}
	return ids, kept, nil
}

func (r *Recipe) buildValue() canonical.Map {
	return canonical.Map{
		"name":      canonical.String(r.meta.Name),
		"version":   canonical.String(r.meta.Version),
		"shortDesc": canonical.String(r.meta.ShortDesc),
		"depends":   stringsValue(r.depends),
		"recipe": canonical.Map{
			"externals":    stringsValue(r.meta.Recipe.Externals),
			"buildDepends": stringsValue(r.buildDepends),
			"phases":       r.meta.Recipe.Phases.value(),
		},
	}
}

// Name returns the recipe name.
func (r *Recipe) Name() string { return r.meta.Name }

// Version returns the recipe version.
func (r *Recipe) Version() string { return r.meta.Version }

// ShortDesc returns the one-line description.
func (r *Recipe) ShortDesc() string { return r.meta.ShortDesc }

// Digest returns the content digest.
func (r *Recipe) Digest() string { return r.digest }

// Identity returns name@digest.
func (r *Recipe) Identity() string {
	return FormatIdentity(r.meta.Name, r.digest)
}

// String returns the identity.
func (r *Recipe) String() string { return r.Identity() }

// Depends returns runtime dependency identities by alias.
func (r *Recipe) Depends() map[string]string { return copyStrings(r.depends) }

// BuildDepends returns build-time dependency identities by alias.
func (r *Recipe) BuildDepends() map[string]string { return copyStrings(r.buildDepends) }

// DependencyIdentities returns every runtime and build-time dependency
// identity, sorted and deduplicated.
func (r *Recipe) DependencyIdentities() []string {
	seen := make(map[string]struct{}, len(r.depends)+len(r.buildDepends))
	for _, id := range r.depends {
		seen[id] = struct{}{}
	}
	for _, id := range r.buildDepends {
		seen[id] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Subrecipes returns the directly referenced recipe instances by identity.
// Identity-only dependencies have no entry.
func (r *Recipe) Subrecipes() map[string]*Recipe {
	return maps.Clone(r.subrecipes)
}

// Value returns a copy of the resolved metadata document, the input of the
// digest.
func (r *Recipe) Value() canonical.Map {
	return merge.Clone(r.value)
}

// CanonicalText returns the canonical encoding of Value.
func (r *Recipe) CanonicalText() []byte {
	return canonical.Marshal(r.value)
}

// Composer returns the composer that built r.
func (r *Recipe) Composer() *Composer { return r.composer }

// Metadata returns a copy of the recipe's metadata. Dependencies are
// instance references where the recipe instance is known.
func (r *Recipe) Metadata() Metadata {
	return Metadata{
		Name:      r.meta.Name,
		Version:   r.meta.Version,
		ShortDesc: r.meta.ShortDesc,
		Depends:   maps.Clone(r.meta.Depends),
		Recipe: Build{
			Externals:    copyStrings(r.meta.Recipe.Externals),
			BuildDepends: maps.Clone(r.meta.Recipe.BuildDepends),
			Phases:       r.meta.Recipe.Phases.clone(),
		},
	}
}

// Override returns a new recipe built from a deep-merged copy of r's
// metadata document. Lists in updates replace lists in r. Dependency values
// in updates are identities; identities naming one of r's subrecipes keep
// that instance. r is not modified.
func (r *Recipe) Override(updates canonical.Map) (*Recipe, error) {
	merged := merge.Override(r.value, updates)

	md, err := decodeMetadata(merged, r.subrecipes)
	if err != nil {
		return nil, fmt.Errorf("override of %s: %w", r.Identity(), err)
	}
	return r.composer.New(md)
}

// Modify returns a new recipe built from fn applied to a copy of r's
// metadata. r is not modified.
func (r *Recipe) Modify(fn func(md *Metadata) error) (*Recipe, error) {
	md := r.Metadata()
	if err := fn(&md); err != nil {
		return nil, fmt.Errorf("modify of %s: %w", r.Identity(), err)
	}
	return r.composer.New(md)
}

// decodeMetadata reads a metadata document back into Metadata.
func decodeMetadata(v canonical.Map, known map[string]*Recipe) (Metadata, error) {
	var md Metadata
	for key := range v {
		switch key {
		case "name", "version", "shortDesc", "depends", "recipe":
		default:
			return md, berrors.NewValidationError(fmt.Sprintf("unknown recipe field %q", key), "", key, "")
		}
	}

	var err error
	if md.Name, err = stringOf(v["name"], "name"); err != nil {
		return md, err
	}
	if md.Version, err = stringOf(v["version"], "version"); err != nil {
		return md, err
	}
	if md.ShortDesc, err = stringOf(v["shortDesc"], "shortDesc"); err != nil {
		return md, err
	}
	if md.Depends, err = refsOf(v["depends"], "depends", known); err != nil {
		return md, err
	}

	build, err := mapOf(v["recipe"], "recipe")
	if err != nil {
		return md, err
	}
	for key := range build {
		switch key {
		case "externals", "buildDepends", "phases":
		default:
			return md, berrors.NewValidationError(fmt.Sprintf("unknown recipe field %q", "recipe."+key), "", "recipe."+key, "")
		}
	}

	if md.Recipe.Externals, err = stringsOf(build["externals"], "recipe.externals"); err != nil {
		return md, err
	}
	if md.Recipe.BuildDepends, err = refsOf(build["buildDepends"], "recipe.buildDepends", known); err != nil {
		return md, err
	}

	phases, err := mapOf(build["phases"], "recipe.phases")
	if err != nil {
		return md, err
	}
	md.Recipe.Phases = make(Phases, len(phases))
	for name, raw := range phases {
		field := "recipe.phases." + name
		step, err := mapOf(raw, field)
		if err != nil {
			return md, err
		}
		for key := range step {
			if key != "cmd" {
				return md, berrors.NewValidationError(fmt.Sprintf("unknown phase field %q", key), "", field+"."+key, "")
			}
		}
		cmd, err := stringOf(step["cmd"], field+".cmd")
		if err != nil {
			return md, err
		}
		md.Recipe.Phases[Phase(name)] = Step{Cmd: cmd}
	}

	return md, nil
}

func stringOf(v canonical.Value, field string) (string, error) {
	switch val := v.(type) {
	case nil, canonical.Null:
		return "", nil
	case canonical.String:
		return string(val), nil
	default:
		return "", berrors.NewValidationError(
			fmt.Sprintf("expected string, got %s", val.Kind()), "", field, "")
	}
}

func mapOf(v canonical.Value, field string) (canonical.Map, error) {
	switch val := v.(type) {
	case nil, canonical.Null:
		return canonical.Map{}, nil
	case canonical.Map:
		return val, nil
	default:
		return nil, berrors.NewValidationError(
			fmt.Sprintf("expected map, got %s", val.Kind()), "", field, "")
	}
}

func stringsOf(v canonical.Value, field string) (map[string]string, error) {
	m, err := mapOf(v, field)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(m))
	for k, e := range m {
		s, err := stringOf(e, field+"."+k)
		if err != nil {
			return nil, err
		}
		out[k] = s
	}
	return out, nil
}

func refsOf(v canonical.Value, field string, known map[string]*Recipe) (map[string]Ref, error) {
	ids, err := stringsOf(v, field)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Ref, len(ids))
	for alias, id := range ids {
		if rec, ok := known[id]; ok {
			out[alias] = Use(rec)
		} else {
			out[alias] = ID(id)
		}
	}
	return out, nil
}

func stringsValue(m map[string]string) canonical.Map {
	out := make(canonical.Map, len(m))
	for k, v := range m {
		out[k] = canonical.String(v)
	}
	return out
}

func copyStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
