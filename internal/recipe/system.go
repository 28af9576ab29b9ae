package recipe

import (
	"fmt"
	"strings"

	"github.com/boldpkg/bold/internal/canonical"
	berrors "github.com/boldpkg/bold/internal/errors"
	"github.com/boldpkg/bold/internal/merge"
)

// SystemMetadata describes a deployable collection of packages.
type SystemMetadata struct {
	// Name identifies the system. Required; may not contain '@'.
	Name string

	// Packages are the recipes installed on the system. They are resolved
	// only when the system is resolved or added to a repository.
	Packages []Ref

	// Users holds opaque per-user configuration.
	Users map[string]canonical.Value

	// DeployTarget is opaque deployment configuration. Nil is omitted.
	DeployTarget canonical.Value
}

// System is an immutable aggregate of packages plus deployment metadata.
type System struct {
	composer *Composer
	meta     SystemMetadata
}

// SystemFactory produces a System.
type SystemFactory func(c *Composer, p Params) (*System, error)

// NewSystem creates a System. Packages are kept unresolved.
func (c *Composer) NewSystem(md SystemMetadata) (*System, error) {
	if md.Name == "" {
		return nil, berrors.NewValidationError("system name is required", "", "name", "")
	}
	if strings.Contains(md.Name, "@") {
		return nil, berrors.NewValidationError(
			fmt.Sprintf("system name %q may not contain '@'", md.Name), "", "name", "")
	}
	return &System{composer: c, meta: copySystemMetadata(md)}, nil
}

// Name returns the system name.
func (s *System) Name() string { return s.meta.Name }

// Metadata returns a copy of the system metadata.
func (s *System) Metadata() SystemMetadata { return copySystemMetadata(s.meta) }

// ResolvedSystem is a System whose packages are resolved to identities.
type ResolvedSystem struct {
	// Packages holds the recipe instance of each package, or nil for
	// identity-only references. Indexes match PackageIDs.
	Packages []*Recipe

	// PackageIDs are the package identities in declaration order.
	PackageIDs []string

	// Value is the metadata document with packages as identities.
	Value canonical.Map

	// Digest is the hash of Value.
	Digest string

	name string
}

// Identity returns name@digest.
func (rs *ResolvedSystem) Identity() string {
	return FormatIdentity(rs.name, rs.Digest)
}

// Name returns the system name.
func (rs *ResolvedSystem) Name() string { return rs.name }

// Resolve resolves every package and hashes the resulting document.
// Package factories are invoked on every call.
func (s *System) Resolve() (*ResolvedSystem, error) {
	rs := &ResolvedSystem{
		name:       s.meta.Name,
		Packages:   make([]*Recipe, len(s.meta.Packages)),
		PackageIDs: make([]string, len(s.meta.Packages)),
	}

	ids := make(canonical.List, len(s.meta.Packages))
	for i, ref := range s.meta.Packages {
		id, rec, err := ref.Resolve(s.composer)
		if err != nil {
			return nil, fmt.Errorf("system %s: packages[%d]: %w", s.meta.Name, i, err)
		}
		rs.Packages[i] = rec
		rs.PackageIDs[i] = id
		ids[i] = canonical.String(id)
	}

	rs.Value = s.value(ids)

	var err error
	rs.Digest, err = s.composer.Digest(rs.Value)
	if err != nil {
		return nil, fmt.Errorf("hashing system %s: %w", s.meta.Name, err)
	}
	return rs, nil
}

// Identity resolves the system and returns its identity.
func (s *System) Identity() (string, error) {
	rs, err := s.Resolve()
	if err != nil {
		return "", err
	}
	return rs.Identity(), nil
}

func (s *System) value(packages canonical.List) canonical.Map {
	users := make(canonical.Map, len(s.meta.Users))
	for name, cfg := range s.meta.Users {
		users[name] = canonical.Clone(cfg)
	}

	v := canonical.Map{
		"name":  canonical.String(s.meta.Name),
		"users": users,
	}
	if packages != nil {
		v["packages"] = packages
	}
	if s.meta.DeployTarget != nil {
		v["deployTarget"] = canonical.Clone(s.meta.DeployTarget)
	}
	return v
}

// Override returns a new system with updates deep-merged into a copy of the
// metadata. A "packages" entry in updates replaces the package list and must
// hold identities. s is not modified.
func (s *System) Override(updates canonical.Map) (*System, error) {
	rest := make(canonical.Map, len(updates))
	for k, v := range updates {
		if k != "packages" {
			rest[k] = v
		}
	}

	merged := merge.Override(s.value(nil), rest)
	md, err := decodeSystem(merged)
	if err != nil {
		return nil, fmt.Errorf("override of system %s: %w", s.meta.Name, err)
	}

	md.Packages = append([]Ref(nil), s.meta.Packages...)
	if raw, ok := updates["packages"]; ok {
		list, ok := raw.(canonical.List)
		if !ok {
			return nil, berrors.NewValidationError("expected list of identities", "", "packages", "")
		}
		md.Packages = make([]Ref, len(list))
		for i, e := range list {
			id, ok := e.(canonical.String)
			if !ok {
				return nil, berrors.NewValidationError("expected identity string", "", fmt.Sprintf("packages[%d]", i), "")
			}
			md.Packages[i] = s.keepInstance(string(id))
		}
	}

	return s.composer.NewSystem(md)
}

// keepInstance returns a reference to the known package instance with the
// given identity, or an identity-only reference.
func (s *System) keepInstance(id string) Ref {
	for _, ref := range s.meta.Packages {
		if ref.kind == refInstance && ref.recipe != nil && ref.recipe.Identity() == id {
			return ref
		}
	}
	return ID(id)
}

// Modify returns a new system built from fn applied to a copy of the
// metadata. s is not modified.
func (s *System) Modify(fn func(md *SystemMetadata) error) (*System, error) {
	md := s.Metadata()
	if err := fn(&md); err != nil {
		return nil, fmt.Errorf("modify of system %s: %w", s.meta.Name, err)
	}
	return s.composer.NewSystem(md)
}

func decodeSystem(v canonical.Map) (SystemMetadata, error) {
	var md SystemMetadata
	for key := range v {
		switch key {
		case "name", "users", "deployTarget":
		default:
			return md, berrors.NewValidationError(fmt.Sprintf("unknown system field %q", key), "", key, "")
		}
	}

	var err error
	if md.Name, err = stringOf(v["name"], "name"); err != nil {
		return md, err
	}
	users, err := mapOf(v["users"], "users")
	if err != nil {
		return md, err
	}
	md.Users = make(map[string]canonical.Value, len(users))
	for name, cfg := range users {
		md.Users[name] = cfg
	}
	if dt, ok := v["deployTarget"]; ok {
		md.DeployTarget = dt
	}
	return md, nil
}

func copySystemMetadata(md SystemMetadata) SystemMetadata {
	out := SystemMetadata{
		Name:     md.Name,
		Packages: append([]Ref(nil), md.Packages...),
		Users:    make(map[string]canonical.Value, len(md.Users)),
	}
	for name, cfg := range md.Users {
		out.Users[name] = canonical.Clone(cfg)
	}
	if md.DeployTarget != nil {
		out.DeployTarget = canonical.Clone(md.DeployTarget)
	}
	return out
}
