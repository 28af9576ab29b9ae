package recipe

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boldpkg/bold/internal/canonical"
	berrors "github.com/boldpkg/bold/internal/errors"
	"github.com/boldpkg/bold/internal/hasher"
)

func newComposer() *Composer {
	return NewComposer(hasher.NewDigest(hasher.SHA256))
}

func busyboxMeta() Metadata {
	return Metadata{
		Name:      "busybox",
		Version:   "1.35.0",
		ShortDesc: "Tiny utilities for small and embedded systems",
		Recipe: Build{
			Externals: map[string]string{
				"src":    "src://busybox",
				"config": "repo:///bold_unstable/app_assets/busybox_config",
			},
			Phases: Phases{
				PhaseUnpack:  {Cmd: `cp "$EXT_config" "$EXT_src"/`},
				PhaseBuild:   {Cmd: `cd "$EXT_src" && make -j8`},
				PhaseInstall: {Cmd: `cd "$EXT_src" && make CONFIG_PREFIX="$DESTDIR" install`},
			},
		},
	}
}

func busybox(c *Composer, _ Params) (*Recipe, error) {
	return c.New(busyboxMeta())
}

func helloSh(c *Composer, p Params) (*Recipe, error) {
	return c.New(Metadata{
		Name:      "hello_sh",
		Version:   "0.1.0",
		ShortDesc: "A simple hello world app",
		Depends:   map[string]Ref{"busybox": Func(busybox)},
		Recipe: Build{
			Externals: map[string]string{"src": "src://hello_sh"},
			Phases: Phases{
				PhasePatch: {Cmd: fmt.Sprintf(`sed -i "s:/bin/sh:$DEP_busybox/bin/sh:g" "$EXT_src"/hello; echo "echo \"%s\"" >> "$EXT_src"/hello`,
					p.Get("message", "Hello, World"))},
				PhaseInstall: {Cmd: fmt.Sprintf(`mkdir -p "$DESTDIR/bin" && install "$EXT_src"/hello "$DESTDIR/bin/%s"`,
					p.Get("filename", "hello"))},
			},
		},
	})
}

func TestNew_ResolvesDependsToIdentity(t *testing.T) {
	c := newComposer()

	hello, err := c.Build(helloSh, nil)
	require.NoError(t, err)
	bb, err := c.Build(busybox, nil)
	require.NoError(t, err)

	assert.Equal(t, bb.Identity(), hello.Depends()["busybox"])

	deps := hello.Value().GetMap("depends")
	assert.Equal(t, canonical.String(bb.Identity()), deps["busybox"], "dependency is stored as an identity string")

	subs := hello.Subrecipes()
	require.Len(t, subs, 1)
	assert.Equal(t, bb.Identity(), subs[bb.Identity()].Identity())
}

func TestIdentity_Format(t *testing.T) {
	r, err := busybox(newComposer(), nil)
	require.NoError(t, err)

	name, digest, err := ParseIdentity(r.Identity())
	require.NoError(t, err)
	assert.Equal(t, "busybox", name)
	assert.Equal(t, r.Digest(), digest)
	assert.Len(t, digest, 64)
}

func TestIdentity_Deterministic(t *testing.T) {
	c := newComposer()
	a, err := c.Build(helloSh, nil)
	require.NoError(t, err)
	b, err := c.Build(helloSh, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Identity(), a.Identity())
	assert.Equal(t, a.Identity(), b.Identity())
	assert.Equal(t, a.CanonicalText(), b.CanonicalText())
}

func TestIdentity_DependsOnParams(t *testing.T) {
	c := newComposer()
	a, err := c.Build(helloSh, nil)
	require.NoError(t, err)
	b, err := c.Build(helloSh, Params{"message": "Foo bar!"})
	require.NoError(t, err)

	assert.NotEqual(t, a.Identity(), b.Identity())
	assert.Equal(t, a.Depends(), b.Depends())
}

func TestIdentity_DependencySensitivity(t *testing.T) {
	c := newComposer()
	base, err := c.New(busyboxMeta())
	require.NoError(t, err)
	changed, err := base.Override(canonical.Map{"version": canonical.String("1.36.0")})
	require.NoError(t, err)
	require.NotEqual(t, base.Identity(), changed.Identity())

	dependent := func(dep Ref) *Recipe {
		r, err := c.New(Metadata{Name: "app", Depends: map[string]Ref{"busybox": dep}})
		require.NoError(t, err)
		return r
	}

	onBase := dependent(Use(base))
	onChanged := dependent(Use(changed))
	assert.NotEqual(t, onBase.Identity(), onChanged.Identity())

	// A dependent pinned to the stale identity does not follow the change.
	stale := dependent(ID(base.Identity()))
	assert.Equal(t, onBase.Identity(), stale.Identity())
	assert.NotEqual(t, onChanged.Identity(), stale.Identity())
}

func TestIdentity_TransitivePropagation(t *testing.T) {
	c := newComposer()
	build := func(bbVersion string) *Recipe {
		bb, err := c.New(Metadata{Name: "busybox", Version: bbVersion})
		require.NoError(t, err)
		mid, err := c.New(Metadata{Name: "mid", Depends: map[string]Ref{"bb": Use(bb)}})
		require.NoError(t, err)
		top, err := c.New(Metadata{Name: "top", Recipe: Build{BuildDepends: map[string]Ref{"mid": Use(mid)}}})
		require.NoError(t, err)
		return top
	}

	assert.NotEqual(t, build("1").Identity(), build("2").Identity())
	assert.Equal(t, build("1").Identity(), build("1").Identity())
}

func TestNew_PhaseNormalisation(t *testing.T) {
	c := newComposer()
	implicit, err := c.New(Metadata{Name: "x", Recipe: Build{Phases: Phases{PhaseBuild: {Cmd: "make"}}}})
	require.NoError(t, err)

	explicit := Phases{}
	for _, ph := range PhaseOrder {
		explicit[ph] = Step{}
	}
	explicit[PhaseBuild] = Step{Cmd: "make"}
	withAll, err := c.New(Metadata{Name: "x", Recipe: Build{Phases: explicit}})
	require.NoError(t, err)

	assert.Equal(t, implicit.Identity(), withAll.Identity())
	assert.Len(t, implicit.Value().GetMap("recipe").GetMap("phases"), len(PhaseOrder))
}

func TestNew_ValidationErrors(t *testing.T) {
	c := newComposer()

	tests := []struct {
		name string
		md   Metadata
		want error
	}{
		{"missing name", Metadata{}, berrors.ErrValidation},
		{"name with at", Metadata{Name: "a@b"}, berrors.ErrValidation},
		{"unknown phase", Metadata{Name: "x", Recipe: Build{Phases: Phases{"deploy": {Cmd: "x"}}}}, berrors.ErrValidation},
		{"zero ref", Metadata{Name: "x", Depends: map[string]Ref{"d": {}}}, berrors.ErrResolution},
		{"malformed identity", Metadata{Name: "x", Depends: map[string]Ref{"d": ID("no-digest")}}, berrors.ErrResolution},
		{"nil instance", Metadata{Name: "x", Depends: map[string]Ref{"d": Use(nil)}}, berrors.ErrResolution},
		{"nil factory", Metadata{Name: "x", Recipe: Build{BuildDepends: map[string]Ref{"d": Func(nil)}}}, berrors.ErrResolution},
		{"factory without recipe", Metadata{Name: "x", Depends: map[string]Ref{
			"d": Func(func(*Composer, Params) (*Recipe, error) { return nil, nil }),
		}}, berrors.ErrResolution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.New(tt.md)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestNew_FactoryErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	_, err := newComposer().New(Metadata{Name: "x", Depends: map[string]Ref{
		"d": Func(func(*Composer, Params) (*Recipe, error) { return nil, boom }),
	}})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "depends.d")
}

func TestNew_PassThroughIdentity(t *testing.T) {
	r, err := newComposer().New(Metadata{Name: "x", Depends: map[string]Ref{"d": ID("dep@abc")}})
	require.NoError(t, err)
	assert.Equal(t, "dep@abc", r.Depends()["d"])
	assert.Empty(t, r.Subrecipes())
}

func TestNew_HashFailure(t *testing.T) {
	failing := NewComposer(hasher.Func(func([]byte) (string, error) {
		return "", errors.New("digest process unavailable")
	}))
	_, err := failing.New(busyboxMeta())
	require.Error(t, err)
	assert.True(t, errors.Is(err, berrors.ErrHash))

	empty := NewComposer(hasher.Func(func([]byte) (string, error) { return "", nil }))
	_, err = empty.New(busyboxMeta())
	assert.True(t, errors.Is(err, berrors.ErrHash))

	_, err = NewComposer(nil).New(busyboxMeta())
	assert.True(t, errors.Is(err, berrors.ErrHash))
}

func TestNew_InvalidUTF8(t *testing.T) {
	c := newComposer()
	for _, md := range []Metadata{
		{Name: "x", Version: "\xff"},
		{Name: "x", Version: "\xfe"},
		{Name: "x", Recipe: Build{Externals: map[string]string{"\xff": "src://x"}}},
	} {
		_, err := c.New(md)
		require.Error(t, err)
		assert.True(t, errors.Is(err, berrors.ErrSerialization), "got %v", err)
	}
}

func TestNew_DoesNotMutateInput(t *testing.T) {
	md := Metadata{Name: "x", Depends: map[string]Ref{"bb": Func(busybox)}}
	_, err := newComposer().New(md)
	require.NoError(t, err)
	assert.Equal(t, refFactory, md.Depends["bb"].kind)
}

func TestOverride_Immutability(t *testing.T) {
	c := newComposer()
	r1, err := c.Build(helloSh, nil)
	require.NoError(t, err)
	before := r1.Identity()
	beforeText := r1.CanonicalText()

	r2, err := r1.Override(canonical.Map{"version": canonical.String("2.0.0")})
	require.NoError(t, err)

	assert.Equal(t, before, r1.Identity())
	assert.Equal(t, beforeText, r1.CanonicalText())
	assert.Equal(t, "0.1.0", r1.Version())
	assert.Equal(t, "2.0.0", r2.Version())
	assert.NotEqual(t, r1.Identity(), r2.Identity())
}

func TestOverride_KeepsSubrecipes(t *testing.T) {
	hello, err := newComposer().Build(helloSh, nil)
	require.NoError(t, err)

	renamed, err := hello.Override(canonical.Map{"name": canonical.String("hello_sh2")})
	require.NoError(t, err)

	assert.Equal(t, "hello_sh2", renamed.Name())
	assert.Equal(t, hello.Depends(), renamed.Depends())
	assert.Equal(t, hello.Subrecipes(), renamed.Subrecipes())
}

func TestOverride_NestedPhase(t *testing.T) {
	hello, err := newComposer().Build(helloSh, nil)
	require.NoError(t, err)

	r, err := hello.Override(canonical.Map{
		"recipe": canonical.Map{"phases": canonical.Map{"check": canonical.Map{"cmd": canonical.String("test -x hello")}}},
	})
	require.NoError(t, err)

	phases := r.Metadata().Recipe.Phases
	assert.Equal(t, "test -x hello", phases.Cmd(PhaseCheck))
	assert.Equal(t, hello.Metadata().Recipe.Phases.Cmd(PhasePatch), phases.Cmd(PhasePatch))
}

func TestOverride_Errors(t *testing.T) {
	r, err := busybox(newComposer(), nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		updates canonical.Map
		want    error
	}{
		{"unknown field", canonical.Map{"license": canonical.String("GPL")}, berrors.ErrValidation},
		{"wrong type", canonical.Map{"version": canonical.Int(2)}, berrors.ErrValidation},
		{"unknown phase", canonical.Map{"recipe": canonical.Map{"phases": canonical.Map{"deploy": canonical.Map{"cmd": canonical.String("x")}}}}, berrors.ErrValidation},
		{"bad dependency", canonical.Map{"depends": canonical.Map{"x": canonical.String("nodigest")}}, berrors.ErrResolution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Override(tt.updates)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestModify(t *testing.T) {
	c := newComposer()
	hello, err := c.Build(helloSh, nil)
	require.NoError(t, err)
	bb, err := c.Build(busybox, nil)
	require.NoError(t, err)
	newer, err := bb.Override(canonical.Map{"version": canonical.String("1.36.1")})
	require.NoError(t, err)

	modified, err := hello.Modify(func(md *Metadata) error {
		md.Depends["busybox"] = Use(newer)
		md.Recipe.BuildDepends = map[string]Ref{"tools": Use(bb)}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, newer.Identity(), modified.Depends()["busybox"])
	assert.Equal(t, bb.Identity(), modified.BuildDepends()["tools"])
	assert.Len(t, modified.Subrecipes(), 2)
	assert.Equal(t, bb.Identity(), hello.Depends()["busybox"], "original untouched")

	_, err = hello.Modify(func(*Metadata) error { return errors.New("nope") })
	assert.Error(t, err)
}

func TestPhasesOrdered(t *testing.T) {
	ordered := Phases{PhaseInstall: {Cmd: "i"}}.Ordered()
	require.Len(t, ordered, 8)
	assert.Equal(t, PhaseUnpack, ordered[0].Phase)
	assert.Equal(t, PhaseDist, ordered[7].Phase)
	assert.Equal(t, "i", ordered[4].Step.Cmd)
}

func TestParseIdentity(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		digest  string
		wantErr bool
	}{
		{"busybox@abc", "busybox", "abc", false},
		{"scoped@name@abc", "scoped@name", "abc", false},
		{"@abc", "", "", true},
		{"busybox@", "", "", true},
		{"busybox", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, digest, err := ParseIdentity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, LooksLikeIdentity(tt.in))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.digest, digest)
		})
	}
}
