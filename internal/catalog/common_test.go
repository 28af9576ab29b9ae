package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boldpkg/bold/internal/recipe"
)

func TestRegisterCommon(t *testing.T) {
	repo := newRepo()
	require.NoError(t, RegisterCommon(repo))
	require.NoError(t, RegisterCommon(repo), "registering twice is a no-op")

	named := repo.NamedRecipes()
	assert.Len(t, named, 2)
	assert.Contains(t, named, "busybox")
	assert.Contains(t, named, "hello_sh")
	assert.Len(t, repo.Identities(), 2)
}

func TestHelloSh_Params(t *testing.T) {
	c := newRepo().Composer()

	def, err := c.Build(HelloSh, nil)
	require.NoError(t, err)
	custom, err := c.Build(HelloSh, recipe.Params{"message": "Foo bar!", "filename": "greet"})
	require.NoError(t, err)

	phases := custom.Metadata().Recipe.Phases
	assert.Contains(t, phases.Cmd(recipe.PhasePatch), `echo \"Foo bar!\"`)
	assert.Contains(t, phases.Cmd(recipe.PhaseInstall), `"$DESTDIR/bin/greet"`)
	assert.Contains(t, def.Metadata().Recipe.Phases.Cmd(recipe.PhasePatch), "$DEP_busybox/bin/sh")
	assert.NotEqual(t, def.Identity(), custom.Identity())
	assert.Equal(t, def.Depends(), custom.Depends())
}

func TestHelloSh_OverrideName(t *testing.T) {
	c := newRepo().Composer()
	custom, err := c.Build(HelloSh, recipe.Params{"message": "Foo bar!"})
	require.NoError(t, err)

	renamed, err := custom.Modify(func(md *recipe.Metadata) error {
		md.Name = "hello_sh2"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hello_sh2", renamed.Name())
	assert.Len(t, renamed.Subrecipes(), 1)
}

func TestCommon(t *testing.T) {
	c := newRepo().Composer()
	for name, f := range Common {
		r, err := c.Build(f, nil)
		require.NoError(t, err)
		assert.Equal(t, name, r.Name())
	}
}

func TestBusybox_Externals(t *testing.T) {
	r, err := newRepo().Composer().Build(Busybox, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"src":    "src://busybox",
		"config": "repo:///bold_unstable/app_assets/busybox_config",
	}, r.Metadata().Recipe.Externals)
}
