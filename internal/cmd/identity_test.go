package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boldpkg/bold/internal/catalog"
	"github.com/boldpkg/bold/internal/repository"
	"github.com/boldpkg/bold/internal/testutil"
)

func TestIdentity_CommonRecipe(t *testing.T) {
	isolate(t)

	out, err := runSHA256(t, "identity", "hello_sh")
	require.NoError(t, err)

	repo := repository.New(testutil.NewComposer())
	require.NoError(t, catalog.RegisterCommon(repo))
	want := repo.FindByName("hello_sh")
	require.Len(t, want, 1)

	assert.Equal(t, want[0].Identity()+"\n", out)
}

func TestIdentity_System(t *testing.T) {
	isolate(t)

	out, err := runSHA256(t, "identity", "edge", fixture(t, "apps.yaml"), fixture(t, "systems.cue"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "edge@"), out)
}

func TestIdentity_DependencyChangePropagates(t *testing.T) {
	isolate(t)

	before, err := runSHA256(t, "identity", "greeter", fixture(t, "apps.yaml"))
	require.NoError(t, err)
	after, err := runSHA256(t, "identity", "greeter", fixture(t, "apps-v2.yaml"))
	require.NoError(t, err)

	assert.NotEqual(t, before, after, "libgreet version bump must change greeter")
}

func TestIdentity_NotFound(t *testing.T) {
	isolate(t)

	_, err := runSHA256(t, "identity", "nothing")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCodeFromError(err))
}

func TestIdentity_RequiresName(t *testing.T) {
	isolate(t)

	_, err := runSHA256(t, "identity")
	assert.Error(t, err)
}
