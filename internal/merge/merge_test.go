package merge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boldpkg/bold/internal/canonical"
	berrors "github.com/boldpkg/bold/internal/errors"
)

func sample() canonical.Map {
	return canonical.Map{
		"name":    canonical.String("busybox"),
		"version": canonical.String("1.35.0"),
		"recipe": canonical.Map{
			"externals": canonical.Map{"src": canonical.String("src://busybox")},
			"phases": canonical.Map{
				"build": canonical.Map{"cmd": canonical.String("make")},
			},
		},
		"tags": canonical.List{canonical.String("a"), canonical.String("b"), canonical.String("c")},
	}
}

func TestMerge_ScalarsOverwrite(t *testing.T) {
	target := sample()
	Merge(canonical.Map{"version": canonical.String("2.0.0")}, target)

	assert.Equal(t, canonical.String("2.0.0"), target["version"])
	assert.Equal(t, canonical.String("busybox"), target["name"])
}

func TestMerge_NestedMapsMerge(t *testing.T) {
	target := sample()
	Merge(canonical.Map{
		"recipe": canonical.Map{
			"phases": canonical.Map{"install": canonical.Map{"cmd": canonical.String("make install")}},
		},
	}, target)

	phases := target.GetMap("recipe").GetMap("phases")
	assert.Equal(t, canonical.String("make"), phases.GetMap("build")["cmd"])
	assert.Equal(t, canonical.String("make install"), phases.GetMap("install")["cmd"])
	assert.Equal(t, canonical.String("src://busybox"), target.GetMap("recipe").GetMap("externals")["src"])
}

func TestMerge_NullOverwrites(t *testing.T) {
	target := sample()
	Merge(canonical.Map{"version": canonical.Null{}}, target)
	assert.Equal(t, canonical.Null{}, target["version"])
}

func TestMerge_MapReplacesScalar(t *testing.T) {
	target := canonical.Map{"x": canonical.String("scalar")}
	Merge(canonical.Map{"x": canonical.Map{"k": canonical.Int(1)}}, target)
	assert.Equal(t, canonical.Map{"k": canonical.Int(1)}, target["x"])
}

func TestMerge_DoesNotAliasSource(t *testing.T) {
	source := canonical.Map{"sub": canonical.Map{"k": canonical.String("v")}, "l": canonical.List{canonical.String("a")}}
	target := Merge(source, canonical.Map{})

	source.GetMap("sub")["k"] = canonical.String("changed")
	source["l"].(canonical.List)[0] = canonical.String("changed")

	assert.Equal(t, canonical.String("v"), target.GetMap("sub")["k"])
	assert.Equal(t, canonical.String("a"), target["l"].(canonical.List)[0])
}

func TestClone(t *testing.T) {
	orig := sample()
	cp := Clone(orig)

	assert.True(t, canonical.Equal(orig, cp))
	cp.GetMap("recipe").GetMap("externals")["src"] = canonical.String("src://other")
	assert.Equal(t, canonical.String("src://busybox"), orig.GetMap("recipe").GetMap("externals")["src"])
}

func TestOverride_LeavesOriginalUntouched(t *testing.T) {
	orig := sample()
	before := canonical.Marshal(orig)

	out := Override(orig, canonical.Map{"version": canonical.String("2.0.0")})

	assert.Equal(t, before, canonical.Marshal(orig))
	assert.Equal(t, canonical.String("2.0.0"), out["version"])
}

func TestListPolicies(t *testing.T) {
	shorter := canonical.Map{"tags": canonical.List{canonical.String("z")}}

	t.Run("replace", func(t *testing.T) {
		target := sample()
		_, err := With(shorter, target, ListReplace)
		require.NoError(t, err)
		assert.Equal(t, canonical.List{canonical.String("z")}, target["tags"])
	})

	t.Run("index-wise", func(t *testing.T) {
		target := sample()
		_, err := With(shorter, target, ListIndexWise)
		require.NoError(t, err)
		assert.Equal(t, canonical.List{canonical.String("z"), canonical.String("b"), canonical.String("c")}, target["tags"])
	})

	t.Run("index-wise extends and merges maps", func(t *testing.T) {
		target := canonical.Map{"l": canonical.List{canonical.Map{"a": canonical.Int(1)}}}
		source := canonical.Map{"l": canonical.List{canonical.Map{"b": canonical.Int(2)}, canonical.String("new")}}
		_, err := With(source, target, ListIndexWise)
		require.NoError(t, err)
		assert.Equal(t, canonical.List{
			canonical.Map{"a": canonical.Int(1), "b": canonical.Int(2)},
			canonical.String("new"),
		}, target["l"])
	})

	t.Run("reject", func(t *testing.T) {
		target := sample()
		_, err := With(shorter, target, ListReject)
		require.Error(t, err)
		assert.True(t, errors.Is(err, berrors.ErrValidation))
		assert.Contains(t, err.Error(), "tags")
	})

	t.Run("reject allows new list", func(t *testing.T) {
		target := canonical.Map{}
		_, err := With(shorter, target, ListReject)
		require.NoError(t, err)
		assert.Equal(t, canonical.List{canonical.String("z")}, target["tags"])
	})
}

func TestWith_NilTarget(t *testing.T) {
	out, err := With(canonical.Map{"a": canonical.Bool(true)}, nil, ListReplace)
	require.NoError(t, err)
	assert.Equal(t, canonical.Map{"a": canonical.Bool(true)}, out)
}

func TestListPolicyString(t *testing.T) {
	assert.Equal(t, "replace", ListReplace.String())
	assert.Equal(t, "index-wise", ListIndexWise.String())
	assert.Equal(t, "reject", ListReject.String())
}
