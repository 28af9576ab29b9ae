package catalog

import (
	"fmt"

	"github.com/boldpkg/bold/internal/recipe"
	"github.com/boldpkg/bold/internal/repository"
)

// Busybox builds the busybox recipe. It takes no parameters.
func Busybox(c *recipe.Composer, _ recipe.Params) (*recipe.Recipe, error) {
	return c.New(recipe.Metadata{
		Name:      "busybox",
		Version:   "1.35.0",
		ShortDesc: "Tiny utilities for small and embedded systems",
		Recipe: recipe.Build{
			Externals: map[string]string{
				"src":    "src://busybox",
				"config": "repo:///bold_unstable/app_assets/busybox_config",
			},
			Phases: recipe.Phases{
				recipe.PhaseUnpack:  {Cmd: `cp "$EXT_config" "$EXT_src"/`},
				recipe.PhaseBuild:   {Cmd: `cd "$EXT_src" && make -j8`},
				recipe.PhaseInstall: {Cmd: `cd "$EXT_src" && make CONFIG_PREFIX="$DESTDIR" install`},
			},
		},
	})
}

// HelloSh builds a shell hello world on top of busybox.
//
// Params:
//   - message: the line printed (default "Hello, World")
//   - filename: the installed binary name (default "hello")
func HelloSh(c *recipe.Composer, p recipe.Params) (*recipe.Recipe, error) {
	message := p.Get("message", "Hello, World")
	filename := p.Get("filename", "hello")

	return c.New(recipe.Metadata{
		Name:      "hello_sh",
		Version:   "0.1.0",
		ShortDesc: "A simple hello world app",
		Depends: map[string]recipe.Ref{
			"busybox": recipe.Func(Busybox),
		},
		Recipe: recipe.Build{
			Externals: map[string]string{
				"src": "src://hello_sh",
			},
			Phases: recipe.Phases{
				recipe.PhasePatch: {Cmd: fmt.Sprintf(
					`sed -i "s:/bin/sh:$DEP_busybox/bin/sh:g" "$EXT_src"/hello; echo "echo \"%s\"" >> "$EXT_src"/hello`, message)},
				recipe.PhaseInstall: {Cmd: fmt.Sprintf(
					`mkdir -p "$DESTDIR/bin" && install "$EXT_src"/hello "$DESTDIR/bin/%s"`, filename)},
			},
		},
	})
}

// Common lists the common recipe factories by name.
var Common = map[string]recipe.Factory{
	"busybox":  Busybox,
	"hello_sh": HelloSh,
}

// RegisterCommon adds the common recipes to repo with unique names.
func RegisterCommon(repo *repository.Repository) error {
	for _, f := range []recipe.Factory{HelloSh, Busybox} {
		if _, err := repo.AddRecipe(recipe.Func(f), repository.WithUniqueName(true)); err != nil {
			return fmt.Errorf("registering common recipes: %w", err)
		}
	}
	return nil
}
