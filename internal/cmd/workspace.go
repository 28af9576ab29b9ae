package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/boldpkg/bold/internal/catalog"
	"github.com/boldpkg/bold/internal/hasher"
	"github.com/boldpkg/bold/internal/output"
	"github.com/boldpkg/bold/internal/recipe"
	"github.com/boldpkg/bold/internal/repository"
)

// workspaceOptions selects what goes into a workspace repository.
type workspaceOptions struct {
	// files are catalog paths, relative to the working directory or absolute.
	files []string

	// noCommon skips the busybox and hello_sh recipes.
	noCommon bool
}

// workspace is a repository populated from catalog files.
type workspace struct {
	repo    *repository.Repository
	catalog *catalog.Catalog
	result  *catalog.Result
}

// newComposer builds the composer for the resolved hasher settings.
func newComposer() (*recipe.Composer, error) {
	resolved, err := GetResolvedConfig()
	if err != nil {
		return nil, err
	}
	h, err := hasher.New(resolved.HasherOptions())
	if err != nil {
		return nil, err
	}
	output.Debug("hasher selected", "kind", resolved.HasherKind.Value)
	return recipe.NewComposer(h), nil
}

// loadCatalog reads and unifies the given catalog files from the local disk.
func loadCatalog(files []string) (*catalog.Catalog, error) {
	abs := make([]string, len(files))
	for i, f := range files {
		p, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		abs[i] = p
	}

	loader, err := catalog.NewLoader(osfs.New("/"))
	if err != nil {
		return nil, err
	}
	return loader.Load(abs...)
}

// openWorkspace creates a repository, registers the common recipes and
// builds the catalog files into it. Hashing runs behind a spinner when
// attached to a terminal.
func openWorkspace(ctx context.Context, opts workspaceOptions) (*workspace, error) {
	composer, err := newComposer()
	if err != nil {
		return nil, err
	}
	ws := &workspace{repo: repository.New(composer)}

	err = output.RunWithSpinner(ctx, func() error {
		if !opts.noCommon {
			if err := catalog.RegisterCommon(ws.repo); err != nil {
				return err
			}
		}
		if len(opts.files) == 0 {
			return nil
		}

		cat, err := loadCatalog(opts.files)
		if err != nil {
			return err
		}
		ws.catalog = cat

		res, err := cat.Build(ws.repo)
		if err != nil {
			return err
		}
		ws.result = res
		return nil
	}, output.WithTitle("Hashing recipes..."))
	if err != nil {
		return nil, err
	}

	stats := ws.repo.Stats()
	output.Debug("workspace ready",
		"recipes", stats.Recipes,
		"named_recipes", stats.NamedRecipes,
		"systems", stats.Systems,
	)
	return ws, nil
}
