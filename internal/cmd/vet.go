package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/boldpkg/bold/internal/catalog"
	berrors "github.com/boldpkg/bold/internal/errors"
	"github.com/boldpkg/bold/internal/output"
)

// NewVetCmd creates the vet command.
func NewVetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vet <files...>",
		Short: "Check catalog files without hashing",
		Long: `Vet loads and unifies the given catalog files against the catalog schema,
then checks what the schema cannot express:

  - recipe versions are semantic versions
  - externals are src:// or repo:// locators
  - phase names are known
  - dependency and package targets name a catalog recipe, a common recipe
    or an identity

Examples:
  bold vet catalog.cue
  bold vet apps.yaml systems.cue`,
		Args: cobra.MinimumNArgs(1),
		RunE: runVet,
	}
}

func runVet(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(args)
	if err != nil {
		return withExitCode(err)
	}

	known := make(map[string]bool, len(catalog.Common))
	for name := range catalog.Common {
		known[name] = true
	}

	issues := cat.Vet(known)
	byEntry := make(map[string][]catalog.Issue)
	for _, is := range issues {
		key := is.Kind + " " + is.Name
		byEntry[key] = append(byEntry[key], is)
	}

	out := cmd.OutOrStdout()
	report := func(kind string, names []string) {
		for _, name := range names {
			found := byEntry[kind+" "+name]
			status := output.StatusValid
			if len(found) > 0 {
				status = output.StatusInvalid
			}
			fmt.Fprintln(out, output.FormatEntryLine(kind+" "+name, status))
			for _, is := range found {
				fmt.Fprintf(out, "    %s: %s\n", is.Field, is.Message)
			}
		}
	}
	report("recipe", cat.RecipeNames())
	report("system", cat.SystemNames())

	if len(issues) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, output.StyleSummary.Render(fmt.Sprintf("%d issue(s) found", len(issues))))
		err := berrors.NewValidationError(
			fmt.Sprintf("%d issue(s) found", len(issues)), strings.Join(args, ", "), "", "")
		return &ExitError{Err: err, Code: ExitValidationError, Printed: true}
	}

	fmt.Fprintln(out, output.FormatCheckmark("catalog is valid"))
	return nil
}
