package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	berrors "github.com/boldpkg/bold/internal/errors"
)

var identityNoCommon bool

// NewIdentityCmd creates the identity command.
func NewIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity <name> [files...]",
		Short: "Print the identity of a named recipe or system",
		Long: `Identity builds the given catalog files and prints name@digest for every
recipe or system registered under name.

Examples:
  bold identity hello_sh
  bold identity web catalog.cue --hasher sha256`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIdentity,
	}

	cmd.Flags().BoolVar(&identityNoCommon, "no-common", false, "Do not add the busybox and hello_sh recipes")

	return cmd
}

func runIdentity(cmd *cobra.Command, args []string) error {
	name := args[0]

	ws, err := openWorkspace(cmd.Context(), workspaceOptions{files: args[1:], noCommon: identityNoCommon})
	if err != nil {
		return withExitCode(err)
	}

	var ids []string
	for _, rec := range ws.repo.FindByName(name) {
		ids = append(ids, rec.Identity())
	}
	for _, id := range ws.repo.Systems() {
		if rs, _ := ws.repo.System(id); rs.Name() == name {
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return withExitCode(berrors.NewNotFoundError(
			fmt.Sprintf("no recipe or system named %q", name), name, "Run 'bold list' to see what is available."))
	}

	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}
