package cmd

import (
	"github.com/spf13/cobra"

	"github.com/boldpkg/bold/internal/snapshot"
)

var buildNoCommon bool

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [files...]",
		Short: "Build a repository snapshot from catalog files",
		Long: `Build composes every recipe and system in the given catalog files, adds them
to a repository together with the common recipes, and writes the repository
snapshot to stdout.

Catalog files may be CUE, YAML or JSON. Multiple files are unified.

Examples:
  # Snapshot of the common recipes only
  bold build

  # Build a catalog and write YAML
  bold build catalog.cue -o yaml

  # Use an in-process hasher
  bold build apps.yaml systems.cue --hasher blake3`,
		RunE: runBuild,
	}

	cmd.Flags().BoolVar(&buildNoCommon, "no-common", false, "Do not add the busybox and hello_sh recipes")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	resolved, err := GetResolvedConfig()
	if err != nil {
		return err
	}

	ws, err := openWorkspace(cmd.Context(), workspaceOptions{files: args, noCommon: buildNoCommon})
	if err != nil {
		return withExitCode(err)
	}

	return withExitCode(snapshot.Write(cmd.OutOrStdout(), ws.repo.Snapshot(), resolved.Format()))
}
