package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boldpkg/bold/internal/output"
)

var listNoCommon bool

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [files...]",
		Short: "List recipes and systems with their identities",
		Long: `List builds the given catalog files and prints every stored recipe and
system as a table.

Examples:
  bold list
  bold list catalog.cue --no-common`,
		RunE: runList,
	}

	cmd.Flags().BoolVar(&listNoCommon, "no-common", false, "Do not add the busybox and hello_sh recipes")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd.Context(), workspaceOptions{files: args, noCommon: listNoCommon})
	if err != nil {
		return withExitCode(err)
	}

	entries := ws.repo.Entries()
	if len(entries) == 0 {
		output.Info("repository is empty")
		return nil
	}

	rows := make([]output.EntryRow, len(entries))
	for i, e := range entries {
		rows[i] = output.EntryRow{Kind: e.Kind, Name: e.Name, Version: e.Version, Identity: e.Identity}
	}
	fmt.Fprintln(cmd.OutOrStdout(), output.RenderEntryTable(rows))
	return nil
}
