package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/boldpkg/bold/internal/canonical"
	berrors "github.com/boldpkg/bold/internal/errors"
	"github.com/boldpkg/bold/internal/output"
	"github.com/boldpkg/bold/internal/snapshot"
)

// NewDiffCmd creates the diff command.
func NewDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two repository snapshots",
		Long: `Diff compares two snapshots written by 'bold build' and reports recipes and
systems that were added or removed, and unique names that now point at a
different identity. The format of each file is picked from its extension
(.json, .yaml, .yml or .cbor).

Examples:
  bold build catalog.cue > before.json
  # edit catalog.cue
  bold build catalog.cue > after.json
  bold diff before.json after.json`,
		Args: cobra.ExactArgs(2),
		RunE: runDiff,
	}
}

func runDiff(cmd *cobra.Command, args []string) error {
	before, err := readSnapshot(args[0])
	if err != nil {
		return withExitCode(err)
	}
	after, err := readSnapshot(args[1])
	if err != nil {
		return withExitCode(err)
	}

	result, err := snapshot.Diff(before, after)
	if err != nil {
		return withExitCode(err)
	}

	if result.Empty() {
		fmt.Fprintln(cmd.OutOrStdout(), output.FormatCheckmark("snapshots are equivalent"))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Render())
	return nil
}

func readSnapshot(path string) (canonical.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, berrors.NewNotFoundError("snapshot file does not exist", path, "")
		}
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	m, err := snapshot.Read(f, snapshot.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return m, nil
}
