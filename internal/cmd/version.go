package cmd

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/boldpkg/bold/internal/hasher"
	"github.com/boldpkg/bold/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show bold version information.

Displays:
  - bold version, commit, and build date
  - CUE SDK version (embedded in the binary)
  - The active hasher, and for the command hasher whether its program is on PATH`,
		RunE: runVersion,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, version.Get().String())

	resolved, err := GetResolvedConfig()
	if err != nil {
		return err
	}
	opts := resolved.HasherOptions()
	fmt.Fprintf(out, "  Hasher:    %s\n", opts.Kind)
	if opts.Kind == hasher.KindCommand {
		fmt.Fprintf(out, "  Program:   %s\n", hashProgram(opts.Command))
	}
	return nil
}

// hashProgram reports where the first word of the hash command resolves.
func hashProgram(argv []string) string {
	if len(argv) == 0 {
		argv = hasher.DefaultCommand
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return argv[0] + " (not found in PATH)"
	}
	return path
}
