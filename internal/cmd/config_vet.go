package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boldpkg/bold/internal/config"
	"github.com/boldpkg/bold/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate the bold configuration file against its schema.

The config path is resolved using precedence:
  --config flag > BOLD_CONFIG env > ~/.bold/config.yaml

Examples:
  # Validate default configuration
  bold config vet

  # Validate custom config path
  bold config vet --config /path/to/config.yaml`,
		RunE: runConfigVet,
	}
}

func runConfigVet(cmd *cobra.Command, args []string) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return withExitCode(err)
	}

	validator, err := config.NewValidator()
	if err != nil {
		return withExitCode(err)
	}

	output.Debug("validating config", "path", configPath)
	if err := validator.ValidateFile(configPath); err != nil {
		return withExitCode(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), output.FormatCheckmark("Config is valid: "+configPath))
	return nil
}
