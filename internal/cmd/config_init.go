package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/boldpkg/bold/internal/config"
	berrors "github.com/boldpkg/bold/internal/errors"
	"github.com/boldpkg/bold/internal/output"
)

var configInitForce bool

// configHeader is written above the generated YAML.
const configHeader = `# bold configuration
#
# Values here are overridden by BOLD_* environment variables and by flags.
# hasher.kind: command | sha256 | sha512 | blake3
# output.format: json | yaml | cbor
`

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration",
		Long: `Initialize the bold CLI configuration.

Writes the default configuration to the resolved config path
(--config flag > BOLD_CONFIG env > ~/.bold/config.yaml).

Examples:
  # Initialize configuration
  bold config init

  # Overwrite existing configuration
  bold config init --force`,
		RunE: runConfigInit,
	}

	cmd.Flags().BoolVarP(&configInitForce, "force", "f", false,
		"Overwrite existing configuration")

	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return withExitCode(berrors.Wrap(berrors.ErrNotFound, "could not determine home directory"))
	}
	configPath, err = config.ExpandPath(configPath)
	if err != nil {
		return withExitCode(err)
	}

	exists, err := config.ConfigFileExists(configPath)
	if err != nil {
		return withExitCode(err)
	}
	if exists && !configInitForce {
		return withExitCode(&berrors.DetailError{
			Type:     "validation failed",
			Message:  "configuration already exists",
			Location: configPath,
			Hint:     "Use --force to overwrite existing configuration.",
			Cause:    berrors.ErrValidation,
		})
	}

	body, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return withExitCode(fmt.Errorf("encoding default config: %w", err))
	}

	// Create directories with secure permissions (0700)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return withExitCode(fmt.Errorf("creating config directory: %w", err))
	}

	// Write config with secure permissions (0600)
	if err := os.WriteFile(configPath, append([]byte(configHeader), body...), 0o600); err != nil {
		return withExitCode(fmt.Errorf("writing %s: %w", configPath, err))
	}

	output.Debug("config written", "path", configPath, "force", configInitForce)
	fmt.Fprintln(cmd.OutOrStdout(), output.FormatCheckmark("Configuration initialized at "+configPath))
	fmt.Fprintln(cmd.OutOrStdout(), "Validate with: bold config vet")
	return nil
}
