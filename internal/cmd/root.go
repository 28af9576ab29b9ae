package cmd

import (
	"github.com/spf13/cobra"

	"github.com/boldpkg/bold/internal/config"
	"github.com/boldpkg/bold/internal/output"
	"github.com/boldpkg/bold/internal/version"
)

var (
	// Global flags
	configFlag     string
	verboseFlag    bool
	hasherFlag     string
	outputFlag     string
	timestampsFlag bool

	// Loaded and resolved configuration (set during PersistentPreRunE)
	boldConfig     *config.Config
	resolvedConfig *config.Resolved
	resolveErr     error
)

// NewRootCmd creates the root command for the bold CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bold",
		Short: "Content-addressed recipe repository",
		Long: `bold composes build recipes and systems into a content-addressed repository.

Every recipe is identified by name@digest, where the digest covers its metadata
and the identities of everything it depends on. The repository snapshot is the
input handed to the external builder.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: BOLD_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&hasherFlag, "hasher", "", "Digest function: command, sha256, sha512, blake3 (env: BOLD_HASHER)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "Snapshot format: json, yaml, cbor (env: BOLD_OUTPUT)")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(NewBuildCmd())
	rootCmd.AddCommand(NewIdentityCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewVetCmd())
	rootCmd.AddCommand(NewDiffCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals loads the config file, resolves every setting and sets
// up logging.
func initializeGlobals(cmd *cobra.Command) error {
	pathValue, err := config.ResolveConfigPath(configFlag)
	if err != nil {
		return err
	}

	loadedConfig, err := config.NewLoader().Load(pathValue.Value.(string))
	if err != nil {
		// Commands such as `config init` must keep working with a broken file.
		output.Debug("config load error", "error", err)
		loadedConfig = nil
	}
	boldConfig = loadedConfig

	resolved, err := config.Resolve(config.ResolveOptions{
		HasherFlag: hasherFlag,
		OutputFlag: outputFlag,
		Config:     boldConfig,
	})
	// Config commands must be able to inspect and replace an invalid file,
	// so the error is reported by the first command that needs the values.
	resolvedConfig, resolveErr = resolved, err
	if err != nil {
		output.Debug("config resolution error", "error", err)
	}

	// Timestamps: flag (if explicitly set) > config > default (nil = true)
	logCfg := output.LogConfig{Verbose: verboseFlag}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	} else if boldConfig != nil && boldConfig.Log.Timestamps != nil {
		logCfg.Timestamps = boldConfig.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	if verboseFlag && resolved != nil {
		info := version.Get()
		output.Debug("bold started", "version", info.Version, "commit", info.GitCommit)
		config.LogResolvedValues(append([]config.ResolvedValue{pathValue}, resolved.Values()...))
	}

	return nil
}

// GetResolvedConfig returns the resolved configuration. Before the root
// command has run it resolves defaults and environment only.
func GetResolvedConfig() (*config.Resolved, error) {
	if resolveErr != nil {
		return nil, withExitCode(resolveErr)
	}
	if resolvedConfig != nil {
		return resolvedConfig, nil
	}
	r, err := config.Resolve(config.ResolveOptions{HasherFlag: hasherFlag, OutputFlag: outputFlag})
	if err != nil {
		return nil, withExitCode(err)
	}
	return r, nil
}

// GetConfigPath returns the config path from --config or the environment.
func GetConfigPath() (string, error) {
	rv, err := config.ResolveConfigPath(configFlag)
	if err != nil {
		return "", err
	}
	return rv.Value.(string), nil
}
