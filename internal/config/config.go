// Package config provides configuration loading and management.
package config

import (
	"time"

	"github.com/boldpkg/bold/internal/hasher"
	"github.com/boldpkg/bold/internal/output"
)

// HasherConfig selects the digest function.
type HasherConfig struct {
	// Kind is one of command, sha256, sha512, blake3.
	// Env: BOLD_HASHER, Default: command
	Kind string `mapstructure:"kind" yaml:"kind,omitempty"`

	// Command is the argv of the external digest process for Kind command.
	// Env: BOLD_HASH_COMMAND (run with sh -c)
	Command []string `mapstructure:"command" yaml:"command,omitempty"`

	// Timeout bounds each digest process. Zero means no timeout.
	// Env: BOLD_HASH_TIMEOUT
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
}

// OutputConfig holds snapshot output settings.
type OutputConfig struct {
	// Format is json, yaml or cbor.
	// Env: BOLD_OUTPUT, Default: json
	Format string `mapstructure:"format" yaml:"format,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Timestamps controls timestamps in log output. Nil means on.
	Timestamps *bool `mapstructure:"timestamps" yaml:"timestamps,omitempty"`
}

// Config is the bold configuration, read from ~/.bold/config.yaml.
type Config struct {
	Hasher HasherConfig `mapstructure:"hasher" yaml:"hasher"`
	Output OutputConfig `mapstructure:"output" yaml:"output"`
	Log    LogConfig    `mapstructure:"log" yaml:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `bold config init` to generate the initial file.
func DefaultConfig() *Config {
	return &Config{
		Hasher: HasherConfig{
			Kind:    string(hasher.KindCommand),
			Command: append([]string(nil), hasher.DefaultCommand...),
		},
		Output: OutputConfig{
			Format: string(output.FormatJSON),
		},
	}
}
