package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	berrors "github.com/boldpkg/bold/internal/errors"
	"github.com/boldpkg/bold/internal/hasher"
	"github.com/boldpkg/bold/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue is one configuration value and its provenance.
type ResolvedValue struct {
	Key    string
	Value  any
	Source ConfigSource

	// Shadowed holds values overridden by a higher precedence source.
	Shadowed map[ConfigSource]any
}

// candidate is a value offered by one source. Unset candidates are skipped.
type candidate struct {
	source ConfigSource
	value  any
	set    bool
}

// pick resolves key from candidates in precedence order.
func pick(key string, candidates ...candidate) ResolvedValue {
	rv := ResolvedValue{Key: key, Shadowed: make(map[ConfigSource]any)}
	found := false
	for _, c := range candidates {
		if !c.set {
			continue
		}
		if !found {
			rv.Value = c.value
			rv.Source = c.source
			found = true
			continue
		}
		rv.Shadowed[c.source] = c.value
	}
	return rv
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) BOLD_CONFIG env, (3) ~/.bold/config.yaml
func ResolveConfigPath(flagValue string) (ResolvedValue, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return ResolvedValue{}, err
	}
	envValue := os.Getenv(EnvConfig)

	return pick("config",
		candidate{SourceFlag, flagValue, flagValue != ""},
		candidate{SourceEnv, envValue, envValue != ""},
		candidate{SourceDefault, paths.ConfigFile, true},
	), nil
}

// ResolveOptions holds the flag values and loaded file for Resolve.
type ResolveOptions struct {
	// HasherFlag is the --hasher flag value (empty if not set).
	HasherFlag string

	// OutputFlag is the --output flag value (empty if not set).
	OutputFlag string

	// Config is the loaded config file. Nil means no file.
	Config *Config
}

// Resolved is the effective configuration.
type Resolved struct {
	HasherKind  ResolvedValue
	HashCommand ResolvedValue
	HashTimeout ResolvedValue
	Output      ResolvedValue
}

// Resolve applies precedence flag > env > config file > default to every
// setting and validates the result.
func Resolve(opts ResolveOptions) (*Resolved, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = &Config{}
	}
	def := DefaultConfig()

	envHasher := os.Getenv(EnvHasher)
	envCommand := os.Getenv(EnvHashCommand)
	envTimeout := os.Getenv(EnvHashTimeout)
	envOutput := os.Getenv(EnvOutput)

	var timeout time.Duration
	if envTimeout != "" {
		var err error
		timeout, err = time.ParseDuration(envTimeout)
		if err != nil {
			return nil, berrors.NewValidationError(
				fmt.Sprintf("invalid duration %q", envTimeout), EnvHashTimeout, "hasher.timeout", "use a Go duration such as 30s")
		}
	}

	r := &Resolved{
		HasherKind: pick("hasher.kind",
			candidate{SourceFlag, opts.HasherFlag, opts.HasherFlag != ""},
			candidate{SourceEnv, envHasher, envHasher != ""},
			candidate{SourceConfig, cfg.Hasher.Kind, cfg.Hasher.Kind != ""},
			candidate{SourceDefault, def.Hasher.Kind, true},
		),
		HashCommand: pick("hasher.command",
			candidate{SourceEnv, []string{"sh", "-c", envCommand}, envCommand != ""},
			candidate{SourceConfig, cfg.Hasher.Command, len(cfg.Hasher.Command) > 0},
			candidate{SourceDefault, def.Hasher.Command, true},
		),
		HashTimeout: pick("hasher.timeout",
			candidate{SourceEnv, timeout, envTimeout != ""},
			candidate{SourceConfig, cfg.Hasher.Timeout, cfg.Hasher.Timeout != 0},
			candidate{SourceDefault, time.Duration(0), true},
		),
		Output: pick("output.format",
			candidate{SourceFlag, opts.OutputFlag, opts.OutputFlag != ""},
			candidate{SourceEnv, envOutput, envOutput != ""},
			candidate{SourceConfig, cfg.Output.Format, cfg.Output.Format != ""},
			candidate{SourceDefault, def.Output.Format, true},
		),
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Resolved) validate() error {
	kind := strings.ToLower(r.HasherKind.Value.(string))
	if !slices.Contains(hasher.ValidKinds(), kind) {
		return berrors.NewValidationError(
			fmt.Sprintf("unknown hasher %q", r.HasherKind.Value),
			string(r.HasherKind.Source), "hasher.kind",
			"valid hashers: "+strings.Join(hasher.ValidKinds(), ", "))
	}
	if _, err := output.ParseFormat(r.Output.Value.(string)); err != nil {
		return berrors.NewValidationError(err.Error(), string(r.Output.Source), "output.format", "")
	}
	if d := r.HashTimeout.Value.(time.Duration); d < 0 {
		return berrors.NewValidationError(
			fmt.Sprintf("negative timeout %s", d), string(r.HashTimeout.Source), "hasher.timeout", "")
	}
	return nil
}

// HasherOptions returns the options for hasher.New.
func (r *Resolved) HasherOptions() hasher.Options {
	return hasher.Options{
		Kind:    hasher.Kind(strings.ToLower(r.HasherKind.Value.(string))),
		Command: r.HashCommand.Value.([]string),
		Timeout: r.HashTimeout.Value.(time.Duration),
	}
}

// Format returns the resolved output format.
func (r *Resolved) Format() output.Format {
	f, _ := output.ParseFormat(r.Output.Value.(string))
	return f
}

// Values returns every resolved value in a stable order.
func (r *Resolved) Values() []ResolvedValue {
	return []ResolvedValue{r.HasherKind, r.HashCommand, r.HashTimeout, r.Output}
}

// LogResolvedValues logs configuration resolution at debug level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
