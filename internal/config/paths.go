package config

import (
	"os"
	"path/filepath"
)

// Environment variables read by bold.
const (
	EnvConfig      = "BOLD_CONFIG"
	EnvHasher      = "BOLD_HASHER"
	EnvHashCommand = "BOLD_HASH_COMMAND"
	EnvHashTimeout = "BOLD_HASH_TIMEOUT"
	EnvOutput      = "BOLD_OUTPUT"
)

// Paths contains standard filesystem paths for bold.
type Paths struct {
	// ConfigFile is the path to the config file (~/.bold/config.yaml).
	ConfigFile string

	// HomeDir is the bold home directory (~/.bold).
	HomeDir string
}

// DefaultPaths returns the default paths for bold.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	boldHome := filepath.Join(homeDir, ".bold")

	return &Paths{
		ConfigFile: filepath.Join(boldHome, "config.yaml"),
		HomeDir:    boldHome,
	}, nil
}

// GetConfigFile returns the config file path.
// If BOLD_CONFIG is set, it takes precedence.
func GetConfigFile() (string, error) {
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		return envPath, nil
	}

	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile, nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return homeDir, nil
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}

	// ~username is not supported
	return path, nil
}
