package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - GBIT_CONFIG_PATH: server config file location (default: ~/.config/gbitd.toml)
//   - GBIT_CLIENT_CONFIG_PATH: client config file location (default: ~/.config/gbit.toml)
//   - GBIT_HOME: base directory for gbit data (default: ~/.local/share/gbit)
func GetDefaults() (map[string]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	configPath := os.Getenv("GBIT_CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join(homeDir, ".config", "gbitd.toml")
	}

	clientConfigPath := os.Getenv("GBIT_CLIENT_CONFIG_PATH")
	if clientConfigPath == "" {
		clientConfigPath = filepath.Join(homeDir, ".config", "gbit.toml")
	}

	baseDir := os.Getenv("GBIT_HOME")
	if baseDir == "" {
		baseDir = filepath.Join(homeDir, ".local", "share", "gbit")
	}

	return map[string]string{
		"config_path":        configPath,
		"client_config_path": clientConfigPath,
		"base_dir":           baseDir,
		"log_dir":            filepath.Join(baseDir, "log"),
	}, nil
}
