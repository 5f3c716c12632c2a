package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ClientConfig is the per-user CLI configuration, written by `gbit login`.
type ClientConfig struct {
	APIURL   string `toml:"api_url"`
	Identity string `toml:"identity"` // owner identity, typically an email
}

// DefaultAPIURL is used when no client config exists yet.
const DefaultAPIURL = "http://localhost:3001"

// ReadClientConfig reads the client config from path. A missing file is not
// an error: it yields a config with defaults and no identity.
func ReadClientConfig(path string) (*ClientConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ClientConfig{APIURL: DefaultAPIURL}, nil
		}
		return nil, fmt.Errorf("failed to open client config: %w", err)
	}
	defer f.Close()

	var cfg ClientConfig
	if _, err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("reading client config from %s: %w", path, err)
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return &cfg, nil
}

// WriteClientConfig persists the client config, creating parent directories
// as needed.
func WriteClientConfig(path string, cfg *ClientConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create client config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing client config to %s: %w", path, err)
	}
	return nil
}
