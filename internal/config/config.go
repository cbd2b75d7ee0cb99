// Package config loads client configuration from a YAML file.
//
// The file lives at --config or $XDG_CONFIG_HOME/mtm/config.yaml. A
// missing file is not an error; defaults apply. There is no automatic
// discovery beyond that one path.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full client configuration.
type Config struct {
	// ServerURL is the GraphQL endpoint of the project manager API.
	ServerURL string `yaml:"server_url"`

	// TimeoutSeconds bounds each HTTP round trip. Zero means the
	// default of 30 seconds.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// LogFile receives JSON log records. Empty disables logging; the
	// TUI owns the terminal, so logs never go to stderr.
	LogFile string `yaml:"log_file"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ServerURL:      "http://localhost:4000/graphql",
		TimeoutSeconds: 30,
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "mtm", "config.yaml"), nil
}

// Load reads the config file at path, applying defaults for absent
// fields. A nonexistent file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = Default().ServerURL
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = Default().TimeoutSeconds
	}
	return cfg, nil
}
