// Package config loads the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the user-editable application configuration.
type Config struct {
	// DataDir is where the database and exports live.
	DataDir string `yaml:"data_dir"`
	// Database is the database filename inside DataDir.
	Database string `yaml:"database"`
	// Currency is the symbol prefixed to billable amounts in reports.
	Currency string `yaml:"currency"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DataDir:  filepath.Join(home, ".local", "share", "time-tracker"),
		Database: "tracker.db",
		Currency: "$",
	}
}

// Load reads the YAML config at path. A missing file yields the defaults;
// a file that exists but does not parse is an error, since the config is
// user-authored. Unset fields fall back to their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	defaults := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = defaults.DataDir
	}
	if cfg.Database == "" {
		cfg.Database = defaults.Database
	}
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}
	return cfg, nil
}

// DatabasePath is the full path of the SQLite file.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, c.Database)
}
