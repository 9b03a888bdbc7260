// Package library manages the on-disk side of the rule and proof library:
// the zxd.yaml configuration, glob-based discovery of rule files, and
// compressed proof bundles.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the workspace configuration file.
const ConfigFileName = "zxd.yaml"

// Config holds the workspace configuration.
type Config struct {
	// RulePaths are doublestar globs for custom rule files, relative to the
	// config file's directory.
	RulePaths []string `yaml:"rule_paths"`
	// DBPath locates the library database, relative to the config file's
	// directory.
	DBPath string `yaml:"db_path"`
}

// DefaultConfig returns the configuration a fresh workspace starts with.
func DefaultConfig() Config {
	return Config{
		RulePaths: []string{"rules/**/*.zxr"},
		DBPath:    "library.db",
	}
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultConfig().DBPath
	}
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration, or returns the default when
// the file does not exist.
func LoadConfigOrDefault(path string) (Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// SaveConfig writes the configuration to a YAML file.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
