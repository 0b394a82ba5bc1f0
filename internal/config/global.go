package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfigPath returns the path to the global configuration file.
func GlobalConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "workbench", "config.yaml"), nil
}

// LoadGlobalConfig loads the global configuration from
// ~/.config/workbench/config.yaml.
// If the file doesn't exist, returns default configuration (not an error).
// If the file exists but is invalid YAML, returns an error.
func LoadGlobalConfig() (GlobalConfig, error) {
	configPath, err := GlobalConfigPath()
	if err != nil {
		return DefaultGlobalConfig(), nil
	}
	return loadGlobalConfigFile(configPath)
}

func loadGlobalConfigFile(configPath string) (GlobalConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultGlobalConfig(), nil
		}
		return GlobalConfig{}, fmt.Errorf("failed to read global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GlobalConfig{}, fmt.Errorf("invalid YAML in %s: %w", configPath, err)
	}

	return applyGlobalDefaults(cfg), nil
}

// applyGlobalDefaults fills in missing fields with default values.
func applyGlobalDefaults(cfg GlobalConfig) GlobalConfig {
	defaults := DefaultGlobalConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}
	if cfg.DefaultEngine == "" {
		cfg.DefaultEngine = defaults.DefaultEngine
	}
	if cfg.Credentials.GitConfig == "" {
		cfg.Credentials.GitConfig = defaults.Credentials.GitConfig
	}
	if cfg.Credentials.SSHKeys == "" {
		cfg.Credentials.SSHKeys = defaults.Credentials.SSHKeys
	}

	return cfg
}

// EnsureGlobalConfigDir creates the global config directory if it doesn't exist.
func EnsureGlobalConfigDir() error {
	configPath, err := GlobalConfigPath()
	if err != nil {
		return err
	}
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

// WriteGlobalConfig writes a global configuration to the default path.
func WriteGlobalConfig(cfg GlobalConfig) error {
	configPath, err := GlobalConfigPath()
	if err != nil {
		return err
	}

	if err := EnsureGlobalConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
