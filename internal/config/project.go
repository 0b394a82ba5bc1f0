package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfigFilename is the name of the project configuration file.
const ProjectConfigFilename = ".workbench.yaml"

// FindProjectConfig searches for a .workbench.yaml file starting from the
// given directory and walking up to parent directories until it finds one or
// reaches the filesystem root. Returns "" if none is found.
func FindProjectConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ProjectConfigFilename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadProjectConfig loads the project configuration from configPath.
// If configPath is empty, searches upward from the current directory.
// If no file is found, returns default configuration (not an error).
// The second return value is the directory containing the config file
// (used to resolve relative paths), or "" when defaults are used.
func LoadProjectConfig(configPath string) (ProjectConfig, string, error) {
	if configPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return DefaultProjectConfig(), "", nil
		}
		configPath = FindProjectConfig(cwd)
		if configPath == "" {
			return DefaultProjectConfig(), "", nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return ProjectConfig{}, "", fmt.Errorf("failed to read project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ProjectConfig{}, "", fmt.Errorf("invalid YAML in %s: %w", configPath, err)
	}

	return applyProjectDefaults(cfg), filepath.Dir(configPath), nil
}

// applyProjectDefaults fills in missing fields with default values.
func applyProjectDefaults(cfg ProjectConfig) ProjectConfig {
	defaults := DefaultProjectConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}
	if cfg.RepoURL == "" {
		cfg.RepoURL = defaults.RepoURL
	}
	if cfg.Branch == "" {
		cfg.Branch = defaults.Branch
	}
	if cfg.Manifest == "" {
		cfg.Manifest = defaults.Manifest
	}
	if cfg.Image.Tag == "" {
		cfg.Image.Tag = defaults.Image.Tag
	}
	if cfg.Image.Context == "" {
		cfg.Image.Context = defaults.Image.Context
	}
	if cfg.Image.WorkDir == "" {
		cfg.Image.WorkDir = defaults.Image.WorkDir
	}

	return cfg
}
