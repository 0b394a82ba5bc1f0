package config

import "fmt"

// FlagOverrides contains CLI flag values that override configuration.
type FlagOverrides struct {
	Engine   string
	RepoURL  string
	Branch   string
	Manifest string
	Python   string
	Tag      string
	Context  string
}

// Merge combines global config, project config, and CLI flag overrides
// following the precedence order: defaults → global → project → flags.
// baseDir is the directory containing the project config file ("" if
// defaults were used) and anchors relative mount sources.
func Merge(global GlobalConfig, project ProjectConfig, baseDir string, flags FlagOverrides) (MergedConfig, error) {
	merged := MergedConfig{}

	merged.Engine = global.DefaultEngine
	if flags.Engine != "" {
		merged.Engine = flags.Engine
	}

	expandedCreds, err := ExpandCredentials(global.Credentials)
	if err != nil {
		return MergedConfig{}, fmt.Errorf("failed to expand credentials: %w", err)
	}
	merged.Credentials = expandedCreds

	merged.RepoURL = project.RepoURL
	merged.Branch = project.Branch
	merged.Manifest = project.Manifest
	merged.Python = project.Python
	merged.Setup = project.Setup
	merged.Image = project.Image

	// CLI flags override everything
	if flags.RepoURL != "" {
		merged.RepoURL = flags.RepoURL
	}
	if flags.Branch != "" {
		merged.Branch = flags.Branch
	}
	if flags.Manifest != "" {
		merged.Manifest = flags.Manifest
	}
	if flags.Python != "" {
		merged.Python = flags.Python
	}
	if flags.Tag != "" {
		merged.Image.Tag = flags.Tag
	}
	if flags.Context != "" {
		merged.Image.Context = flags.Context
	}

	if project.Env != nil {
		expandedEnv, err := ExpandEnvMap(project.Env)
		if err != nil {
			return MergedConfig{}, fmt.Errorf("failed to expand environment variables: %w", err)
		}
		merged.Env = expandedEnv
	}

	if project.Mounts != nil {
		expandedMounts, err := ExpandMounts(project.Mounts, baseDir)
		if err != nil {
			return MergedConfig{}, fmt.Errorf("failed to expand mounts: %w", err)
		}
		if err := ValidateMounts(expandedMounts); err != nil {
			return MergedConfig{}, fmt.Errorf("invalid mounts: %w", err)
		}
		merged.Mounts = expandedMounts
	}

	return merged, nil
}

// LoadFromCwd loads both global and project configuration, searching for
// the project file upward from the current working directory, then merges
// them with the provided flag overrides.
func LoadFromCwd(flags FlagOverrides) (MergedConfig, error) {
	global, err := LoadGlobalConfig()
	if err != nil {
		return MergedConfig{}, fmt.Errorf("failed to load global config: %w", err)
	}

	project, baseDir, err := LoadProjectConfig("")
	if err != nil {
		return MergedConfig{}, fmt.Errorf("failed to load project config: %w", err)
	}

	return Merge(global, project, baseDir, flags)
}
