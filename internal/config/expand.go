package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Quidge/workbench/internal/container"
	"github.com/Quidge/workbench/internal/pathutil"
)

// envVarPattern matches ${VAR} or ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandEnvVars expands ${VAR} patterns in a string using environment
// variables. An unset variable without a default expands to an empty string.
func ExpandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]

		// Handle default values: ${VAR:-default}
		if idx := strings.Index(varName, ":-"); idx != -1 {
			name := varName[:idx]
			defaultVal := varName[idx+2:]
			if val, ok := os.LookupEnv(name); ok {
				return val
			}
			return defaultVal
		}

		return os.Getenv(varName)
	})
}

// ReadFromFile reads the contents of a file and returns it as a string.
// The path is tilde-expanded before reading.
func ReadFromFile(path string) (string, error) {
	expandedPath, err := pathutil.ExpandTilde(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}

	// Trim trailing newlines (common in secret files)
	return strings.TrimRight(string(data), "\n\r"), nil
}

// ExpandEnvMap processes a map of EnvVar values, expanding environment
// variables and reading from_file references. Returns a map of string values.
func ExpandEnvMap(envVars map[string]EnvVar) (map[string]string, error) {
	result := make(map[string]string, len(envVars))

	for key, envVar := range envVars {
		var value string
		var err error

		if envVar.FromFile != "" {
			expandedPath := ExpandEnvVars(envVar.FromFile)
			value, err = ReadFromFile(expandedPath)
			if err != nil {
				return nil, fmt.Errorf("failed to expand env var %s: %w", key, err)
			}
		} else {
			value = ExpandEnvVars(envVar.Value)
		}

		result[key] = value
	}

	return result, nil
}

// ExpandCredentials expands all paths in a CredentialsConfig.
func ExpandCredentials(creds CredentialsConfig) (CredentialsConfig, error) {
	var err error
	expanded := CredentialsConfig{}

	expanded.GitConfig, err = pathutil.ExpandTilde(creds.GitConfig)
	if err != nil {
		return expanded, fmt.Errorf("git_config: %w", err)
	}

	expanded.SSHKeys, err = pathutil.ExpandTilde(creds.SSHKeys)
	if err != nil {
		return expanded, fmt.Errorf("ssh_keys: %w", err)
	}

	return expanded, nil
}

// ExpandMounts expands source paths in container mounts. Relative source
// paths are resolved relative to baseDir (the directory containing the
// project config file).
func ExpandMounts(mounts []container.Mount, baseDir string) ([]container.Mount, error) {
	result := make([]container.Mount, len(mounts))
	for i, m := range mounts {
		expandedSource, err := pathutil.ExpandTilde(m.Source)
		if err != nil {
			return nil, fmt.Errorf("mount %d source: %w", i, err)
		}
		if baseDir != "" {
			expandedSource = pathutil.ResolveRelative(baseDir, expandedSource)
		}
		result[i] = container.Mount{
			Source:   expandedSource,
			Target:   m.Target,
			ReadOnly: m.ReadOnly,
		}
	}
	return result, nil
}

// ValidateMounts validates that all mount target paths are absolute.
// Source paths are expected to be already expanded by ExpandMounts.
func ValidateMounts(mounts []container.Mount) error {
	for i, m := range mounts {
		if err := pathutil.ValidateAbsolute(m.Target); err != nil {
			return fmt.Errorf("mount %d target: %w", i, err)
		}
	}
	return nil
}
