package config

import (
	"gopkg.in/yaml.v3"

	"github.com/Quidge/workbench/internal/container"
)

// Defaults reproducing the original fixed workflow constants. Everything is
// overridable through config files and flags, but a bare `workbench setup`
// and `workbench sandbox` behave exactly like the historical scripts.
const (
	// DefaultRepoURL is the repository cloned when none is configured.
	DefaultRepoURL = "https://github.com/keon/algorithms.git"

	// DefaultBranch is the branch created after cloning.
	DefaultBranch = "generated-tests"

	// DefaultManifest is the dependency manifest installed into the venv.
	DefaultManifest = "requirements.txt"

	// DefaultImageTag is the tag used for the sandbox image.
	DefaultImageTag = "workbench"

	// DefaultImageWorkDir is where the working directory is mounted inside
	// the sandbox container.
	DefaultImageWorkDir = "/workspace"

	// DefaultEngine is the container engine used when none is configured.
	DefaultEngine = "docker"
)

// GlobalConfig represents the global configuration loaded from
// ~/.config/workbench/config.yaml
type GlobalConfig struct {
	Version       int               `yaml:"version"`
	DefaultEngine string            `yaml:"default_engine"`
	Credentials   CredentialsConfig `yaml:"credentials"`
}

// CredentialsConfig defines host paths shared with sandbox containers.
type CredentialsConfig struct {
	GitConfig string `yaml:"git_config"`
	SSHKeys   string `yaml:"ssh_keys"`
}

// ProjectConfig represents the project configuration loaded from
// .workbench.yaml in the working tree.
type ProjectConfig struct {
	Version  int               `yaml:"version"`
	RepoURL  string            `yaml:"repo_url"`
	Branch   string            `yaml:"branch"`
	Manifest string            `yaml:"manifest"`
	Python   string            `yaml:"python"`
	Env      map[string]EnvVar `yaml:"env"`
	Setup    []string          `yaml:"setup"`
	Image    ImageConfig       `yaml:"image"`
	Mounts   []container.Mount `yaml:"mounts"`
}

// ImageConfig configures the sandbox image build and run.
type ImageConfig struct {
	Tag        string `yaml:"tag"`
	Context    string `yaml:"context"`
	Dockerfile string `yaml:"dockerfile"`
	WorkDir    string `yaml:"workdir"`
}

// EnvVar represents an environment variable value.
// It can be either a literal string or a from_file reference.
type EnvVar struct {
	Value    string // Literal value (after expansion)
	FromFile string // Path to file containing value
}

// UnmarshalYAML implements custom unmarshaling for EnvVar to handle
// both string values and {from_file: path} objects.
func (e *EnvVar) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err == nil {
		e.Value = str
		return nil
	}

	var obj struct {
		FromFile string `yaml:"from_file"`
	}
	if err := value.Decode(&obj); err != nil {
		return err
	}
	e.FromFile = obj.FromFile
	return nil
}

// MergedConfig represents the final merged configuration after applying
// precedence rules (defaults → global → project → flags).
type MergedConfig struct {
	// Engine is the container engine name.
	Engine string

	// Credentials with paths expanded.
	Credentials CredentialsConfig

	// Setup workflow settings.
	RepoURL  string
	Branch   string
	Manifest string
	Python   string
	Env      map[string]string // Expanded environment variables
	Setup    []string

	// Sandbox workflow settings.
	Image  ImageConfig
	Mounts []container.Mount
}

// DefaultGlobalConfig returns a GlobalConfig with sensible defaults.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		Version:       1,
		DefaultEngine: DefaultEngine,
		Credentials: CredentialsConfig{
			GitConfig: "~/.gitconfig",
			SSHKeys:   "~/.ssh",
		},
	}
}

// DefaultProjectConfig returns a ProjectConfig with sensible defaults.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:  1,
		RepoURL:  DefaultRepoURL,
		Branch:   DefaultBranch,
		Manifest: DefaultManifest,
		Image: ImageConfig{
			Tag:     DefaultImageTag,
			Context: ".",
			WorkDir: DefaultImageWorkDir,
		},
	}
}
