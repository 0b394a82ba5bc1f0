// Package container provides an abstraction over CLI container engines
// (docker, podman). Engines are invoked through their standard command-line
// interfaces; no container runtime is linked in.
package container

import (
	"context"
	"fmt"
	"io"
)

// Engine defines the operations workbench needs from a container engine.
type Engine interface {
	// Name returns the engine name (e.g. "docker").
	Name() string

	// Available reports whether the engine binary can be found on PATH.
	Available() bool

	// Build builds an image from a build context.
	Build(ctx context.Context, opts BuildOptions) error

	// Run runs a container and blocks until it exits.
	Run(ctx context.Context, opts RunOptions) error

	// ImageExists reports whether an image with the given tag exists locally.
	ImageExists(ctx context.Context, tag string) (bool, error)

	// RemoveImage removes a local image.
	RemoveImage(ctx context.Context, tag string) error
}

// BuildOptions contains options for building an image.
type BuildOptions struct {
	// ContextDir is the build context directory.
	ContextDir string

	// Dockerfile is the path to the Dockerfile, relative to ContextDir.
	// Empty means the engine's default.
	Dockerfile string

	// Tag is the image tag.
	Tag string

	// Stdout and Stderr receive the build output.
	Stdout io.Writer
	Stderr io.Writer
}

// Mount is a bind mount from a host path into the container.
type Mount struct {
	// Source is the host path.
	Source string `yaml:"source"`

	// Target is the path inside the container.
	Target string `yaml:"target"`

	// ReadOnly mounts the path read-only.
	ReadOnly bool `yaml:"readonly"`
}

// Spec renders the mount in the -v flag syntax.
func (m Mount) Spec() string {
	spec := m.Source + ":" + m.Target
	if m.ReadOnly {
		spec += ":ro"
	}
	return spec
}

// RunOptions contains options for running a container.
type RunOptions struct {
	// Image is the image tag to run.
	Image string

	// Command is the command to run in the container.
	// Empty means the image's default command.
	Command []string

	// WorkDir is the working directory inside the container.
	WorkDir string

	// Env contains environment variables to set in the container.
	Env map[string]string

	// Mounts are bind mounts into the container.
	Mounts []Mount

	// Remove removes the container when it exits (--rm).
	Remove bool

	// Interactive keeps stdin open and allocates a TTY (-it).
	Interactive bool

	// Stdin, Stdout and Stderr are attached to the container process.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// EngineFactory is a function that creates a new engine instance.
type EngineFactory func() Engine

// registry holds the registered engine factories.
var registry = make(map[string]EngineFactory)

// Register registers an engine factory for the given name.
// This should be called during package init.
func Register(name string, factory EngineFactory) {
	registry[name] = factory
}

// Get returns a new engine instance for the given name.
// Returns an error if the engine is not registered.
func Get(name string) (Engine, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown container engine: %s", name)
	}
	return factory(), nil
}

// RegisteredNames returns a list of all registered engine names.
func RegisteredNames() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}
