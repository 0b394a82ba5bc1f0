// Package venv provisions Python virtual environments and installs
// dependencies into them. It shells out to the interpreter's builtin venv
// module and to the environment's own pip rather than linking any Python
// tooling. Using the environment's pip directly is what "activation" amounts
// to for child processes: no shell state is mutated.
package venv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const (
	// DefaultDirName is the directory name used for environments created
	// inside a cloned repository.
	DefaultDirName = "venv"

	// DefaultPython is the interpreter used when none is configured.
	DefaultPython = "python3"

	// cfgFile is written by the venv module at the environment root and
	// identifies a directory as a virtual environment.
	cfgFile = "pyvenv.cfg"
)

// ErrNotVirtualEnv is returned when a directory is not a virtual environment.
var ErrNotVirtualEnv = errors.New("not a virtual environment")

// Env represents a Python virtual environment rooted at Dir.
type Env struct {
	Dir string
}

// Create provisions a new virtual environment at dir using the given
// interpreter (python -m venv). If python is empty, DefaultPython is used.
func Create(ctx context.Context, dir, python string) (*Env, error) {
	if dir == "" {
		return nil, fmt.Errorf("environment directory is empty")
	}
	if python == "" {
		python = DefaultPython
	}

	cmd := exec.CommandContext(ctx, python, "-m", "venv", dir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to create virtual environment at %s: %w", dir, err)
	}

	return &Env{Dir: dir}, nil
}

// Open returns the environment rooted at dir.
// Returns ErrNotVirtualEnv if dir does not look like one.
func Open(dir string) (*Env, error) {
	env := &Env{Dir: dir}
	if !env.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrNotVirtualEnv, dir)
	}
	return env, nil
}

// Exists returns true if the environment directory contains a pyvenv.cfg.
func (e *Env) Exists() bool {
	_, err := os.Stat(filepath.Join(e.Dir, cfgFile))
	return err == nil
}

// Python returns the path to the environment's interpreter.
func (e *Env) Python() string {
	return filepath.Join(e.Dir, "bin", "python")
}

// Pip returns the path to the environment's package installer.
func (e *Env) Pip() string {
	return filepath.Join(e.Dir, "bin", "pip")
}

// Install installs dependencies listed in the manifest file
// (pip install -r manifest). workDir is the directory the installer runs in,
// typically the repository root, so relative references inside the manifest
// resolve the way they would for a developer running pip by hand.
func (e *Env) Install(ctx context.Context, workDir, manifest string) error {
	if manifest == "" {
		return fmt.Errorf("manifest path is empty")
	}

	manifestPath := manifest
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(workDir, manifest)
	}
	if _, err := os.Stat(manifestPath); err != nil {
		return fmt.Errorf("manifest not found: %s: %w", manifestPath, err)
	}

	cmd := exec.CommandContext(ctx, e.Pip(), "install", "-r", manifest)
	cmd.Dir = workDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to install dependencies from %s: %w", manifest, err)
	}
	return nil
}
