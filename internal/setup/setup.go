// Package setup executes the workbench provisioning workflow: clone the
// repository, create a virtual environment, install dependencies, switch to
// the work branch and install again, then run any project setup commands.
//
// Steps run strictly in order and the first failure aborts the workflow.
// There is no retry logic; the underlying tool's stderr is the diagnostic.
package setup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Quidge/workbench/internal/gitutil"
	"github.com/Quidge/workbench/internal/venv"
)

// EnvFile is the file written into the clone holding exported environment
// variables. Setup commands source it before running, and so can users.
const EnvFile = ".workbench-env"

// Config contains everything the workflow needs.
type Config struct {
	// RepoURL is the repository to clone.
	RepoURL string

	// TargetDir is the absolute path the repository is cloned to.
	TargetDir string

	// Branch is created and checked out after the first install.
	Branch string

	// Manifest is the dependency manifest file name, relative to the clone.
	Manifest string

	// Python is the interpreter used to create the virtual environment.
	// Empty means venv.DefaultPython.
	Python string

	// Environment variables written to the env file.
	Environment map[string]string

	// SetupCommands are extra commands run in the clone after provisioning.
	SetupCommands []string

	// NoInstall skips both dependency installs.
	NoInstall bool
}

// Result reports what the workflow produced.
type Result struct {
	// RepoPath is the path of the clone.
	RepoPath string

	// VenvPath is the path of the virtual environment inside the clone.
	VenvPath string
}

// Validate checks the config before any side effect happens.
func (c *Config) Validate() error {
	if c.RepoURL == "" {
		return fmt.Errorf("repository URL is required")
	}
	if c.TargetDir == "" {
		return fmt.Errorf("target directory is required")
	}
	if err := gitutil.ValidateBranchName(c.Branch); err != nil {
		return err
	}
	if !c.NoInstall && c.Manifest == "" {
		return fmt.Errorf("manifest file name is required")
	}
	if _, err := os.Stat(c.TargetDir); err == nil {
		return fmt.Errorf("target directory already exists: %s", c.TargetDir)
	}
	return nil
}

// Run executes the full workflow and returns the provisioned paths.
func Run(ctx context.Context, cfg *Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug("cloning repository", "url", cfg.RepoURL, "dir", cfg.TargetDir)
	if err := gitutil.Clone(ctx, cfg.RepoURL, cfg.TargetDir); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	venvDir := filepath.Join(cfg.TargetDir, venv.DefaultDirName)
	log.Debug("creating virtual environment", "dir", venvDir)
	env, err := venv.Create(ctx, venvDir, cfg.Python)
	if err != nil {
		return nil, err
	}

	if !cfg.NoInstall {
		log.Debug("installing dependencies", "manifest", cfg.Manifest)
		if err := env.Install(ctx, cfg.TargetDir, cfg.Manifest); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Debug("creating branch", "branch", cfg.Branch)
	if err := gitutil.CheckoutNewBranch(ctx, cfg.TargetDir, cfg.Branch); err != nil {
		return nil, err
	}

	// Install again after the switch so the environment matches the
	// manifest as it exists on the new branch.
	if !cfg.NoInstall {
		log.Debug("reinstalling dependencies", "manifest", cfg.Manifest)
		if err := env.Install(ctx, cfg.TargetDir, cfg.Manifest); err != nil {
			return nil, err
		}
	}

	if err := writeEnvironment(cfg.TargetDir, cfg.Environment); err != nil {
		return nil, fmt.Errorf("failed to write environment: %w", err)
	}

	if err := runCommands(ctx, cfg.TargetDir, cfg.SetupCommands); err != nil {
		return nil, fmt.Errorf("failed to run setup commands: %w", err)
	}

	return &Result{
		RepoPath: cfg.TargetDir,
		VenvPath: venvDir,
	}, nil
}

// writeEnvironment writes environment variables to the env file in a format
// that can be sourced by a shell.
func writeEnvironment(dir string, env map[string]string) error {
	if len(env) == 0 {
		return nil
	}

	f, err := os.Create(filepath.Join(dir, EnvFile))
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString("# Workbench environment variables\n# This file is auto-generated. Do not edit manually.\n\n"); err != nil {
		return err
	}

	// Sort keys for deterministic output
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		// Escape single quotes in value for shell safety
		escaped := strings.ReplaceAll(env[key], "'", "'\\''")
		if _, err := fmt.Fprintf(f, "export %s='%s'\n", key, escaped); err != nil {
			return err
		}
	}

	return nil
}

// runCommands executes setup commands in the clone directory, sourcing the
// env file first when present.
func runCommands(ctx context.Context, dir string, commands []string) error {
	if len(commands) == 0 {
		return nil
	}

	shell := shellPath()
	envPath := filepath.Join(dir, EnvFile)

	for i, command := range commands {
		if err := ctx.Err(); err != nil {
			return err
		}

		fullCmd := command
		if _, err := os.Stat(envPath); err == nil {
			fullCmd = fmt.Sprintf(". %q && %s", envPath, command)
		}

		log.Debug("running setup command", "command", command)
		cmd := exec.CommandContext(ctx, shell, "-c", fullCmd)
		cmd.Dir = dir
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("command %d failed: %s: %w", i+1, command, err)
		}
	}

	return nil
}

// shellPath returns $SHELL, falling back to /bin/sh.
func shellPath() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}
