// Package sandbox runs the container workflow: build the sandbox image and
// open an interactive session with the host's git identity and working
// directory mounted in. The container is removed when the session ends.
package sandbox

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/Quidge/workbench/internal/config"
	"github.com/Quidge/workbench/internal/container"
)

// GitConfigTarget is where the host git configuration is mounted inside the
// container.
const GitConfigTarget = "/root/.gitconfig"

// SSHKeysTarget is where the host SSH keys are mounted inside the container.
const SSHKeysTarget = "/root/.ssh"

// DefaultShell is the command run for the interactive session.
const DefaultShell = "bash"

// Config contains everything a sandbox session needs.
type Config struct {
	// Engine is the container engine to use.
	Engine container.Engine

	// Image describes the image to build and run.
	Image config.ImageConfig

	// GitConfig is the host path of the git configuration file.
	// Empty means no git config mount.
	GitConfig string

	// SSHKeys is the host directory holding SSH keys, mounted read-only.
	// Empty means no SSH key mount.
	SSHKeys string

	// WorkDir is the host directory mounted at the image workdir.
	WorkDir string

	// ExtraMounts are additional mounts from project configuration.
	ExtraMounts []container.Mount

	// Env contains environment variables for the session.
	Env map[string]string

	// NoBuild skips the image build and runs the existing image.
	NoBuild bool

	// Shell overrides the command run in the container.
	Shell string
}

// Mounts returns the bind mounts for the session: the git configuration and
// the working directory read-write, SSH keys read-only, followed by any
// extra mounts.
func (c *Config) Mounts() []container.Mount {
	var mounts []container.Mount
	if c.GitConfig != "" {
		mounts = append(mounts, container.Mount{
			Source: c.GitConfig,
			Target: GitConfigTarget,
		})
	}
	if c.SSHKeys != "" {
		mounts = append(mounts, container.Mount{
			Source:   c.SSHKeys,
			Target:   SSHKeysTarget,
			ReadOnly: true,
		})
	}
	if c.WorkDir != "" {
		mounts = append(mounts, container.Mount{
			Source: c.WorkDir,
			Target: c.Image.WorkDir,
		})
	}
	return append(mounts, c.ExtraMounts...)
}

// Run builds the image (unless NoBuild) and starts the interactive session,
// blocking until the shell exits. A failed build aborts before the run step.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.Engine == nil {
		return fmt.Errorf("container engine is required")
	}
	if cfg.Image.Tag == "" {
		return fmt.Errorf("image tag is required")
	}

	if cfg.NoBuild {
		exists, err := cfg.Engine.ImageExists(ctx, cfg.Image.Tag)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("image %s does not exist (remove --no-build to build it)", cfg.Image.Tag)
		}
	} else {
		log.Debug("building sandbox image", "tag", cfg.Image.Tag, "context", cfg.Image.Context)
		err := cfg.Engine.Build(ctx, container.BuildOptions{
			ContextDir: cfg.Image.Context,
			Dockerfile: cfg.Image.Dockerfile,
			Tag:        cfg.Image.Tag,
			Stdout:     os.Stdout,
			Stderr:     os.Stderr,
		})
		if err != nil {
			return err
		}
	}

	shell := cfg.Shell
	if shell == "" {
		shell = DefaultShell
	}

	log.Debug("starting sandbox session", "image", cfg.Image.Tag, "shell", shell)
	return cfg.Engine.Run(ctx, container.RunOptions{
		Image:       cfg.Image.Tag,
		Command:     []string{shell},
		WorkDir:     cfg.Image.WorkDir,
		Env:         cfg.Env,
		Mounts:      cfg.Mounts(),
		Remove:      true,
		Interactive: true,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	})
}
