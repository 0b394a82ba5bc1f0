package container

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// ExecCommandFunc creates the exec.Cmd used to invoke the engine binary.
// Tests inject a fake to capture arguments without a real engine installed.
type ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

// CLIEngine implements Engine by shelling out to an engine binary.
// Docker and podman share this implementation; they only differ in the
// binary invoked.
type CLIEngine struct {
	binary      string
	execCommand ExecCommandFunc
}

// NewCLIEngine returns an engine backed by the given binary name.
func NewCLIEngine(binary string) *CLIEngine {
	return &CLIEngine{
		binary:      binary,
		execCommand: exec.CommandContext,
	}
}

// SetExecCommand overrides command creation. Intended for tests.
func (e *CLIEngine) SetExecCommand(fn ExecCommandFunc) {
	e.execCommand = fn
}

// Name returns the engine binary name.
func (e *CLIEngine) Name() string {
	return e.binary
}

// Available reports whether the engine binary is on PATH.
func (e *CLIEngine) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

// Build builds an image from a build context.
func (e *CLIEngine) Build(ctx context.Context, opts BuildOptions) error {
	if opts.Tag == "" {
		return fmt.Errorf("image tag is required")
	}
	if opts.ContextDir == "" {
		return fmt.Errorf("build context directory is required")
	}

	args := BuildArgs(opts)
	log.Debug("building image", "cmd", String(e.binary, args))
	cmd := e.execCommand(ctx, e.binary, args...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s build failed for %s: %w", e.binary, opts.Tag, err)
	}
	return nil
}

// Run runs a container and blocks until it exits.
func (e *CLIEngine) Run(ctx context.Context, opts RunOptions) error {
	if opts.Image == "" {
		return fmt.Errorf("image is required")
	}

	args := RunArgs(opts)
	log.Debug("running container", "cmd", String(e.binary, args))
	cmd := e.execCommand(ctx, e.binary, args...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s run failed for %s: %w", e.binary, opts.Image, err)
	}
	return nil
}

// ImageExists reports whether an image with the given tag exists locally.
func (e *CLIEngine) ImageExists(ctx context.Context, tag string) (bool, error) {
	cmd := e.execCommand(ctx, e.binary, "image", "inspect", tag)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect image %s: %w", tag, err)
	}
	return true, nil
}

// RemoveImage removes a local image.
func (e *CLIEngine) RemoveImage(ctx context.Context, tag string) error {
	cmd := e.execCommand(ctx, e.binary, "rmi", tag)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to remove image %s: %w\noutput: %s", tag, err, output)
	}
	return nil
}

// BuildArgs returns the CLI arguments for a build invocation.
func BuildArgs(opts BuildOptions) []string {
	args := []string{"build", "-t", opts.Tag}
	if opts.Dockerfile != "" {
		args = append(args, "-f", opts.Dockerfile)
	}
	return append(args, opts.ContextDir)
}

// RunArgs returns the CLI arguments for a run invocation.
// Env flags are emitted in sorted key order for deterministic commands.
func RunArgs(opts RunOptions) []string {
	args := []string{"run"}

	if opts.Remove {
		args = append(args, "--rm")
	}
	if opts.Interactive {
		args = append(args, "-it")
	}
	if opts.WorkDir != "" {
		args = append(args, "-w", opts.WorkDir)
	}

	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+opts.Env[k])
	}

	for _, m := range opts.Mounts {
		args = append(args, "-v", m.Spec())
	}

	args = append(args, opts.Image)
	return append(args, opts.Command...)
}

// String renders the args the way they would appear on a command line.
// Used in verbose logging.
func String(binary string, args []string) string {
	return binary + " " + strings.Join(args, " ")
}
