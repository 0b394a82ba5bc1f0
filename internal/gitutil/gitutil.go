// Package gitutil provides utilities for git operations.
// It uses os/exec to call git commands rather than git libraries.
package gitutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"strings"
)

var (
	// ErrNotGitRepo is returned when the directory is not inside a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrDetachedHead is returned when the repository is in detached HEAD state.
	ErrDetachedHead = errors.New("repository is in detached HEAD state")

	// ErrNoRemote is returned when no remote URL is configured.
	ErrNoRemote = errors.New("no remote URL configured")
)

// CleanEnv returns the process environment stripped of GIT_* variables that
// could leak into spawned git commands (e.g. when running inside git hooks).
func CleanEnv() []string {
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "GIT_") {
			env = append(env, e)
		}
	}
	return env
}

// Clone clones the repository at url into dir.
// The destination directory must not already exist.
func Clone(ctx context.Context, url, dir string) error {
	if url == "" {
		return fmt.Errorf("repository URL is empty")
	}
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("destination already exists: %s", dir)
	}

	cmd := exec.CommandContext(ctx, "git", "clone", url, dir)
	cmd.Env = CleanEnv()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return nil
}

// CheckoutNewBranch creates a new branch in dir and switches to it.
func CheckoutNewBranch(ctx context.Context, dir, branch string) error {
	if err := ValidateBranchName(branch); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "git", "checkout", "-b", branch)
	cmd.Dir = dir
	cmd.Env = CleanEnv()
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w\noutput: %s", branch, err, output)
	}
	return nil
}

// Add stages a file in the repository at dir.
func Add(ctx context.Context, dir, file string) error {
	cmd := exec.CommandContext(ctx, "git", "add", "--", file)
	cmd.Dir = dir
	cmd.Env = CleanEnv()
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w\noutput: %s", file, err, output)
	}
	return nil
}

// Commit records the staged changes in dir with the given message.
func Commit(ctx context.Context, dir, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("commit message is empty")
	}

	cmd := exec.CommandContext(ctx, "git", "commit", "-m", message)
	cmd.Dir = dir
	cmd.Env = CleanEnv()
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to commit: %w\noutput: %s", err, output)
	}
	return nil
}

// RepoNameFromURL derives the clone directory name from a repository URL,
// mirroring git's own behavior: the last path segment with any .git suffix
// stripped. Handles both URL and scp-like (user@host:path) syntax.
func RepoNameFromURL(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if idx := strings.LastIndex(trimmed, ":"); idx != -1 && !strings.Contains(trimmed[idx:], "/") {
		trimmed = trimmed[idx+1:]
	}
	name := path.Base(trimmed)
	return strings.TrimSuffix(name, ".git")
}

// RepoRoot returns the root directory of the git repository containing dir.
// If dir is empty, the current working directory is used.
func RepoRoot(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = CleanEnv()

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", ErrNotGitRepo
		}
		return "", fmt.Errorf("failed to get repo root: %w", err)
	}

	return strings.TrimSpace(string(out)), nil
}

// RemoteURL returns the URL of the specified remote (typically "origin").
// If remoteName is empty, "origin" is used.
func RemoteURL(dir, remoteName string) (string, error) {
	if remoteName == "" {
		remoteName = "origin"
	}

	cmd := exec.Command("git", "remote", "get-url", remoteName)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = CleanEnv()

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", ErrNoRemote
		}
		return "", fmt.Errorf("failed to get remote URL: %w", err)
	}

	return strings.TrimSpace(string(out)), nil
}

// CurrentBranch returns the name of the current branch.
// Returns ErrDetachedHead if the repository is in detached HEAD state.
func CurrentBranch(dir string) (string, error) {
	cmd := exec.Command("git", "symbolic-ref", "--short", "HEAD")
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = CleanEnv()

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if IsDetachedHead(dir) {
				return "", ErrDetachedHead
			}
			return "", ErrNotGitRepo
		}
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}

	return strings.TrimSpace(string(out)), nil
}

// IsDetachedHead returns true if the repository is in detached HEAD state.
func IsDetachedHead(dir string) bool {
	cmd := exec.Command("git", "symbolic-ref", "-q", "HEAD")
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = CleanEnv()

	err := cmd.Run()
	// symbolic-ref returns non-zero exit code if HEAD is not a symbolic ref
	return err != nil
}

// IsInsideWorkTree returns true if dir is inside a git work tree.
func IsInsideWorkTree(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = CleanEnv()

	out, err := cmd.Output()
	if err != nil {
		return false
	}

	return strings.TrimSpace(string(out)) == "true"
}

// IsValidBranchName checks if a string is a valid git branch name.
// This is a simplified check covering the common refname rules.
func IsValidBranchName(name string) bool {
	if name == "" {
		return false
	}

	if strings.Contains(name, "..") {
		return false
	}
	if strings.Contains(name, "//") {
		return false
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	if strings.HasSuffix(name, ".lock") {
		return false
	}
	if strings.Contains(name, "@{") {
		return false
	}

	for _, c := range name {
		if c < 32 || c == 127 { // control characters
			return false
		}
		switch c {
		case ' ', '~', '^', ':', '?', '*', '[', '\\':
			return false
		}
	}

	return true
}

// ValidateBranchName returns an error if the name is not a valid git branch name.
func ValidateBranchName(name string) error {
	if name == "" {
		return fmt.Errorf("branch name is empty")
	}
	if !IsValidBranchName(name) {
		return fmt.Errorf("invalid branch name: %s", name)
	}
	return nil
}
