// Package pathutil provides small helpers for path expansion and checks.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde expands a leading ~ to the user's home directory.
// Paths that do not start with ~ are returned unchanged.
func ExpandTilde(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path == "~" {
		return os.UserHomeDir()
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}

	return path, nil
}

// ResolveRelative resolves path against base. Absolute paths are returned
// cleaned but otherwise unchanged.
func ResolveRelative(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(base, path))
}

// ValidateAbsolute returns an error if path is empty or not absolute.
func ValidateAbsolute(path string) error {
	if path == "" {
		return fmt.Errorf("path is empty")
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path is not absolute: %s", path)
	}
	return nil
}

// Exists returns true if the path exists on the filesystem.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ExistsAndIsDir returns true if the path exists and is a directory.
func ExistsAndIsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ExistsAndIsFile returns true if the path exists and is a regular file.
func ExistsAndIsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
