// Package protocol implements the command protocol spoken by automated
// test-generation sessions. A generator emits one command per message:
// WRITE_TEST_FILE stages a candidate test file in the working tree, COMMIT
// records an accepted file on the work branch. This package parses those
// messages and applies them to a clone.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Quidge/workbench/internal/gitutil"
)

// TestFilePrefix is the required file-name prefix for generated test files.
// It keeps generated tests distinguishable from hand-written ones.
const TestFilePrefix = "test_gemini_"

var (
	// ErrNoCommand is returned when a message contains no recognized command.
	ErrNoCommand = errors.New("no recognized command in message")

	// ErrMultipleCommands is returned when a single message contains both a
	// WRITE_TEST_FILE and a COMMIT command. Commands must be sent one at a
	// time.
	ErrMultipleCommands = errors.New("multiple commands in a single message")
)

// Command is a parsed protocol command.
type Command interface {
	command()
}

// WriteTestFile stages a test file in the working tree.
type WriteTestFile struct {
	// Path of the test file relative to the clone root.
	Path string

	// Content of the test file.
	Content string
}

func (*WriteTestFile) command() {}

// Commit records a previously written test file.
type Commit struct {
	// Path of the test file relative to the clone root.
	Path string

	// Message is the git commit message, subject and body.
	Message string
}

func (*Commit) command() {}

var (
	writePattern  = regexp.MustCompile(`(?s)WRITE_TEST_FILE:[ \t]*([^\n\s]+)\n(.+?)\nEND_TEST_FILE`)
	commitPattern = regexp.MustCompile(`(?s)COMMIT:[ \t]*([^\n]*_gemini_[^\n\s]+)\n(.+?)\nEND_COMMIT_MESSAGE`)
)

// ParseWriteTestFile extracts a WRITE_TEST_FILE command from a message.
// Returns nil if the message contains none.
func ParseWriteTestFile(message string) *WriteTestFile {
	m := writePattern.FindStringSubmatch(message)
	if m == nil {
		return nil
	}
	return &WriteTestFile{Path: m[1], Content: m[2]}
}

// ParseCommit extracts a COMMIT command from a message.
// Returns nil if the message contains none.
func ParseCommit(message string) *Commit {
	m := commitPattern.FindStringSubmatch(message)
	if m == nil {
		return nil
	}
	return &Commit{Path: m[1], Message: m[2]}
}

// Parse returns the single command contained in a message.
func Parse(message string) (Command, error) {
	write := ParseWriteTestFile(message)
	commit := ParseCommit(message)

	switch {
	case write != nil && commit != nil:
		return nil, ErrMultipleCommands
	case write != nil:
		if !strings.HasPrefix(path.Base(write.Path), TestFilePrefix) {
			return nil, fmt.Errorf("test file name must start with %s: %s", TestFilePrefix, write.Path)
		}
		return write, nil
	case commit != nil:
		return commit, nil
	default:
		return nil, ErrNoCommand
	}
}

// Apply writes the test file into the clone rooted at dir and returns the
// destination path. The parent directory must already exist; generators do
// not create new test directories.
func (w *WriteTestFile) Apply(dir string) (string, error) {
	dest := filepath.Join(dir, filepath.FromSlash(w.Path))
	if err := os.WriteFile(dest, []byte(w.Content), 0644); err != nil {
		return "", fmt.Errorf("failed to write test file: %w", err)
	}
	return dest, nil
}

// Apply stages the test file and commits it in the clone rooted at dir.
func (c *Commit) Apply(ctx context.Context, dir string) error {
	if err := gitutil.Add(ctx, dir, c.Path); err != nil {
		return err
	}
	return gitutil.Commit(ctx, dir, c.Message)
}

// TestModule converts a test file path into the module argument for the
// interpreter's unittest runner (slashes to dots, .py suffix stripped).
func TestModule(p string) string {
	return strings.ReplaceAll(strings.TrimSuffix(p, ".py"), "/", ".")
}
