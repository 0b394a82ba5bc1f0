package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to get home dir: %v", err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty path", path: "", want: ""},
		{name: "just tilde", path: "~", want: home},
		{name: "tilde with subpath", path: "~/projects/demo", want: filepath.Join(home, "projects/demo")},
		{name: "absolute path unchanged", path: "/usr/local/bin", want: "/usr/local/bin"},
		{name: "relative path unchanged", path: "some/path", want: "some/path"},
		{name: "tilde in middle unchanged", path: "/opt/~user/data", want: "/opt/~user/data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandTilde(tt.path)
			if err != nil {
				t.Fatalf("ExpandTilde(%q) failed: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("ExpandTilde(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestResolveRelative(t *testing.T) {
	tests := []struct {
		name string
		base string
		path string
		want string
	}{
		{name: "relative joined with base", base: "/work", path: "sub/dir", want: "/work/sub/dir"},
		{name: "absolute unchanged", base: "/work", path: "/etc/hosts", want: "/etc/hosts"},
		{name: "dot segments cleaned", base: "/work", path: "./a/../b", want: "/work/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRelative(tt.base, tt.path); got != tt.want {
				t.Errorf("ResolveRelative(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
			}
		})
	}
}

func TestValidateAbsolute(t *testing.T) {
	if err := ValidateAbsolute("/abs/path"); err != nil {
		t.Errorf("ValidateAbsolute(/abs/path) = %v, want nil", err)
	}
	if err := ValidateAbsolute("rel/path"); err == nil {
		t.Error("ValidateAbsolute(rel/path) = nil, want error")
	}
	if err := ValidateAbsolute(""); err == nil {
		t.Error("ValidateAbsolute(\"\") = nil, want error")
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if !Exists(dir) || !Exists(file) {
		t.Error("Exists() = false for existing paths")
	}
	if Exists(filepath.Join(dir, "missing")) {
		t.Error("Exists() = true for missing path")
	}
	if !ExistsAndIsDir(dir) || ExistsAndIsDir(file) {
		t.Error("ExistsAndIsDir() misclassified path")
	}
	if !ExistsAndIsFile(file) || ExistsAndIsFile(dir) {
		t.Error("ExistsAndIsFile() misclassified path")
	}
}
