package venv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeStub writes an executable shell script at path that appends its
// arguments to logFile and runs extra afterwards.
func writeStub(t *testing.T, path, logFile, extra string) {
	t.Helper()
	script := "#!/bin/sh\necho \"$@\" >> " + logFile + "\n" + extra + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write stub %s: %v", path, err)
	}
}

// fakeEnv builds a directory that looks like a virtual environment, with a
// stub pip that records its invocations.
func fakeEnv(t *testing.T, logFile string) *Env {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "venv")
	if err := os.MkdirAll(filepath.Join(dir, "bin"), 0755); err != nil {
		t.Fatalf("failed to create env dirs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pyvenv.cfg"), []byte("home = /usr/bin\n"), 0644); err != nil {
		t.Fatalf("failed to write pyvenv.cfg: %v", err)
	}
	writeStub(t, filepath.Join(dir, "bin", "pip"), logFile, "")
	return &Env{Dir: dir}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("invokes python -m venv", func(t *testing.T) {
		binDir := t.TempDir()
		logFile := filepath.Join(binDir, "calls.log")
		// Stub interpreter: record args and fabricate the environment layout.
		writeStub(t, filepath.Join(binDir, "python3"), logFile,
			`for last; do :; done; mkdir -p "$last/bin"; : > "$last/pyvenv.cfg"`)
		t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

		dir := filepath.Join(t.TempDir(), "venv")
		env, err := Create(ctx, dir, "")
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if !env.Exists() {
			t.Error("Exists() = false after Create()")
		}

		data, err := os.ReadFile(logFile)
		if err != nil {
			t.Fatalf("stub was not invoked: %v", err)
		}
		want := "-m venv " + dir
		if got := strings.TrimSpace(string(data)); got != want {
			t.Errorf("interpreter args = %q, want %q", got, want)
		}
	})

	t.Run("empty dir rejected", func(t *testing.T) {
		if _, err := Create(ctx, "", ""); err == nil {
			t.Error("Create(\"\") succeeded, want error")
		}
	})

	t.Run("missing interpreter reported", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "venv")
		if _, err := Create(ctx, dir, "no-such-python"); err == nil {
			t.Error("Create() with missing interpreter succeeded, want error")
		}
	})
}

func TestOpen(t *testing.T) {
	t.Run("existing environment", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "calls.log")
		env := fakeEnv(t, logFile)

		opened, err := Open(env.Dir)
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		if opened.Dir != env.Dir {
			t.Errorf("Open().Dir = %q, want %q", opened.Dir, env.Dir)
		}
	})

	t.Run("plain directory rejected", func(t *testing.T) {
		_, err := Open(t.TempDir())
		if !errors.Is(err, ErrNotVirtualEnv) {
			t.Errorf("Open() error = %v, want ErrNotVirtualEnv", err)
		}
	})
}

func TestInstall(t *testing.T) {
	ctx := context.Background()

	t.Run("runs pip install -r", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "calls.log")
		env := fakeEnv(t, logFile)

		workDir := t.TempDir()
		if err := os.WriteFile(filepath.Join(workDir, "requirements.txt"), []byte("pytest\n"), 0644); err != nil {
			t.Fatalf("failed to write manifest: %v", err)
		}

		if err := env.Install(ctx, workDir, "requirements.txt"); err != nil {
			t.Fatalf("Install() failed: %v", err)
		}

		data, err := os.ReadFile(logFile)
		if err != nil {
			t.Fatalf("pip stub was not invoked: %v", err)
		}
		if got := strings.TrimSpace(string(data)); got != "install -r requirements.txt" {
			t.Errorf("pip args = %q, want %q", got, "install -r requirements.txt")
		}
	})

	t.Run("missing manifest fails before invoking pip", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "calls.log")
		env := fakeEnv(t, logFile)

		err := env.Install(ctx, t.TempDir(), "requirements.txt")
		if err == nil {
			t.Fatal("Install() with missing manifest succeeded, want error")
		}
		if _, statErr := os.Stat(logFile); statErr == nil {
			t.Error("pip was invoked despite missing manifest")
		}
	})

	t.Run("empty manifest name rejected", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "calls.log")
		env := fakeEnv(t, logFile)
		if err := env.Install(ctx, t.TempDir(), ""); err == nil {
			t.Error("Install(\"\") succeeded, want error")
		}
	})
}

func TestPaths(t *testing.T) {
	env := &Env{Dir: "/work/venv"}
	if got := env.Python(); got != "/work/venv/bin/python" {
		t.Errorf("Python() = %q", got)
	}
	if got := env.Pip(); got != "/work/venv/bin/pip" {
		t.Errorf("Pip() = %q", got)
	}
}
