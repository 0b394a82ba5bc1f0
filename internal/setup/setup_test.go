package setup

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Quidge/workbench/internal/gitutil"
	"github.com/Quidge/workbench/internal/venv"
)

// setupSourceRepo creates a git repository with a manifest to clone from.
func setupSourceRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}

	run("init")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test User")

	manifest := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(manifest, []byte("pytest\n"), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	run("add", ".")
	run("commit", "-m", "Initial commit")

	return dir
}

// stubPython puts a fake python3 on PATH that fabricates a venv layout,
// including a pip stub that records its invocations to pipLog.
func stubPython(t *testing.T, pipLog string) {
	t.Helper()

	binDir := t.TempDir()
	script := `#!/bin/sh
for last; do :; done
mkdir -p "$last/bin"
: > "$last/pyvenv.cfg"
printf '#!/bin/sh\necho "$@" >> ` + pipLog + `\n' > "$last/bin/pip"
chmod +x "$last/bin/pip"
`
	if err := os.WriteFile(filepath.Join(binDir, "python3"), []byte(script), 0755); err != nil {
		t.Fatalf("failed to write python stub: %v", err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestRun(t *testing.T) {
	source := setupSourceRepo(t)
	pipLog := filepath.Join(t.TempDir(), "pip.log")
	stubPython(t, pipLog)

	target := filepath.Join(t.TempDir(), "algorithms")
	marker := filepath.Join(target, "setup-ran")

	result, err := Run(context.Background(), &Config{
		RepoURL:       source,
		TargetDir:     target,
		Branch:        "generated-tests",
		Manifest:      "requirements.txt",
		Environment:   map[string]string{"WB_FLAG": "on"},
		SetupCommands: []string{"touch setup-ran"},
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	t.Run("clone created", func(t *testing.T) {
		if result.RepoPath != target {
			t.Errorf("RepoPath = %q, want %q", result.RepoPath, target)
		}
		if !gitutil.IsInsideWorkTree(target) {
			t.Error("target is not a git work tree")
		}
	})

	t.Run("branch checked out", func(t *testing.T) {
		branch, err := gitutil.CurrentBranch(target)
		if err != nil {
			t.Fatalf("CurrentBranch() failed: %v", err)
		}
		if branch != "generated-tests" {
			t.Errorf("CurrentBranch() = %q, want %q", branch, "generated-tests")
		}
	})

	t.Run("virtual environment created", func(t *testing.T) {
		env, err := venv.Open(result.VenvPath)
		if err != nil {
			t.Fatalf("venv.Open() failed: %v", err)
		}
		if env.Dir != filepath.Join(target, venv.DefaultDirName) {
			t.Errorf("VenvPath = %q", env.Dir)
		}
	})

	t.Run("dependencies installed twice", func(t *testing.T) {
		data, err := os.ReadFile(pipLog)
		if err != nil {
			t.Fatalf("pip stub was not invoked: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 2 {
			t.Fatalf("pip invoked %d times, want 2:\n%s", len(lines), data)
		}
		for _, line := range lines {
			if line != "install -r requirements.txt" {
				t.Errorf("pip args = %q, want %q", line, "install -r requirements.txt")
			}
		}
	})

	t.Run("environment file written", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(target, EnvFile))
		if err != nil {
			t.Fatalf("env file missing: %v", err)
		}
		if !strings.Contains(string(data), "export WB_FLAG='on'") {
			t.Errorf("env file missing export, got:\n%s", data)
		}
	})

	t.Run("setup command executed", func(t *testing.T) {
		if _, err := os.Stat(marker); err != nil {
			t.Errorf("setup command did not run: %v", err)
		}
	})
}

func TestRunExistingTarget(t *testing.T) {
	source := setupSourceRepo(t)

	_, err := Run(context.Background(), &Config{
		RepoURL:   source,
		TargetDir: t.TempDir(), // already exists
		Branch:    "generated-tests",
		Manifest:  "requirements.txt",
	})
	if err == nil {
		t.Fatal("Run() into existing directory succeeded, want error")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("error = %v, want mention of existing directory", err)
	}
}

func TestRunNoInstall(t *testing.T) {
	source := setupSourceRepo(t)
	pipLog := filepath.Join(t.TempDir(), "pip.log")
	stubPython(t, pipLog)

	target := filepath.Join(t.TempDir(), "clone")
	_, err := Run(context.Background(), &Config{
		RepoURL:   source,
		TargetDir: target,
		Branch:    "generated-tests",
		NoInstall: true,
	})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if _, err := os.Stat(pipLog); err == nil {
		t.Error("pip was invoked despite NoInstall")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		RepoURL:   "https://example.com/repo.git",
		TargetDir: filepath.Join(os.TempDir(), "does-not-exist-workbench-test"),
		Branch:    "generated-tests",
		Manifest:  "requirements.txt",
	}

	t.Run("valid", func(t *testing.T) {
		cfg := valid
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("missing URL", func(t *testing.T) {
		cfg := valid
		cfg.RepoURL = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() without URL succeeded")
		}
	})

	t.Run("missing target", func(t *testing.T) {
		cfg := valid
		cfg.TargetDir = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() without target succeeded")
		}
	})

	t.Run("bad branch", func(t *testing.T) {
		cfg := valid
		cfg.Branch = "bad..branch"
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() with bad branch succeeded")
		}
	})

	t.Run("missing manifest", func(t *testing.T) {
		cfg := valid
		cfg.Manifest = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() without manifest succeeded")
		}
	})

	t.Run("manifest not needed with NoInstall", func(t *testing.T) {
		cfg := valid
		cfg.Manifest = ""
		cfg.NoInstall = true
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})
}

func TestWriteEnvironment(t *testing.T) {
	t.Run("no variables writes nothing", func(t *testing.T) {
		dir := t.TempDir()
		if err := writeEnvironment(dir, nil); err != nil {
			t.Fatalf("writeEnvironment() failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, EnvFile)); err == nil {
			t.Error("env file created for empty environment")
		}
	})

	t.Run("quotes escaped", func(t *testing.T) {
		dir := t.TempDir()
		if err := writeEnvironment(dir, map[string]string{"V": "it's"}); err != nil {
			t.Fatalf("writeEnvironment() failed: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dir, EnvFile))
		if err != nil {
			t.Fatalf("failed to read env file: %v", err)
		}
		if !strings.Contains(string(data), `export V='it'\''s'`) {
			t.Errorf("unexpected env file contents:\n%s", data)
		}
	})
}
