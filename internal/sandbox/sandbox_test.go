package sandbox

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Quidge/workbench/internal/config"
	"github.com/Quidge/workbench/internal/container"
)

// fakeEngine records Build and Run calls.
type fakeEngine struct {
	builds   []container.BuildOptions
	runs     []container.RunOptions
	buildErr error
	exists   bool
}

func (f *fakeEngine) Name() string    { return "fake" }
func (f *fakeEngine) Available() bool { return true }

func (f *fakeEngine) Build(_ context.Context, opts container.BuildOptions) error {
	f.builds = append(f.builds, opts)
	return f.buildErr
}

func (f *fakeEngine) Run(_ context.Context, opts container.RunOptions) error {
	f.runs = append(f.runs, opts)
	return nil
}

func (f *fakeEngine) ImageExists(context.Context, string) (bool, error) {
	return f.exists, nil
}

func (f *fakeEngine) RemoveImage(context.Context, string) error { return nil }

func testConfig(engine container.Engine) *Config {
	return &Config{
		Engine: engine,
		Image: config.ImageConfig{
			Tag:     "workbench",
			Context: "/project",
			WorkDir: "/workspace",
		},
		GitConfig: "/home/user/.gitconfig",
		WorkDir:   "/project",
	}
}

func TestMounts(t *testing.T) {
	cfg := testConfig(nil)
	cfg.ExtraMounts = []container.Mount{{Source: "/data", Target: "/data", ReadOnly: true}}

	mounts := cfg.Mounts()
	if len(mounts) != 3 {
		t.Fatalf("len(mounts) = %d, want 3", len(mounts))
	}

	if mounts[0].Target != GitConfigTarget || mounts[0].ReadOnly {
		t.Errorf("gitconfig mount = %+v, want read-write at %s", mounts[0], GitConfigTarget)
	}
	if mounts[1].Source != "/project" || mounts[1].Target != "/workspace" || mounts[1].ReadOnly {
		t.Errorf("workdir mount = %+v, want read-write /project:/workspace", mounts[1])
	}
	if mounts[2].Source != "/data" || !mounts[2].ReadOnly {
		t.Errorf("extra mount = %+v, want read-only /data", mounts[2])
	}
}

func TestMountsWithSSHKeys(t *testing.T) {
	cfg := testConfig(nil)
	cfg.SSHKeys = "/home/user/.ssh"

	mounts := cfg.Mounts()
	if len(mounts) != 3 {
		t.Fatalf("len(mounts) = %d, want 3", len(mounts))
	}
	ssh := mounts[1]
	if ssh.Source != "/home/user/.ssh" || ssh.Target != SSHKeysTarget {
		t.Errorf("ssh mount = %+v, want %s at %s", ssh, "/home/user/.ssh", SSHKeysTarget)
	}
	if !ssh.ReadOnly {
		t.Error("ssh keys mounted read-write, want read-only")
	}
}

func TestMountsWithoutGitConfig(t *testing.T) {
	cfg := testConfig(nil)
	cfg.GitConfig = ""

	mounts := cfg.Mounts()
	if len(mounts) != 1 {
		t.Fatalf("len(mounts) = %d, want 1", len(mounts))
	}
	if mounts[0].Target != "/workspace" {
		t.Errorf("mount = %+v, want workdir mount only", mounts[0])
	}
}

func TestRun(t *testing.T) {
	engine := &fakeEngine{}
	cfg := testConfig(engine)

	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(engine.builds) != 1 {
		t.Fatalf("builds = %d, want 1", len(engine.builds))
	}
	if engine.builds[0].Tag != "workbench" || engine.builds[0].ContextDir != "/project" {
		t.Errorf("build opts = %+v", engine.builds[0])
	}

	if len(engine.runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(engine.runs))
	}
	run := engine.runs[0]
	if run.Image != "workbench" {
		t.Errorf("Image = %q, want %q", run.Image, "workbench")
	}
	if !run.Remove || !run.Interactive {
		t.Errorf("Remove = %v, Interactive = %v, want both true", run.Remove, run.Interactive)
	}
	if len(run.Command) != 1 || run.Command[0] != DefaultShell {
		t.Errorf("Command = %v, want [%s]", run.Command, DefaultShell)
	}
	if run.WorkDir != "/workspace" {
		t.Errorf("WorkDir = %q, want %q", run.WorkDir, "/workspace")
	}
	if len(run.Mounts) != 2 {
		t.Errorf("len(Mounts) = %d, want 2", len(run.Mounts))
	}
}

func TestRunBuildFailureAborts(t *testing.T) {
	engine := &fakeEngine{buildErr: errors.New("build exploded")}
	cfg := testConfig(engine)

	err := Run(context.Background(), cfg)
	if err == nil {
		t.Fatal("Run() succeeded despite build failure")
	}
	if len(engine.runs) != 0 {
		t.Errorf("runs = %d after failed build, want 0", len(engine.runs))
	}
}

func TestRunNoBuild(t *testing.T) {
	t.Run("existing image", func(t *testing.T) {
		engine := &fakeEngine{exists: true}
		cfg := testConfig(engine)
		cfg.NoBuild = true

		if err := Run(context.Background(), cfg); err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		if len(engine.builds) != 0 {
			t.Errorf("builds = %d with NoBuild, want 0", len(engine.builds))
		}
		if len(engine.runs) != 1 {
			t.Errorf("runs = %d, want 1", len(engine.runs))
		}
	})

	t.Run("missing image", func(t *testing.T) {
		engine := &fakeEngine{exists: false}
		cfg := testConfig(engine)
		cfg.NoBuild = true

		err := Run(context.Background(), cfg)
		if err == nil {
			t.Fatal("Run() succeeded for a missing image")
		}
		if !strings.Contains(err.Error(), "does not exist") {
			t.Errorf("error = %v, want mention of missing image", err)
		}
	})
}

func TestRunCustomShell(t *testing.T) {
	engine := &fakeEngine{}
	cfg := testConfig(engine)
	cfg.Shell = "zsh"

	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if engine.runs[0].Command[0] != "zsh" {
		t.Errorf("Command = %v, want [zsh]", engine.runs[0].Command)
	}
}

func TestRunValidation(t *testing.T) {
	t.Run("nil engine", func(t *testing.T) {
		if err := Run(context.Background(), testConfig(nil)); err == nil {
			t.Error("Run() with nil engine succeeded")
		}
	})

	t.Run("missing tag", func(t *testing.T) {
		cfg := testConfig(&fakeEngine{})
		cfg.Image.Tag = ""
		if err := Run(context.Background(), cfg); err == nil {
			t.Error("Run() without image tag succeeded")
		}
	})
}
