package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Quidge/workbench/internal/config"
	"github.com/Quidge/workbench/internal/container"
	"github.com/Quidge/workbench/internal/pathutil"
	"github.com/Quidge/workbench/internal/sandbox"
	"github.com/spf13/cobra"
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Open an interactive container sandbox",
	Long: `Build the sandbox image and open an interactive shell in it.

The host git configuration and the current working directory are mounted
read-write inside the container, so git identity and edits carry over.
The container is removed when the shell exits.`,
	Args: cobra.NoArgs,
	RunE: runSandbox,
}

var (
	tagFlag     string
	contextFlag string
	shellFlag   string
	noBuildFlag bool
)

func init() {
	rootCmd.AddCommand(sandboxCmd)

	sandboxCmd.Flags().StringVar(&tagFlag, "tag", "", "image tag to build and run")
	sandboxCmd.Flags().StringVar(&contextFlag, "context", "", "image build context directory")
	sandboxCmd.Flags().StringVar(&shellFlag, "shell", "", "shell to run in the container (default: bash)")
	sandboxCmd.Flags().BoolVar(&noBuildFlag, "no-build", false, "run the existing image without rebuilding")
}

func runSandbox(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	merged, err := config.LoadFromCwd(config.FlagOverrides{
		Engine:  engineFlag,
		Tag:     tagFlag,
		Context: contextFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	engine, err := container.Get(merged.Engine)
	if err != nil {
		return err
	}
	if !engine.Available() {
		return fmt.Errorf("container engine %s not found on PATH", engine.Name())
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	// Mount credentials only when the host paths exist
	gitConfig := merged.Credentials.GitConfig
	if gitConfig != "" && !pathutil.ExistsAndIsFile(gitConfig) {
		gitConfig = ""
	}
	sshKeys := merged.Credentials.SSHKeys
	if sshKeys != "" && !pathutil.ExistsAndIsDir(sshKeys) {
		sshKeys = ""
	}

	return sandbox.Run(ctx, &sandbox.Config{
		Engine:      engine,
		Image:       merged.Image,
		GitConfig:   gitConfig,
		SSHKeys:     sshKeys,
		WorkDir:     cwd,
		ExtraMounts: merged.Mounts,
		Env:         merged.Env,
		NoBuild:     noBuildFlag,
		Shell:       shellFlag,
	})
}
