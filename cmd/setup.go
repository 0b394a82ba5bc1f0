package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Quidge/workbench/internal/config"
	"github.com/Quidge/workbench/internal/gitutil"
	"github.com/Quidge/workbench/internal/setup"
	"github.com/Quidge/workbench/internal/state"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provision a new workbench",
	Long: `Provision a new workbench: clone the repository, create a virtual
environment, install dependencies, create the work branch, and install
dependencies again so the environment matches the branch.

Defaults come from .workbench.yaml and the global configuration; flags
override both. The workbench ID is printed on success for scripting use.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

var (
	urlFlag       string
	branchFlag    string
	dirFlag       string
	manifestFlag  string
	pythonFlag    string
	noInstallFlag bool
	noSetupFlag   bool
)

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().StringVar(&urlFlag, "url", "", "repository URL to clone")
	setupCmd.Flags().StringVar(&branchFlag, "branch", "", "branch to create after cloning")
	setupCmd.Flags().StringVar(&dirFlag, "dir", "", "target directory (default: repository name in cwd)")
	setupCmd.Flags().StringVar(&manifestFlag, "manifest", "", "dependency manifest file name")
	setupCmd.Flags().StringVar(&pythonFlag, "python", "", "python interpreter for the virtual environment")
	setupCmd.Flags().BoolVar(&noInstallFlag, "no-install", false, "skip dependency installation")
	setupCmd.Flags().BoolVar(&noSetupFlag, "no-setup", false, "skip setup commands from project config")
}

func runSetup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	merged, err := config.LoadFromCwd(config.FlagOverrides{
		Engine:   engineFlag,
		RepoURL:  urlFlag,
		Branch:   branchFlag,
		Manifest: manifestFlag,
		Python:   pythonFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve the target directory: --dir, or the repository name under cwd
	targetDir := dirFlag
	if targetDir == "" {
		name := gitutil.RepoNameFromURL(merged.RepoURL)
		if name == "" {
			return fmt.Errorf("cannot derive directory from URL %q, use --dir", merged.RepoURL)
		}
		targetDir = name
	}
	targetDir, err = filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("failed to resolve target directory: %w", err)
	}

	setupCfg := &setup.Config{
		RepoURL:     merged.RepoURL,
		TargetDir:   targetDir,
		Branch:      merged.Branch,
		Manifest:    merged.Manifest,
		Python:      merged.Python,
		Environment: merged.Env,
		NoInstall:   noInstallFlag,
	}
	if !noSetupFlag {
		setupCfg.SetupCommands = merged.Setup
	}

	// Validate before touching the state database
	if err := setupCfg.Validate(); err != nil {
		return err
	}

	// Generate workbench ID
	wbID, err := state.GenerateID()
	if err != nil {
		return fmt.Errorf("failed to generate workbench ID: %w", err)
	}

	// Open state database
	db, err := state.Open("")
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer db.Close()

	// Create workbench record with provisioning status
	wb := &state.Workbench{
		ID:         wbID,
		RepoURL:    merged.RepoURL,
		RepoPath:   targetDir,
		BranchName: merged.Branch,
		Manifest:   merged.Manifest,
		ImageTag:   merged.Image.Tag,
		CreatedAt:  time.Now(),
		Status:     state.StatusProvisioning,
	}
	if err := db.CreateWorkbench(wb); err != nil {
		return fmt.Errorf("failed to create workbench record: %w", err)
	}

	result, err := setup.Run(ctx, setupCfg)
	if err != nil {
		// Mark workbench as failed
		wb.Status = state.StatusFailed
		_ = db.UpdateWorkbench(wb)
		return fmt.Errorf("setup failed: %w", err)
	}

	wb.VenvPath = result.VenvPath
	wb.Status = state.StatusReady
	if err := db.UpdateWorkbench(wb); err != nil {
		return fmt.Errorf("failed to update workbench record: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Workbench ready at %s (branch %s)\n", result.RepoPath, merged.Branch)
	fmt.Fprintf(os.Stderr, "Activate with: . %s/bin/activate\n", result.VenvPath)
	fmt.Println(wbID)
	return nil
}
