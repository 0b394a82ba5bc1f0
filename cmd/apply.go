package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/Quidge/workbench/internal/protocol"
	"github.com/Quidge/workbench/internal/state"
	"github.com/Quidge/workbench/internal/venv"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply ID FILE",
	Short: "Apply a test-generation message to a workbench",
	Long: `Apply one message from a test-generation session to a workbench clone.

The message file contains a single command: WRITE_TEST_FILE writes a
candidate test file into the clone and runs it with the workbench's own
interpreter, COMMIT stages and commits a previously written file on the
work branch. ID may be a unique prefix of the full workbench ID.`,
	Args: cobra.ExactArgs(2),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, err := state.Open("")
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer db.Close()

	wb, err := resolveWorkbench(db, args[0])
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read message file: %w", err)
	}

	command, err := protocol.Parse(string(data))
	if err != nil {
		return err
	}

	switch c := command.(type) {
	case *protocol.WriteTestFile:
		dest, err := c.Apply(wb.RepoPath)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", dest)
		return runTestFile(ctx, wb, c.Path)
	case *protocol.Commit:
		if err := c.Apply(ctx, wb.RepoPath); err != nil {
			return err
		}
		fmt.Printf("Committed %s\n", c.Path)
		return nil
	default:
		return fmt.Errorf("unsupported command %T", command)
	}
}

// runTestFile executes a written test file with the workbench interpreter
// and reports the run status. Skipped when the workbench has no virtual
// environment.
func runTestFile(ctx context.Context, wb *state.Workbench, path string) error {
	if wb.VenvPath == "" {
		return nil
	}
	env, err := venv.Open(wb.VenvPath)
	if err != nil {
		return nil
	}

	run := exec.CommandContext(ctx, env.Python(), "-m", "unittest", protocol.TestModule(path))
	run.Dir = wb.RepoPath
	output, err := run.CombinedOutput()
	if err != nil {
		fmt.Println("TEST_RUN_STATUS: FAILED")
		fmt.Printf("FAILURE_MESSAGE: %s\n", output)
		return nil
	}
	fmt.Println("TEST_RUN_STATUS: OK")
	return nil
}
