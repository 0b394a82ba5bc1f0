package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Quidge/workbench/internal/state"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove a workbench",
	Long: `Remove a workbench: delete its clone directory and its record.

You will be prompted for confirmation unless --force is specified.
ID may be a unique prefix of the full workbench ID.`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)

	rmCmd.Flags().BoolP("force", "f", false, "remove without confirmation")
	rmCmd.Flags().Bool("keep-clone", false, "delete the record but keep the clone directory")
}

func runRm(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	keepClone, _ := cmd.Flags().GetBool("keep-clone")

	db, err := state.Open("")
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer db.Close()

	wb, err := resolveWorkbench(db, args[0])
	if err != nil {
		return err
	}

	if !force {
		fmt.Printf("Remove workbench %s and its clone at %s? [y/N] ", state.ShortID(wb.ID), wb.RepoPath)
		reader := bufio.NewReader(os.Stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if !keepClone && wb.RepoPath != "" {
		if err := os.RemoveAll(wb.RepoPath); err != nil {
			// Keep the record untouched so the leftover clone stays listed
			return fmt.Errorf("failed to remove clone directory: %w", err)
		}
	}

	if err := db.DeleteWorkbench(wb.ID); err != nil {
		return fmt.Errorf("failed to delete workbench record: %w", err)
	}

	fmt.Printf("Removed workbench %s\n", state.ShortID(wb.ID))
	return nil
}
