package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/Quidge/workbench/internal/state"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List workbenches",
	Long: `List all workbenches, optionally filtered by clone path.

By default, removed and failed workbenches are hidden. Use --all to show them.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("path", "", "filter by clone path")
	listCmd.Flags().Bool("all", false, "include removed/failed workbenches")
}

func runList(cmd *cobra.Command, args []string) error {
	filterPath, _ := cmd.Flags().GetString("path")
	showAll, _ := cmd.Flags().GetBool("all")

	// Open state database
	db, err := state.Open("")
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer db.Close()

	opts := state.ListOptions{
		RepoPath: filterPath,
	}

	// By default, exclude removed and failed workbenches
	if !showAll {
		opts.Statuses = []state.Status{
			state.StatusProvisioning,
			state.StatusReady,
		}
	}

	workbenches, err := db.ListWorkbenches(opts)
	if err != nil {
		return fmt.Errorf("failed to list workbenches: %w", err)
	}

	if len(workbenches) == 0 {
		fmt.Println("No workbenches found.")
		return nil
	}

	// Print table
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tBRANCH\tPATH")
	for _, wb := range workbenches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", state.ShortID(wb.ID), wb.Status, wb.BranchName, wb.RepoPath)
	}
	w.Flush()

	return nil
}
