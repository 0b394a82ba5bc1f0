package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Quidge/workbench/internal/gitutil"
	"github.com/Quidge/workbench/internal/state"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status ID",
	Short: "Show detailed workbench status",
	Long: `Show detailed status information for a workbench.

Displays ID, status, repository URL, clone path, branch, manifest,
virtual environment, image tag, and creation time. ID may be a unique
prefix of the full workbench ID.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	db, err := state.Open("")
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer db.Close()

	wb, err := resolveWorkbench(db, args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", wb.ID)
	fmt.Fprintf(w, "Status:\t%s\n", wb.Status)
	fmt.Fprintf(w, "Repository:\t%s\n", wb.RepoURL)
	fmt.Fprintf(w, "Path:\t%s\n", wb.RepoPath)
	// The clone's configured remote can drift from the recorded URL
	if remote, err := gitutil.RemoteURL(wb.RepoPath, ""); err == nil {
		fmt.Fprintf(w, "Remote:\t%s\n", remote)
	}
	fmt.Fprintf(w, "Branch:\t%s\n", wb.BranchName)
	fmt.Fprintf(w, "Manifest:\t%s\n", wb.Manifest)
	if wb.VenvPath != "" {
		fmt.Fprintf(w, "Venv:\t%s\n", wb.VenvPath)
	}
	if wb.ImageTag != "" {
		fmt.Fprintf(w, "Image:\t%s\n", wb.ImageTag)
	}
	fmt.Fprintf(w, "Created:\t%s\n", wb.CreatedAt.Local().Format(time.RFC1123))
	w.Flush()

	return nil
}

// resolveWorkbench looks up a workbench by ID prefix, turning an ambiguous
// prefix into a message listing the candidates.
func resolveWorkbench(db *state.DB, prefix string) (*state.Workbench, error) {
	wb, err := db.GetWorkbenchByPrefix(prefix)
	if err == nil {
		return wb, nil
	}

	var ambErr *state.AmbiguousPrefixError
	if errors.As(err, &ambErr) {
		msg := fmt.Sprintf("ID prefix '%s' is ambiguous, matches:\n", prefix)
		for _, m := range ambErr.Matches {
			msg += fmt.Sprintf("  %s (%s)\n", state.ShortID(m.ID), m.Status)
		}
		return nil, errors.New(msg)
	}
	if errors.Is(err, state.ErrWorkbenchNotFound) {
		return nil, fmt.Errorf("no workbench matches '%s'", prefix)
	}
	return nil, err
}
