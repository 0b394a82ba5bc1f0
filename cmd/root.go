package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	Version = "dev"

	// Global flags
	engineFlag string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "workbench",
	Short: "Provision disposable development workbenches",
	Long: `Workbench provisions disposable development environments for working on
a repository: a fresh clone with a Python virtual environment and a work
branch, or a containerized sandbox with your git identity and working
directory mounted in.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&engineFlag, "engine", "", "override container engine (docker, podman)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
