package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/Quidge/workbench/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify global configuration",
	Long: `View or modify the global workbench configuration.

Subcommands:
  show   Print current configuration
  edit   Open configuration in $EDITOR
  set    Set a specific configuration key`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadGlobalConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		os.Stdout.Write(data)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			return fmt.Errorf("$EDITOR is not set")
		}

		path, err := config.GlobalConfigPath()
		if err != nil {
			return err
		}

		// Seed the file with the template so there is something to edit
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := config.EnsureGlobalConfigDir(); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(config.GlobalConfigTemplate), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
		}

		ed := exec.Command(editor, path)
		ed.Stdin = os.Stdin
		ed.Stdout = os.Stdout
		ed.Stderr = os.Stderr
		return ed.Run()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration key",
	Long: `Set a specific configuration key using dot notation.

Example:
  workbench config set default_engine podman`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		cfg, err := config.LoadGlobalConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		switch key {
		case "default_engine":
			cfg.DefaultEngine = value
		case "credentials.git_config":
			cfg.Credentials.GitConfig = value
		case "credentials.ssh_keys":
			cfg.Credentials.SSHKeys = value
		default:
			return fmt.Errorf("unknown configuration key: %s", key)
		}

		if err := config.WriteGlobalConfig(cfg); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configSetCmd)
}
