// ABOUTME: Setup command for configuring stash
// ABOUTME: Writes server, credentials, backend, and data directory to the config file

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/stash/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the remote API and storage",
	Long: `Configure stash with your article server and credentials.

Only the flags you pass are changed; existing settings are kept.

Examples:
  stash setup --server https://api.example.com --token TOKEN --user alice
  stash setup --backend charm
  stash setup --auto-sync 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if server, _ := cmd.Flags().GetString("server"); server != "" {
			cfg.Server = server
		}
		if token, _ := cmd.Flags().GetString("token"); token != "" {
			cfg.Token = token
		}
		if user, _ := cmd.Flags().GetString("user"); user != "" {
			cfg.UserID = user
		}
		if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
			if backend != "sqlite" && backend != "charm" {
				return fmt.Errorf("unknown backend %q (want sqlite or charm)", backend)
			}
			cfg.Backend = backend
		}
		if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
			cfg.DataDir = dataDir
		}
		if minutes, _ := cmd.Flags().GetInt("auto-sync"); minutes > 0 {
			cfg.AutoSyncMinutes = minutes
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		color.Green("Configuration saved to %s", config.GetConfigPath())
		if !cfg.IsConfigured() {
			color.Yellow("Remote API not fully configured yet (need --server, --token, and --user).")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().String("server", "", "remote article API base URL")
	setupCmd.Flags().String("token", "", "API bearer token")
	setupCmd.Flags().String("user", "", "user ID scoping local storage")
	setupCmd.Flags().String("backend", "", "storage backend: sqlite or charm")
	setupCmd.Flags().String("data-dir", "", "data directory (default: ~/.local/share/stash)")
	setupCmd.Flags().Int("auto-sync", 0, "background sync interval in minutes")
}
