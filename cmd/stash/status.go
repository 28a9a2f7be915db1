// ABOUTME: Status command showing configuration and local collection stats
// ABOUTME: Reports backend, server, and read/unread counts from the local store

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/stash/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		faint := color.New(color.Faint).SprintFunc()

		if cfg.IsConfigured() {
			color.Green("Configured")
			fmt.Printf("  %s %s\n", faint("Server:"), cfg.Server)
			fmt.Printf("  %s %s\n", faint("User:"), cfg.UserID)
		} else {
			color.Yellow("Not configured")
			fmt.Println("\nRun 'stash setup' with --server, --token, and --user.")
		}

		fmt.Printf("  %s %s\n", faint("Backend:"), cfg.GetBackend())
		fmt.Printf("  %s %s\n", faint("Data dir:"), cfg.GetDataDir())
		fmt.Printf("  %s %s\n", faint("Config:"), config.GetConfigPath())
		if cfg.AutoSyncMinutes > 0 {
			fmt.Printf("  %s every %d minutes\n", faint("Auto-sync:"), cfg.AutoSyncMinutes)
		}

		articles, ok, err := articleStore.Load(cmd.Context(), cfg.UserID)
		if err != nil {
			return fmt.Errorf("failed to load articles: %w", err)
		}
		if !ok {
			fmt.Printf("\n  %s\n", faint("Never synced"))
			return nil
		}

		var unread, favorites int
		for _, a := range articles {
			if !a.IsRead() {
				unread++
			}
			if a.IsFavorite {
				favorites++
			}
		}
		fmt.Printf("\n  %s %d (%d unread, %d favorites)\n", faint("Articles:"), len(articles), unread, favorites)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
