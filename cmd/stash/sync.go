// ABOUTME: Sync command reconciling the local collection with the remote API
// ABOUTME: Reports new article counts and surfaces stale results on network failure

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	syncengine "github.com/harper/stash/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync articles from the remote API",
	Long: `Fetch articles you haven't seen yet, merge them into the local
collection, and persist the result.

When the remote is unreachable the cached collection is shown as-is
and marked stale; sync never discards what you already have.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRemote(); err != nil {
			return err
		}
		withImages, _ := cmd.Flags().GetBool("images")

		var opts []syncengine.Option
		if withImages {
			opts = append(opts, syncengine.WithImages())
		}

		res, err := engine.Sync(cmd.Context(), cfg.UserID, opts...)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		if res.Err != nil {
			color.Yellow("Remote unreachable, showing cached articles: %v", res.Err)
		}
		if len(res.New) > 0 {
			color.Green("Synced %d new article(s), %d total", len(res.New), len(res.All))
			faint := color.New(color.Faint).SprintFunc()
			for _, a := range res.New {
				title := "Untitled"
				if a.Title != nil {
					title = *a.Title
				}
				fmt.Printf("  %s %s\n", faint(fmt.Sprintf("%d", a.ID)), title)
			}
		} else {
			fmt.Printf("Up to date, %d article(s)\n", len(res.All))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().Bool("images", false, "also download and cache article images")
}
