// ABOUTME: Favorite command toggling an article's favorite flag
// ABOUTME: Applies the flip optimistically and reports the confirmed state

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var favoriteCmd = &cobra.Command{
	Use:     "favorite <article-id>",
	Aliases: []string{"fav", "star"},
	Short:   "Toggle an article's favorite flag",
	Long: `Flip the favorite flag on an article.

The flip shows up locally right away and is confirmed against the
remote API; if the API rejects it, the flag is put back.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRemote(); err != nil {
			return err
		}
		id, err := parseArticleID(args[0])
		if err != nil {
			return err
		}

		fav, err := mutator.ToggleFavorite(cmd.Context(), cfg.UserID, id)
		if err != nil {
			return fmt.Errorf("failed to toggle favorite: %w", err)
		}

		if fav {
			color.Yellow("★ Favorited article %d", id)
		} else {
			fmt.Printf("Unfavorited article %d\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(favoriteCmd)
}
