// ABOUTME: List command for viewing saved articles with filtering options
// ABOUTME: Displays articles with read state, favorite marker, and saved date using color formatting

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List saved articles",
	Long:    "List saved articles with optional filtering by tag, favorites, and read status",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		tag, _ := cmd.Flags().GetString("tag")
		favorites, _ := cmd.Flags().GetBool("favorites")
		limit, _ := cmd.Flags().GetInt("limit")

		articles, ok, err := articleStore.Load(cmd.Context(), cfg.UserID)
		if err != nil {
			return fmt.Errorf("failed to load articles: %w", err)
		}
		if !ok {
			fmt.Println("No local articles yet. Run 'stash sync' first.")
			return nil
		}

		faint := color.New(color.Faint).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		shown := 0
		for _, a := range articles {
			if !all && a.IsRead() {
				continue
			}
			if tag != "" && !a.HasTag(tag) {
				continue
			}
			if favorites && !a.IsFavorite {
				continue
			}

			fmt.Print(faint(fmt.Sprintf("%6d", a.ID)))
			fmt.Print(" ")

			if a.IsRead() {
				fmt.Print("✓ ")
			} else if a.ReadingProgress > 0 {
				fmt.Print(faint(fmt.Sprintf("%d%% ", a.ReadingProgress)))
			} else {
				fmt.Print("  ")
			}

			if a.IsFavorite {
				fmt.Print(yellow("★ "))
			}

			title := "Untitled"
			if a.Title != nil {
				title = *a.Title
			}
			fmt.Print(title)

			if a.SiteName != nil && *a.SiteName != "" {
				fmt.Print(" ", faint(*a.SiteName))
			}
			fmt.Print(" ", faint(a.CreatedAt.Format("02 Jan 06")))

			fmt.Println()

			shown++
			if limit > 0 && shown >= limit {
				break
			}
		}

		if shown == 0 {
			fmt.Println("No articles found")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("all", "a", false, "show all articles including read")
	listCmd.Flags().StringP("tag", "t", "", "filter by tag")
	listCmd.Flags().BoolP("favorites", "f", false, "show only favorited articles")
	listCmd.Flags().IntP("limit", "n", 20, "max articles to show")
}
