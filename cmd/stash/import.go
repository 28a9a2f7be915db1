// ABOUTME: Import command saving every entry of an RSS/Atom feed as an article
// ABOUTME: Parses the feed and writes each entry through the normal save path

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/mmcdole/gofeed"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <feed-url>",
	Short: "Import articles from an RSS/Atom feed",
	Long: `Fetch a feed and save each entry's link as an article.

Entries that fail to save are skipped with a warning; the rest go
through. Useful for seeding a collection from a blog's archive.

Examples:
  stash import https://example.com/feed.xml
  stash import https://example.com/feed.xml --limit 5 --tags blogroll`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRemote(); err != nil {
			return err
		}
		feedURL := args[0]
		limit, _ := cmd.Flags().GetInt("limit")
		tags, _ := cmd.Flags().GetString("tags")

		parser := gofeed.NewParser()
		feed, err := parser.ParseURLWithContext(feedURL, cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to parse feed: %w", err)
		}

		if len(feed.Items) == 0 {
			fmt.Println("Feed has no entries")
			return nil
		}

		faint := color.New(color.Faint).SprintFunc()
		fmt.Printf("Importing from %s\n", feed.Title)

		var saved int
		for _, item := range feed.Items {
			if limit > 0 && saved >= limit {
				break
			}
			if item.Link == "" {
				continue
			}

			created, err := mutator.Save(cmd.Context(), cfg.UserID, item.Link, tags)
			if err != nil {
				color.Yellow("  skipped %s: %v", item.Link, err)
				continue
			}

			title := item.Link
			if created.Title != nil && *created.Title != "" {
				title = *created.Title
			} else if item.Title != "" {
				title = item.Title
			}
			fmt.Printf("  %s %s\n", faint(fmt.Sprintf("%d", created.ID)), title)
			saved++
		}

		color.Green("Imported %d article(s)", saved)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().IntP("limit", "n", 0, "max entries to import (0 = all)")
	importCmd.Flags().StringP("tags", "t", "", "comma-separated tags applied to every imported article")
}
