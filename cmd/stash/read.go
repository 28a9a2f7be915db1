// ABOUTME: Read command for viewing article content
// ABOUTME: Renders stored markdown with cached image paths and records reading progress

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/stash/internal/content"
	"github.com/harper/stash/internal/progress"
	"github.com/harper/stash/internal/remote"
)

var readCmd = &cobra.Command{
	Use:   "read <article-id>",
	Short: "Read an article",
	Long: `Display an article's stored content.

Content renders from the local store, so reading works offline.
Images downloaded by 'stash sync --images' are shown from the local
cache; others keep their original URL.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseArticleID(args[0])
		if err != nil {
			return err
		}
		finish, _ := cmd.Flags().GetBool("finish")

		article, err := findArticle(cmd, id)
		if err != nil {
			return err
		}

		bold := color.New(color.Bold).SprintFunc()
		faint := color.New(color.Faint).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()

		fmt.Println(strings.Repeat("─", 60))

		title := "Untitled"
		if article.Title != nil {
			title = *article.Title
		}
		fmt.Printf("%s\n\n", bold(title))

		if article.Author != nil && *article.Author != "" {
			fmt.Printf("%s %s\n", faint("Author:"), *article.Author)
		}
		if article.SiteName != nil && *article.SiteName != "" {
			fmt.Printf("%s %s\n", faint("Site:"), *article.SiteName)
		}
		if article.URL != nil {
			fmt.Printf("%s %s\n", faint("Link:"), cyan(*article.URL))
		}
		fmt.Printf("%s %s\n", faint("Saved:"), article.CreatedAt.Format("Mon, 02 Jan 2006 15:04 MST"))
		if rt := article.ReadingTime(); rt > 0 {
			fmt.Printf("%s %s\n", faint("Reading time:"), rt.Round(time.Minute).String())
		}
		if tags := article.TagList(); len(tags) > 0 {
			fmt.Printf("%s %s\n", faint("Tags:"), strings.Join(tags, ", "))
		}

		fmt.Println(strings.Repeat("─", 60))

		if article.Content != nil && *article.Content != "" {
			markdown := *article.Content

			// Point image references at the local cache when present
			for _, imgURL := range content.ExtractImageURLs(markdown) {
				resolved := mediaCache.Resolve(cfg.UserID, article.ID, imgURL)
				if resolved != imgURL {
					markdown = strings.ReplaceAll(markdown, imgURL, resolved)
				}
			}

			rendered, err := glamour.Render(markdown, "dark")
			if err != nil {
				// Fall back to plain markdown if rendering fails
				fmt.Printf("%s\n", faint("(markdown rendering unavailable, showing plain text)"))
				fmt.Printf("\n%s\n", markdown)
			} else {
				fmt.Print(rendered)
			}
		} else {
			fmt.Println("\n(No content available)")
		}

		fmt.Println()

		if finish && !article.IsRead() {
			if err := requireRemote(); err != nil {
				return err
			}
			forward := func(ctx context.Context, articleID int64, p int) error {
				_, err := remoteClient.Update(ctx, articleID, remote.Fields{"readingProgress": p})
				return err
			}
			tracker := progress.NewTracker(articleStore, forward, cfg.UserID, article.ID, article.ReadingProgress, logger)
			defer tracker.Stop()

			if err := tracker.Record(cmd.Context(), 100); err != nil {
				return fmt.Errorf("failed to record progress: %w", err)
			}
			tracker.Flush(cmd.Context())
			fmt.Printf("%s\n", faint("Marked as read"))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().Bool("finish", false, "mark the article fully read")
}
