// ABOUTME: Save command for adding a new article by URL
// ABOUTME: Writes through to the remote API and prepends the created record locally

package main

import (
	"fmt"
	"net/url"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:     "save <url>",
	Aliases: []string{"add"},
	Short:   "Save an article by URL",
	Long: `Save a page to your article collection.

The backend extracts readable content; the created record is added
to the local collection immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRemote(); err != nil {
			return err
		}
		articleURL := args[0]
		tags, _ := cmd.Flags().GetString("tags")

		parsed, err := url.Parse(articleURL)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("invalid article URL: %s", articleURL)
		}

		created, err := mutator.Save(cmd.Context(), cfg.UserID, articleURL, tags)
		if err != nil {
			return fmt.Errorf("failed to save article: %w", err)
		}

		title := articleURL
		if created.Title != nil && *created.Title != "" {
			title = *created.Title
		}
		color.Green("Saved: %s", title)
		faint := color.New(color.Faint).SprintFunc()
		fmt.Printf("  %s %d\n", faint("id:"), created.ID)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)

	saveCmd.Flags().StringP("tags", "t", "", "comma-separated tags for the new article")
}
