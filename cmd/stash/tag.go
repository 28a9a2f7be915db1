// ABOUTME: Tag command for replacing an article's tag set
// ABOUTME: Normalizes tags and writes through to the remote API before updating locally

package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag <article-id> <tags>",
	Short: "Set an article's tags",
	Long: `Replace an article's tag set with a comma-separated list.

Tags are trimmed, deduplicated, and sorted. Pass an empty string to
clear all tags.

Examples:
  stash tag 42 "golang, distributed-systems"
  stash tag 42 ""`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRemote(); err != nil {
			return err
		}
		id, err := parseArticleID(args[0])
		if err != nil {
			return err
		}

		if err := mutator.SetTags(cmd.Context(), cfg.UserID, id, args[1]); err != nil {
			return fmt.Errorf("failed to set tags: %w", err)
		}

		if strings.TrimSpace(args[1]) == "" {
			color.Green("Cleared tags on article %d", id)
		} else {
			color.Green("Tagged article %d", id)
		}
		return nil
	},
}

var titleCmd = &cobra.Command{
	Use:     "title <article-id> <new-title>",
	Aliases: []string{"rename"},
	Short:   "Set an article's title",
	Long:    "Replace an article's title, the only editable content field",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRemote(); err != nil {
			return err
		}
		id, err := parseArticleID(args[0])
		if err != nil {
			return err
		}
		title := strings.Join(args[1:], " ")
		if strings.TrimSpace(title) == "" {
			return fmt.Errorf("title cannot be empty")
		}

		if err := mutator.SetTitle(cmd.Context(), cfg.UserID, id, title); err != nil {
			return fmt.Errorf("failed to set title: %w", err)
		}

		color.Green("Renamed article %d", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(titleCmd)
}
