// ABOUTME: Progress command setting an article's reading position
// ABOUTME: Writes through to the remote API; local progress never moves backward

package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress <article-id> <percent>",
	Short: "Set reading progress",
	Long: `Record how far through an article you are, as a percentage.

Progress only moves forward: a value below the stored one leaves it
alone. 100 marks the article read.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRemote(); err != nil {
			return err
		}
		id, err := parseArticleID(args[0])
		if err != nil {
			return err
		}
		pct, err := strconv.Atoi(args[1])
		if err != nil || pct < 0 || pct > 100 {
			return fmt.Errorf("progress must be a number between 0 and 100, got %q", args[1])
		}

		if err := mutator.SetProgress(cmd.Context(), cfg.UserID, id, pct); err != nil {
			return fmt.Errorf("failed to set progress: %w", err)
		}

		if pct == 100 {
			color.Green("Article %d marked read", id)
		} else {
			fmt.Printf("Article %d at %d%%\n", id, pct)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
}
