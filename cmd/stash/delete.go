// ABOUTME: Delete command removing an article remotely and locally
// ABOUTME: Leaves the local copy untouched when the remote delete fails

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <article-id>",
	Aliases: []string{"rm"},
	Short:   "Delete an article",
	Long: `Delete an article from the remote collection and the local store.

The remote delete happens first; if it fails, the local copy stays.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRemote(); err != nil {
			return err
		}
		id, err := parseArticleID(args[0])
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")

		if !yes {
			title := fmt.Sprintf("article %d", id)
			if a, err := findArticle(cmd, id); err == nil && a.Title != nil {
				title = *a.Title
			}
			fmt.Printf("Delete %q? [y/N] ", title)

			reader := bufio.NewReader(os.Stdin)
			confirmation, _ := reader.ReadString('\n')
			confirmation = strings.TrimSpace(confirmation)
			if confirmation != "y" && confirmation != "Y" {
				fmt.Println("Canceled.")
				return nil
			}
		}

		if err := mutator.Delete(cmd.Context(), cfg.UserID, id); err != nil {
			return fmt.Errorf("failed to delete article: %w", err)
		}

		color.Green("Deleted article %d", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}
