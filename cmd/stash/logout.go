// ABOUTME: Logout command clearing credentials and local article data
// ABOUTME: Prompts before wiping because unsynced progress is lost

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear credentials and local articles",
	Long: `Remove the stored API token and wipe this user's local article
data. The remote collection is untouched; logging back in and
syncing restores everything the server has.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		if !yes {
			fmt.Println("This clears your API token and deletes local article data.")
			fmt.Print("Continue? [y/N] ")

			reader := bufio.NewReader(os.Stdin)
			confirmation, _ := reader.ReadString('\n')
			confirmation = strings.TrimSpace(confirmation)
			if confirmation != "y" && confirmation != "Y" {
				fmt.Println("Canceled.")
				return nil
			}
		}

		if cfg.UserID != "" {
			if err := articleStore.Clear(cmd.Context(), cfg.UserID); err != nil {
				return fmt.Errorf("failed to clear local articles: %w", err)
			}
		}

		cfg.Token = ""
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		color.Green("Logged out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)

	logoutCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}
