// ABOUTME: Watch command running periodic background sync in the foreground
// ABOUTME: Drives the auto-sync scheduler until interrupted

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/stash/internal/scheduler"
	syncengine "github.com/harper/stash/internal/sync"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync periodically until interrupted",
	Long: `Run a periodic background sync in the foreground.

The interval comes from the auto_sync_minutes config setting and is
never shorter than 15 minutes. Press Ctrl-C to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRemote(); err != nil {
			return err
		}
		withImages, _ := cmd.Flags().GetBool("images")

		var opts []syncengine.Option
		if withImages {
			opts = append(opts, syncengine.WithImages())
		}

		interval := time.Duration(cfg.AutoSyncMinutes) * time.Minute
		pass := func(ctx context.Context) error {
			res, err := engine.Sync(ctx, cfg.UserID, opts...)
			if err != nil {
				return err
			}
			if len(res.New) > 0 {
				logger.Info("synced new articles", "new", len(res.New), "total", len(res.All))
			}
			return res.Err
		}

		auto := scheduler.New(interval, pass, logger)
		auto.Start()
		defer auto.Stop()

		fmt.Println("Watching for new articles. Press Ctrl-C to stop.")

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		fmt.Println("\nStopping.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Bool("images", false, "also download and cache article images")
}
