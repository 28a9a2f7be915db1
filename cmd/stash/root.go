// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads configuration and wires the store, remote client, and sync engine

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/stash/internal/config"
	"github.com/harper/stash/internal/mediacache"
	"github.com/harper/stash/internal/models"
	"github.com/harper/stash/internal/mutate"
	"github.com/harper/stash/internal/remote"
	"github.com/harper/stash/internal/store"
	syncengine "github.com/harper/stash/internal/sync"
)

var (
	verbose bool

	cfg          *config.Config
	articleStore store.Store
	remoteClient *remote.Client
	mediaCache   *mediacache.Cache
	engine       *syncengine.Engine
	mutator      *mutate.Mutator
	logger       *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "stash",
	Short: "Offline-first read-it-later client",
	Long: `
███████╗████████╗ █████╗ ███████╗██╗  ██╗
██╔════╝╚══██╔══╝██╔══██╗██╔════╝██║  ██║
███████╗   ██║   ███████║███████╗███████║
╚════██║   ██║   ██╔══██║╚════██║██╔══██║
███████║   ██║   ██║  ██║███████║██║  ██║
╚══════╝   ╚═╝   ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝

Save articles, sync them down, and read them offline.

Articles live in a local store and reconcile against the remote
API on demand. Reads, edits, and progress work from the cached
copy when the network is away.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = log.New(os.Stderr)
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		articleStore, err = cfg.OpenStore()
		if err != nil {
			return fmt.Errorf("failed to open article store: %w", err)
		}

		mediaCache = mediacache.New(cfg.MediaDir(), logger)

		if cfg.IsConfigured() {
			remoteClient = remote.New(cfg.Server, cfg.Token, logger)
			engine = syncengine.New(articleStore, remoteClient, mediaCache, logger)
			mutator = mutate.New(articleStore, remoteClient, logger)
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if articleStore != nil {
			if err := articleStore.Close(); err != nil {
				return fmt.Errorf("failed to close article store: %w", err)
			}
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// requireRemote guards commands that write through to the API.
func requireRemote() error {
	if remoteClient == nil {
		return fmt.Errorf("not configured: run 'stash setup' with your server, token, and user ID")
	}
	return nil
}

func parseArticleID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid article ID: %s", arg)
	}
	return id, nil
}

// findArticle loads the local list and returns the article with the given ID.
func findArticle(cmd *cobra.Command, id int64) (*models.Article, error) {
	articles, ok, err := articleStore.Load(cmd.Context(), cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("no local articles yet: run 'stash sync' first")
	}
	for _, a := range articles {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("article not found: %d", id)
}
