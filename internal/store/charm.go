// ABOUTME: Charm KV article store backend using the transactional Do API
// ABOUTME: Short-lived connections per operation, optional sync to the Charm cloud

package store

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/charm/kv"

	"github.com/harper/stash/internal/models"
)

const (
	// Default Charm server
	DefaultCharmHost = "charm.2389.dev"

	// charmDBName is the charm kv database used for stash.
	charmDBName = "stash"
)

// CharmStore implements Store on a Charm KV database. Writes can optionally
// replicate to the Charm server, giving the local cache a free cloud backup;
// the engine itself never depends on that replication.
type CharmStore struct {
	dbName   string
	autoSync bool
}

// NewCharmStore creates a charm-backed store.
func NewCharmStore() (*CharmStore, error) {
	if os.Getenv("CHARM_HOST") == "" {
		os.Setenv("CHARM_HOST", DefaultCharmHost)
	}
	return &CharmStore{dbName: charmDBName, autoSync: true}, nil
}

// SetAutoSync enables or disables replication to the Charm server after writes.
func (c *CharmStore) SetAutoSync(enabled bool) {
	c.autoSync = enabled
}

// Load returns the persisted article list for userID.
func (c *CharmStore) Load(ctx context.Context, userID string) ([]*models.Article, bool, error) {
	var payload []byte
	err := kv.DoReadOnly(c.dbName, func(k *kv.KV) error {
		data, err := k.Get([]byte(articleKey(userID)))
		if err != nil {
			return fmt.Errorf("get articles: %w", err)
		}
		payload = data
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if payload == nil {
		return nil, false, nil
	}

	articles, ok := decodeArticles(payload)
	return articles, ok, nil
}

// Save replaces userID's entire list in one key write.
func (c *CharmStore) Save(ctx context.Context, userID string, articles []*models.Article) error {
	payload, err := encodeArticles(articles)
	if err != nil {
		return fmt.Errorf("encode articles: %w", err)
	}

	return kv.Do(c.dbName, func(k *kv.KV) error {
		if err := k.Set([]byte(articleKey(userID)), payload); err != nil {
			return fmt.Errorf("save articles: %w", err)
		}
		if c.autoSync {
			return k.Sync()
		}
		return nil
	})
}

// Clear removes userID's persisted list.
func (c *CharmStore) Clear(ctx context.Context, userID string) error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		if err := k.Delete([]byte(articleKey(userID))); err != nil {
			return fmt.Errorf("clear articles: %w", err)
		}
		if c.autoSync {
			return k.Sync()
		}
		return nil
	})
}

// Close is a no-op; the Do API closes connections after each operation.
func (c *CharmStore) Close() error {
	return nil
}
