// ABOUTME: Local Article Store interface and key namespacing
// ABOUTME: Defines the whole-list, per-user persistence contract shared by all backends

package store

import (
	"context"

	"github.com/harper/stash/internal/models"
)

// Store persists one user's full article collection as a single value.
//
// There is no partial-record update primitive: every mutation reads the full
// list, transforms it, and writes the full list back. The dataset (one user's
// saved articles) is small enough that whole-list read/write stays cheap.
type Store interface {
	// Load returns the persisted list for userID. ok is false when the user
	// has never synced; an empty list with ok=true means "synced, zero
	// articles". A corrupt payload is treated as never-synced, not an error.
	Load(ctx context.Context, userID string) (articles []*models.Article, ok bool, err error)

	// Save replaces the entire persisted list in a single key write.
	Save(ctx context.Context, userID string, articles []*models.Article) error

	// Clear removes userID's persisted list (sign-out). Other users' data,
	// living under their own keys, is untouched.
	Clear(ctx context.Context, userID string) error

	// Close releases backend resources.
	Close() error
}

// articleKey is the per-user storage key for the article list.
// Keys are namespaced by userID so a different signed-in user never sees
// (or deletes) another user's cached articles.
func articleKey(userID string) string {
	return "articles:" + userID
}
