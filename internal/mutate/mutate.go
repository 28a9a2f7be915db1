// ABOUTME: Mutation façade applying user edits write-through to the remote API
// ABOUTME: Local store follows a confirmed remote write; optimistic favorite toggles roll back

package mutate

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/harper/stash/internal/content"
	"github.com/harper/stash/internal/models"
	"github.com/harper/stash/internal/remote"
	"github.com/harper/stash/internal/store"
)

// RemoteAPI is the slice of the remote client mutations need.
type RemoteAPI interface {
	Create(ctx context.Context, url, tags string) (*models.Article, error)
	Update(ctx context.Context, id int64, fields remote.Fields) (*models.Article, error)
	Delete(ctx context.Context, id int64) error
}

// Mutator applies user-initiated edits. Every operation either leaves local
// and remote in agreement, or leaves both unchanged — local is never ahead of
// a failed remote write, except transiently for the optimistic favorite
// toggle, which is corrected synchronously on failure.
type Mutator struct {
	store  store.Store
	remote RemoteAPI
	log    *log.Logger
}

// New creates a mutator.
func New(st store.Store, rm RemoteAPI, logger *log.Logger) *Mutator {
	if logger == nil {
		logger = log.Default()
	}
	return &Mutator{store: st, remote: rm, log: logger}
}

// Delete removes an article remotely, then drops it from the local store.
// On remote failure the local copy is left untouched.
func (m *Mutator) Delete(ctx context.Context, userID string, id int64) error {
	if err := m.remote.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article %d: %w", id, err)
	}

	return m.updateLocal(ctx, userID, func(articles []*models.Article) []*models.Article {
		kept := articles[:0]
		for _, a := range articles {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		return kept
	})
}

// SetTags replaces an article's tag set remotely, then locally. Only the tag
// field is copied back: the local record can be ahead of the remote (a
// debounced progress forward may still be pending), so the rest of the
// server's copy must not clobber it.
func (m *Mutator) SetTags(ctx context.Context, userID string, id int64, tags string) error {
	var normalized models.Article
	normalized.Tags = tags
	normalized.SetTagList(normalized.TagList())

	updated, err := m.remote.Update(ctx, id, remote.Fields{"tags": normalized.Tags})
	if err != nil {
		return fmt.Errorf("update tags on article %d: %w", id, err)
	}

	return m.applyLocal(ctx, userID, id, func(a *models.Article) {
		a.Tags = updated.Tags
		a.UpdatedAt = updated.UpdatedAt
	})
}

// SetTitle updates the article title, the only editable content field.
func (m *Mutator) SetTitle(ctx context.Context, userID string, id int64, title string) error {
	updated, err := m.remote.Update(ctx, id, remote.Fields{"title": title})
	if err != nil {
		return fmt.Errorf("update title on article %d: %w", id, err)
	}

	return m.applyLocal(ctx, userID, id, func(a *models.Article) {
		a.Title = updated.Title
		a.UpdatedAt = updated.UpdatedAt
	})
}

// ToggleFavorite flips the favorite flag optimistically in the local store,
// confirms it remotely, and reverts the local flip synchronously if the
// remote write fails. Returns the article's final favorite state.
func (m *Mutator) ToggleFavorite(ctx context.Context, userID string, id int64) (bool, error) {
	var flipped bool
	var found bool

	flip := func(articles []*models.Article) []*models.Article {
		for _, a := range articles {
			if a.ID == id {
				a.IsFavorite = !a.IsFavorite
				flipped = a.IsFavorite
				found = true
				break
			}
		}
		return articles
	}

	if err := m.updateLocal(ctx, userID, flip); err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("article %d not in local store", id)
	}
	toggled := flipped

	if _, err := m.remote.Update(ctx, id, remote.Fields{"isFavorite": toggled}); err != nil {
		// Revert the optimistic flip; the revert's own failure is logged only,
		// since the next sync reconciles against the remote anyway.
		if revertErr := m.updateLocal(ctx, userID, flip); revertErr != nil {
			m.log.Warn("could not revert optimistic favorite toggle", "article", id, "err", revertErr)
		}
		return !toggled, fmt.Errorf("toggle favorite on article %d: %w", id, err)
	}

	return toggled, nil
}

// SetProgress pushes an absolute reading-progress value remotely, then
// advances the local copy. Progress never regresses; a value at or below the
// stored one still refreshes the remote but leaves local state alone.
func (m *Mutator) SetProgress(ctx context.Context, userID string, id int64, progress int) error {
	if _, err := m.remote.Update(ctx, id, remote.Fields{"readingProgress": progress}); err != nil {
		return fmt.Errorf("update progress on article %d: %w", id, err)
	}

	return m.updateLocal(ctx, userID, func(articles []*models.Article) []*models.Article {
		for _, a := range articles {
			if a.ID == id {
				a.AdvanceProgress(progress)
				break
			}
		}
		return articles
	})
}

// Save stores a new article remotely from its URL and prepends the created
// record to the local list. The record gets the same normalization pass a
// synced article would, so the local copy renders identically either way.
func (m *Mutator) Save(ctx context.Context, userID, articleURL, tags string) (*models.Article, error) {
	created, err := m.remote.Create(ctx, articleURL, tags)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", articleURL, err)
	}
	created.UserID = userID
	if created.Content != nil {
		normalized := content.Normalize(*created.Content)
		created.Content = &normalized
	}

	if err := m.prependLocal(ctx, userID, created); err != nil {
		return created, err
	}
	return created, nil
}

// prependLocal puts a newly created record at the head of the stored list.
// A duplicate create (same ID already stored) keeps the existing record.
func (m *Mutator) prependLocal(ctx context.Context, userID string, created *models.Article) error {
	return m.updateLocal(ctx, userID, func(articles []*models.Article) []*models.Article {
		for _, a := range articles {
			if a.ID == created.ID {
				return articles
			}
		}
		return append([]*models.Article{created}, articles...)
	})
}

// applyLocal mutates the stored copy of one article in place. An article the
// store doesn't hold is skipped; the change is durable remotely and the next
// sync picks it up.
func (m *Mutator) applyLocal(ctx context.Context, userID string, id int64, fn func(*models.Article)) error {
	return m.updateLocal(ctx, userID, func(articles []*models.Article) []*models.Article {
		for _, a := range articles {
			if a.ID == id {
				fn(a)
				break
			}
		}
		return articles
	})
}

// updateLocal performs the store's whole-list read-modify-write. When the
// user has never synced there is nothing to transform: the change is already
// durable remotely and the first sync will pick it up.
func (m *Mutator) updateLocal(ctx context.Context, userID string, fn func([]*models.Article) []*models.Article) error {
	articles, ok, err := m.store.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("load local articles: %w", err)
	}
	if !ok {
		return nil
	}

	if err := m.store.Save(ctx, userID, fn(articles)); err != nil {
		return fmt.Errorf("save local articles: %w", err)
	}
	return nil
}
