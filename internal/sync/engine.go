// ABOUTME: Sync Engine reconciling the Local Article Store against the remote API
// ABOUTME: Fetch-delta, merge, dedupe, sort, persist; stale-cache fallback on network failure

package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/harper/stash/internal/content"
	"github.com/harper/stash/internal/models"
	"github.com/harper/stash/internal/remote"
	"github.com/harper/stash/internal/store"
)

// ErrNoFallback marks a remote failure with no cached articles to fall back
// to; it is the only sync failure that must reach the user as "nothing to show".
var ErrNoFallback = errors.New("no cached articles to fall back to")

// RemoteAPI is the slice of the remote client the engine needs.
type RemoteAPI interface {
	ListExcluding(ctx context.Context, ids []int64) ([]*models.Article, error)
}

// MediaCache is the slice of the media cache the engine needs.
type MediaCache interface {
	EnsureAll(ctx context.Context, userID string, articleID int64, urls []string) int
}

// Result is the ephemeral outcome of one sync invocation.
//
// Err carries a non-fatal remote failure when All still holds usable cached
// articles; the UI keeps rendering cached content with no error banner.
type Result struct {
	New []*models.Article
	All []*models.Article
	Err error
}

// Option configures one sync invocation.
type Option func(*options)

type options struct {
	cacheImages bool
}

// WithImages enables media caching for newly fetched articles.
func WithImages() Option {
	return func(o *options) { o.cacheImages = true }
}

// Engine reconciles one user's local article collection with the remote API.
// Every invocation re-derives its state from a fresh store load and the merge
// is idempotent and commutative over IDs, so overlapping syncs converge.
type Engine struct {
	store  store.Store
	remote RemoteAPI
	media  MediaCache
	log    *log.Logger
}

// New creates an engine. media may be nil when image caching is unavailable
// (e.g. the web client); WithImages is then a no-op.
func New(st store.Store, rm RemoteAPI, media MediaCache, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{store: st, remote: rm, media: media, log: logger}
}

// Sync runs one reconciliation pass for userID.
//
// Failure contract:
//   - remote unreachable, cached articles exist: returns (Result{All: cached,
//     Err: remoteErr}, nil) — stale data, no user-visible error;
//   - remote failed, nothing cached: returns a nil Result slice wrapped in an
//     ErrNoFallback error;
//   - remote rejected the request (API-level failure, not a network one):
//     the error is returned directly, cached or not — ErrNoFallback marks
//     only the empty-cache case;
//   - persist failed: the merged result is still returned alongside the error;
//     the next sync re-fetches whatever was not persisted;
//   - ctx cancelled before persist: nothing is written, ctx.Err() is returned.
func (e *Engine) Sync(ctx context.Context, userID string, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Stage 1: load local. Read errors degrade to "never synced" — the store
	// is a cache and the remote remains the source of truth.
	stored, ok, err := e.store.Load(ctx, userID)
	if err != nil {
		e.log.Warn("local store unreadable, treating as never synced", "err", err)
		stored, ok = nil, false
	}

	known := make(map[int64]bool, len(stored))
	ids := make([]int64, 0, len(stored))
	for _, a := range stored {
		known[a.ID] = true
		ids = append(ids, a.ID)
	}

	// Stage 2: fetch the remote delta.
	fetched, err := e.remote.ListExcluding(ctx, ids)
	if err != nil {
		if !ok {
			return nil, fmt.Errorf("%w: %w", ErrNoFallback, err)
		}
		if remote.IsTransport(err) {
			e.log.Info("remote unreachable, serving cached articles", "user", userID, "cached", len(stored))
			return &Result{New: nil, All: stored, Err: err}, nil
		}
		// An API-level rejection is a real failure even with a cache: cached
		// data is not stale-but-fine, the request itself was refused.
		return nil, fmt.Errorf("fetch articles: %w", err)
	}

	// Client-side ID filtering is the correctness guarantee; the server-side
	// exclusion above is only an optimization.
	fresh := make([]*models.Article, 0, len(fetched))
	for _, a := range fetched {
		if known[a.ID] {
			continue
		}
		a.UserID = userID
		if a.Content != nil {
			normalized := content.Normalize(*a.Content)
			a.Content = &normalized
		}
		fresh = append(fresh, a)
	}

	// Stage 3: cache media for new articles. Per-image failures are contained
	// inside the cache and never abort the sync.
	if o.cacheImages && e.media != nil {
		for _, a := range fresh {
			if a.Content == nil {
				continue
			}
			urls := content.ExtractImageURLs(*a.Content)
			if len(urls) == 0 {
				continue
			}
			cached := e.media.EnsureAll(ctx, userID, a.ID, urls)
			if cached < len(urls) {
				e.log.Debug("some images left uncached", "article", a.ID, "cached", cached, "total", len(urls))
			}
		}
	}

	// Stage 4: merge.
	merged := Merge(fresh, stored)

	// A cancelled sync never writes to the store.
	if err := ctx.Err(); err != nil {
		return &Result{New: fresh, All: merged, Err: err}, err
	}

	// Stage 5: persist. On failure the merged result still goes back to the
	// caller; the store self-heals on the next sync via idempotent re-fetch.
	if err := e.store.Save(ctx, userID, merged); err != nil {
		e.log.Error("persisting merged articles failed", "user", userID, "err", err)
		return &Result{New: fresh, All: merged, Err: err}, fmt.Errorf("persist articles: %w", err)
	}

	e.log.Debug("sync complete", "user", userID, "new", len(fresh), "total", len(merged))
	return &Result{New: fresh, All: merged}, nil
}

// Merge combines newly fetched and previously stored articles into one list
// sorted by CreatedAt descending (ties broken by higher ID first) and
// deduplicated by ID, keeping the first occurrence in sort order. New articles
// only exist once, so the dedupe is a safety net against upstream duplication,
// not a conflict resolver.
func Merge(fresh, stored []*models.Article) []*models.Article {
	combined := make([]*models.Article, 0, len(fresh)+len(stored))
	combined = append(combined, fresh...)
	combined = append(combined, stored...)

	sort.SliceStable(combined, func(i, j int) bool {
		if !combined[i].CreatedAt.Equal(combined[j].CreatedAt) {
			return combined[i].CreatedAt.After(combined[j].CreatedAt)
		}
		return combined[i].ID > combined[j].ID
	})

	seen := make(map[int64]bool, len(combined))
	merged := combined[:0]
	for _, a := range combined {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		merged = append(merged, a)
	}
	return merged
}
