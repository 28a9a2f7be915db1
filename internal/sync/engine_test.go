// ABOUTME: Tests for the Sync Engine
// ABOUTME: Covers idempotence, dedupe, sort order, fallback semantics, and cancellation

package sync

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/stash/internal/models"
	"github.com/harper/stash/internal/remote"
	"github.com/harper/stash/internal/store"
)

// fakeRemote serves a fixed article set or a fixed error.
type fakeRemote struct {
	articles []*models.Article
	err      error
	calls    int
}

func (f *fakeRemote) ListExcluding(ctx context.Context, ids []int64) ([]*models.Article, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	// The fake ignores ids: client-side filtering is the correctness guarantee.
	out := make([]*models.Article, len(f.articles))
	copy(out, f.articles)
	return out, nil
}

// fakeMedia records which articles had images cached.
type fakeMedia struct {
	calls map[int64][]string
}

func (f *fakeMedia) EnsureAll(ctx context.Context, userID string, articleID int64, urls []string) int {
	if f.calls == nil {
		f.calls = make(map[int64][]string)
	}
	f.calls[articleID] = append(f.calls[articleID], urls...)
	return 0 // pretend every download failed; sync must not care
}

// failingStore wraps a Store and fails every Save.
type failingStore struct {
	store.Store
	saveErr error
}

func (f *failingStore) Save(ctx context.Context, userID string, articles []*models.Article) error {
	return f.saveErr
}

func transportErr() error {
	return &url.Error{Op: "Get", URL: "https://api.test/v1/articles", Err: errors.New("connection refused")}
}

func remoteArticle(id int64, createdAt time.Time) *models.Article {
	title := "Article"
	body := "plain body"
	return &models.Article{
		ID:        id,
		Title:     &title,
		Content:   &body,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func ids(articles []*models.Article) []int64 {
	out := make([]int64, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}

func TestSyncFirstRun(t *testing.T) {
	t1 := time.Now().Add(-time.Hour)
	t2 := time.Now()
	st := store.NewMemoryStore()
	rm := &fakeRemote{articles: []*models.Article{remoteArticle(1, t1), remoteArticle(2, t2)}}
	e := New(st, rm, nil, nil)

	res, err := e.Sync(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(res.All), "sorted by createdAt descending")
	assert.Len(t, res.New, 2)
	assert.Nil(t, res.Err)

	persisted, ok, err := st.Load(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, ok, "first successful sync creates the store")
	assert.Equal(t, []int64{2, 1}, ids(persisted))
}

func TestSyncDeltaScenario(t *testing.T) {
	// Local holds [{id:1}]; remote returns [{id:1},{id:2, newer}].
	t1 := time.Now().Add(-time.Hour)
	t2 := time.Now()
	st := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Save(ctx, "u1", []*models.Article{remoteArticle(1, t1)}))

	rm := &fakeRemote{articles: []*models.Article{remoteArticle(1, t1), remoteArticle(2, t2)}}
	e := New(st, rm, nil, nil)

	res, err := e.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(res.New))
	assert.Equal(t, []int64{2, 1}, ids(res.All))
}

func TestSyncIdempotent(t *testing.T) {
	t1 := time.Now().Add(-time.Hour)
	t2 := time.Now()
	st := store.NewMemoryStore()
	rm := &fakeRemote{articles: []*models.Article{remoteArticle(1, t1), remoteArticle(2, t2)}}
	e := New(st, rm, nil, nil)
	ctx := context.Background()

	_, err := e.Sync(ctx, "u1")
	require.NoError(t, err)
	first, _, _ := st.Load(ctx, "u1")

	res, err := e.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, res.New, "no remote changes means no new articles")
	second, _, _ := st.Load(ctx, "u1")
	assert.Equal(t, ids(first), ids(second), "back-to-back syncs persist identical lists")
}

func TestSyncNeverDuplicates(t *testing.T) {
	now := time.Now()
	// Remote misbehaves and returns the same ID twice.
	rm := &fakeRemote{articles: []*models.Article{
		remoteArticle(1, now), remoteArticle(1, now), remoteArticle(2, now.Add(-time.Minute)),
	}}
	st := store.NewMemoryStore()
	e := New(st, rm, nil, nil)

	for i := 0; i < 3; i++ {
		res, err := e.Sync(context.Background(), "u1")
		require.NoError(t, err)

		seen := make(map[int64]bool)
		for _, a := range res.All {
			assert.False(t, seen[a.ID], "duplicate id %d in persisted list", a.ID)
			seen[a.ID] = true
		}
	}
}

func TestSyncTransportFailureFallsBackToCache(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	cached := []*models.Article{remoteArticle(1, time.Now())}
	require.NoError(t, st.Save(ctx, "u1", cached))

	e := New(st, &fakeRemote{err: transportErr()}, nil, nil)
	res, err := e.Sync(ctx, "u1")
	require.NoError(t, err, "stale cache is not a user-visible failure")
	require.NotNil(t, res)
	assert.Empty(t, res.New)
	assert.Equal(t, []int64{1}, ids(res.All))
	assert.Error(t, res.Err, "the remote error still travels in the result")
}

func TestSyncTransportFailureWithoutCache(t *testing.T) {
	e := New(store.NewMemoryStore(), &fakeRemote{err: transportErr()}, nil, nil)

	res, err := e.Sync(context.Background(), "u1")
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoFallback)
}

func TestSyncAPIFailureWithCacheIsNotNoFallback(t *testing.T) {
	// The remote answered but refused the request. That is a real failure
	// even though cached articles exist, and it must not claim the cache
	// is empty.
	st := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, st.Save(ctx, "u1", []*models.Article{remoteArticle(1, time.Now())}))

	apiErr := &remote.StatusError{Code: 401, Body: "token revoked"}
	e := New(st, &fakeRemote{err: apiErr}, nil, nil)

	res, err := e.Sync(ctx, "u1")
	assert.Nil(t, res)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFallback)
	assert.ErrorIs(t, err, apiErr)
}

func TestSyncPersistFailureStillReturnsMerge(t *testing.T) {
	saveErr := errors.New("disk full")
	st := &failingStore{Store: store.NewMemoryStore(), saveErr: saveErr}
	rm := &fakeRemote{articles: []*models.Article{remoteArticle(1, time.Now())}}
	e := New(st, rm, nil, nil)

	res, err := e.Sync(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, saveErr)
	require.NotNil(t, res, "best-effort in-memory consistency")
	assert.Equal(t, []int64{1}, ids(res.All))
}

func TestCancelledSyncNeverWrites(t *testing.T) {
	st := store.NewMemoryStore()
	rm := &fakeRemote{articles: []*models.Article{remoteArticle(1, time.Now())}}
	e := New(st, rm, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The fake remote ignores cancellation, so the engine reaches the
	// persist gate and must stop there.
	_, err := e.Sync(ctx, "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	_, ok, loadErr := st.Load(context.Background(), "u1")
	require.NoError(t, loadErr)
	assert.False(t, ok, "a cancelled sync never writes to the store")
}

func TestSyncCachesMediaForNewArticlesOnly(t *testing.T) {
	t1 := time.Now().Add(-time.Hour)
	t2 := time.Now()
	st := store.NewMemoryStore()
	ctx := context.Background()

	old := remoteArticle(1, t1)
	oldBody := "![old](https://img.test/old.png)"
	old.Content = &oldBody
	require.NoError(t, st.Save(ctx, "u1", []*models.Article{old}))

	fresh := remoteArticle(2, t2)
	freshBody := "![a](https://img.test/a.png) and ![b](https://img.test/b.png)"
	fresh.Content = &freshBody

	media := &fakeMedia{}
	rm := &fakeRemote{articles: []*models.Article{old, fresh}}
	e := New(st, rm, media, nil)

	res, err := e.Sync(ctx, "u1", WithImages())
	require.NoError(t, err)
	require.Equal(t, []int64{2}, ids(res.New))

	assert.NotContains(t, media.calls, int64(1), "already-stored articles are not re-cached")
	assert.ElementsMatch(t, []string{"https://img.test/a.png", "https://img.test/b.png"}, media.calls[2])
}

func TestSyncWithoutImagesSkipsMedia(t *testing.T) {
	media := &fakeMedia{}
	rm := &fakeRemote{articles: []*models.Article{remoteArticle(1, time.Now())}}
	e := New(store.NewMemoryStore(), rm, media, nil)

	_, err := e.Sync(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, media.calls)
}

func TestSyncNormalizesHTMLContent(t *testing.T) {
	a := remoteArticle(1, time.Now())
	htmlBody := "<p>Hello <strong>there</strong></p>"
	a.Content = &htmlBody

	st := store.NewMemoryStore()
	e := New(st, &fakeRemote{articles: []*models.Article{a}}, nil, nil)

	res, err := e.Sync(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, res.All[0].Content)
	assert.Contains(t, *res.All[0].Content, "**there**")
}

func TestMergeTieBreaksOnID(t *testing.T) {
	now := time.Now()
	merged := Merge(
		[]*models.Article{remoteArticle(3, now), remoteArticle(5, now)},
		[]*models.Article{remoteArticle(4, now)},
	)
	assert.Equal(t, []int64{5, 4, 3}, ids(merged))
}

func TestMergeKeepsFirstOccurrenceInSortOrder(t *testing.T) {
	older := time.Now().Add(-time.Hour)
	newer := time.Now()

	freshCopy := remoteArticle(1, newer)
	storedCopy := remoteArticle(1, older)
	storedCopy.Tags = "stored"

	merged := Merge([]*models.Article{freshCopy}, []*models.Article{storedCopy})
	require.Len(t, merged, 1)
	assert.Empty(t, merged[0].Tags, "the occurrence first in sort order wins")
}
