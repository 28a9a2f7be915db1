// ABOUTME: Tests for the reading-progress throttle
// ABOUTME: Covers the local write threshold, debounce, completion fast path, and flush

package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/stash/internal/models"
	"github.com/harper/stash/internal/store"
)

// forwardRecorder captures forwarded values.
type forwardRecorder struct {
	mu     sync.Mutex
	values []int
	err    error
}

func (f *forwardRecorder) fn(ctx context.Context, articleID int64, progress int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.values = append(f.values, progress)
	return nil
}

func (f *forwardRecorder) sent() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.values...)
}

func seedTracker(t *testing.T, current int, fw ForwardFunc, opts ...Option) (*Tracker, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	a := &models.Article{ID: 7, UserID: "u1", ReadingProgress: current, CreatedAt: time.Now()}
	require.NoError(t, st.Save(context.Background(), "u1", []*models.Article{a}))
	tr := NewTracker(st, fw, "u1", 7, current, nil, opts...)
	t.Cleanup(tr.Stop)
	return tr, st
}

func storedProgress(t *testing.T, st store.Store) int {
	t.Helper()
	articles, ok, err := st.Load(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, articles, 1)
	return articles[0].ReadingProgress
}

func TestLocalWriteThreshold(t *testing.T) {
	fw := &forwardRecorder{}
	tr, st := seedTracker(t, 0, fw.fn, WithQuietPeriod(time.Hour))
	ctx := context.Background()

	// Below the 5-point threshold: no local write.
	require.NoError(t, tr.Record(ctx, 3))
	assert.Equal(t, 0, storedProgress(t, st))

	// Crossing the threshold writes locally.
	require.NoError(t, tr.Record(ctx, 6))
	assert.Equal(t, 6, storedProgress(t, st))

	// Another small step from the last local write: skipped again.
	require.NoError(t, tr.Record(ctx, 8))
	assert.Equal(t, 6, storedProgress(t, st))

	require.NoError(t, tr.Record(ctx, 11))
	assert.Equal(t, 11, storedProgress(t, st))

	// Debounce timer never fired (1h quiet period): nothing forwarded.
	assert.Empty(t, fw.sent())
}

func TestOutOfOrderValuesNeverRegress(t *testing.T) {
	fw := &forwardRecorder{}
	tr, st := seedTracker(t, 0, fw.fn, WithQuietPeriod(time.Hour))
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, 60))
	require.NoError(t, tr.Record(ctx, 40)) // late arrival
	assert.Equal(t, 60, storedProgress(t, st))
}

func TestDebouncedForward(t *testing.T) {
	fw := &forwardRecorder{}
	tr, _ := seedTracker(t, 0, fw.fn, WithQuietPeriod(30*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, 20))
	require.NoError(t, tr.Record(ctx, 40)) // reschedules the timer

	assert.Empty(t, fw.sent(), "nothing forwarded before the quiet period")

	assert.Eventually(t, func() bool {
		vals := fw.sent()
		return len(vals) == 1 && vals[0] == 40
	}, time.Second, 5*time.Millisecond, "only the latest value is forwarded after quiet")
}

func TestCompletionForwardsImmediatelyAndOnce(t *testing.T) {
	fw := &forwardRecorder{}
	tr, st := seedTracker(t, 0, fw.fn, WithQuietPeriod(time.Hour))
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, 100))
	assert.Equal(t, 100, storedProgress(t, st))
	assert.Equal(t, []int{100}, fw.sent(), "100 bypasses the debounce")

	require.NoError(t, tr.Record(ctx, 100))
	assert.Equal(t, []int{100}, fw.sent(), "completion is sent at most once")
}

func TestFlushForwardsWhenRemoteBehind(t *testing.T) {
	fw := &forwardRecorder{}
	tr, _ := seedTracker(t, 0, fw.fn, WithQuietPeriod(time.Hour))
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, 35))
	tr.Flush(ctx)
	assert.Equal(t, []int{35}, fw.sent())

	// A second flush with nothing new is a no-op.
	tr.Flush(ctx)
	assert.Equal(t, []int{35}, fw.sent())
}

func TestFlushSwallowsForwardFailure(t *testing.T) {
	fw := &forwardRecorder{err: errors.New("offline")}
	tr, _ := seedTracker(t, 0, fw.fn, WithQuietPeriod(time.Hour))
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, 50))
	tr.Flush(ctx) // must not panic or surface the error
}

func TestResumedSessionDoesNotReforward(t *testing.T) {
	fw := &forwardRecorder{}
	tr, st := seedTracker(t, 42, fw.fn, WithQuietPeriod(time.Hour))
	ctx := context.Background()

	// Values at or below the resumed position are ignored.
	require.NoError(t, tr.Record(ctx, 40))
	require.NoError(t, tr.Record(ctx, 42))
	assert.Equal(t, 42, storedProgress(t, st))

	tr.Flush(ctx)
	assert.Empty(t, fw.sent(), "nothing to flush when remote matches local")
}

func TestCompletedArticleStaysQuiet(t *testing.T) {
	fw := &forwardRecorder{}
	tr, _ := seedTracker(t, 100, fw.fn, WithQuietPeriod(10*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, tr.Record(ctx, 100))
	tr.Flush(ctx)
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, fw.sent())
}
