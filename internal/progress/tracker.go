// ABOUTME: Reading-progress throttle for high-frequency scroll updates
// ABOUTME: Immediate thresholded local writes, debounced remote forwarding, flush on teardown

package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/stash/internal/store"
)

const (
	// minLocalStep bounds local write frequency: a local write happens only
	// when progress advanced at least this much since the last local write.
	minLocalStep = 5

	// defaultQuiet is the debounce interval before forwarding to the remote.
	defaultQuiet = 3 * time.Second
)

// ForwardFunc sends a progress value to the remote article API.
type ForwardFunc func(ctx context.Context, articleID int64, progress int) error

// Option configures a Tracker.
type Option func(*Tracker)

// WithQuietPeriod overrides the debounce interval.
func WithQuietPeriod(d time.Duration) Option {
	return func(t *Tracker) { t.quiet = d }
}

// Tracker throttles one article's reading-progress stream. Progress is
// monotonic non-decreasing within a session; values are clamped to [0, 100].
// Reaching 100 forwards immediately and at most once.
type Tracker struct {
	store     store.Store
	forward   ForwardFunc
	log       *log.Logger
	userID    string
	articleID int64
	quiet     time.Duration

	mu        sync.Mutex
	high      int  // highest value seen this session
	lastLocal int  // last value written to the local store
	lastSent  int  // last value forwarded to the remote
	doneSent  bool // completion (100) forwarded
	pending   int
	timer     *time.Timer
}

// NewTracker creates a tracker seeded with the article's current progress so
// a resumed session neither regresses nor re-forwards old values.
func NewTracker(st store.Store, forward ForwardFunc, userID string, articleID int64, current int, logger *log.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	if current < 0 {
		current = 0
	}
	if current > 100 {
		current = 100
	}
	t := &Tracker{
		store:     st,
		forward:   forward,
		log:       logger,
		userID:    userID,
		articleID: articleID,
		quiet:     defaultQuiet,
		high:      current,
		lastLocal: current,
		lastSent:  current,
		doneSent:  current >= 100,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record accepts one scroll-derived progress value. Out-of-order values that
// would decrease progress are ignored. The local store is written when the
// value advanced by at least 5 points since the last local write or reached
// 100; remote forwarding is debounced behind the quiet period, except
// completion, which forwards immediately and only once.
func (t *Tracker) Record(ctx context.Context, value int) error {
	if value > 100 {
		value = 100
	}

	t.mu.Lock()
	if value <= t.high {
		t.mu.Unlock()
		return nil
	}
	t.high = value

	writeLocal := value >= t.lastLocal+minLocalStep || value == 100
	if writeLocal {
		t.lastLocal = value
	}

	var sendNow bool
	switch {
	case value == 100 && !t.doneSent:
		t.doneSent = true
		t.lastSent = 100
		sendNow = true
		t.stopTimerLocked()
	case value == 100:
		t.stopTimerLocked()
	default:
		t.pending = value
		t.resetTimerLocked()
	}
	t.mu.Unlock()

	if writeLocal {
		if err := t.writeLocal(ctx, value); err != nil {
			return err
		}
	}
	if sendNow {
		if err := t.forward(ctx, t.articleID, 100); err != nil {
			return fmt.Errorf("forward completion: %w", err)
		}
	}
	return nil
}

// Flush issues a final best-effort forward when the remote is behind the last
// local value, typically on screen teardown. Failures are swallowed: reading
// progress is low-stakes telemetry and never blocks.
func (t *Tracker) Flush(ctx context.Context) {
	t.mu.Lock()
	t.stopTimerLocked()
	value := t.lastLocal
	behind := value > t.lastSent
	if behind {
		t.lastSent = value
	}
	t.mu.Unlock()

	if !behind {
		return
	}
	if err := t.forward(ctx, t.articleID, value); err != nil {
		t.log.Debug("progress flush dropped", "article", t.articleID, "err", err)
	}
}

// Stop cancels any pending debounced forward without flushing.
func (t *Tracker) Stop() {
	t.mu.Lock()
	t.stopTimerLocked()
	t.mu.Unlock()
}

func (t *Tracker) resetTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.quiet, t.fireDebounce)
}

func (t *Tracker) stopTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// fireDebounce runs on the timer goroutine after a quiet period.
func (t *Tracker) fireDebounce() {
	t.mu.Lock()
	value := t.pending
	if value <= t.lastSent || t.doneSent {
		t.mu.Unlock()
		return
	}
	t.lastSent = value
	t.mu.Unlock()

	if err := t.forward(context.Background(), t.articleID, value); err != nil {
		t.log.Debug("debounced progress forward failed", "article", t.articleID, "err", err)
	}
}

// writeLocal applies the progress value to the stored article via the store's
// whole-list read-modify-write.
func (t *Tracker) writeLocal(ctx context.Context, value int) error {
	articles, ok, err := t.store.Load(ctx, t.userID)
	if err != nil || !ok {
		return err
	}

	var changed bool
	for _, a := range articles {
		if a.ID == t.articleID {
			changed = a.AdvanceProgress(value)
			break
		}
	}
	if !changed {
		return nil
	}
	return t.store.Save(ctx, t.userID, articles)
}
