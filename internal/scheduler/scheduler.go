// ABOUTME: Background auto-sync trigger as an explicit lifecycle object
// ABOUTME: Idempotent Start/Stop around a periodic engine invocation; failures logged only

package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// MinInterval is the floor for the periodic interval, matching the minimum
// imposed by mobile OS background-task schedulers.
const MinInterval = 15 * time.Minute

// SyncFunc runs one background sync pass (image caching enabled by the caller).
type SyncFunc func(ctx context.Context) error

// Option configures an AutoSync.
type Option func(*AutoSync)

// withFloor overrides the interval floor. Test hook.
func withFloor(d time.Duration) Option {
	return func(a *AutoSync) { a.floor = d }
}

// AutoSync periodically triggers the sync engine while the app is backgrounded.
// It is owned by the session lifecycle: Start on background transition, Stop on
// foreground or sign-out. Both are idempotent, and neither fails when the
// platform can't schedule background work — an AutoSync that can't run simply
// logs and stays stopped.
type AutoSync struct {
	interval time.Duration
	floor    time.Duration
	fn       SyncFunc
	log      *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a stopped AutoSync. Intervals below the floor are raised to it.
func New(interval time.Duration, fn SyncFunc, logger *log.Logger, opts ...Option) *AutoSync {
	if logger == nil {
		logger = log.Default()
	}
	a := &AutoSync{interval: interval, floor: MinInterval, fn: fn, log: logger}
	for _, opt := range opts {
		opt(a)
	}
	if a.interval < a.floor {
		a.interval = a.floor
	}
	return a
}

// Start begins periodic syncing. Calling Start on a running AutoSync is a no-op.
func (a *AutoSync) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})

	go a.run(ctx, a.done)
	a.log.Debug("background sync started", "interval", a.interval)
}

// Stop halts periodic syncing and waits for an in-flight pass to return.
// Calling Stop on a stopped AutoSync is a no-op.
func (a *AutoSync) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	a.log.Debug("background sync stopped")
}

// Running reports whether the periodic trigger is active.
func (a *AutoSync) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

func (a *AutoSync) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.fn(ctx); err != nil && ctx.Err() == nil {
				// Background failures are invisible to the user; the next
				// foreground sync or tick retries from scratch.
				a.log.Warn("background sync failed", "err", err)
			}
		}
	}
}
