package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

// DayMarkKey is the meta key under which the last-seen day is persisted.
// Persisting it means a restart shortly after midnight does not re-trigger
// a spurious rollover.
const DayMarkKey = "last_day_seen"

// DefaultPollInterval bounds how long a date change can go unnoticed.
// Polling rather than arming a timer for midnight survives host sleep
// skipping ticks.
const DefaultPollInterval = time.Minute

// Marker persists the last day the process saw. The SQLite store's meta
// table implements it.
type Marker interface {
	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error
}

// Watcher polls for the calendar date changing and signals each new day on
// its channel.
type Watcher struct {
	marker Marker
	now    func() time.Time
	every  time.Duration
	ch     chan string

	lastSeen string
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithPollInterval overrides the 60s date poll.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.every = d }
}

// NewWatcher creates a rollover watcher. now is the clock source (the
// engine's Clock.Now in production, a fake in tests).
func NewWatcher(marker Marker, now func() time.Time, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		marker: marker,
		now:    now,
		every:  DefaultPollInterval,
		ch:     make(chan string, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Days returns the channel on which each newly seen day is delivered.
func (w *Watcher) Days() <-chan string {
	return w.ch
}

// Run polls for date changes until the context is cancelled. The first
// check happens immediately so a process started after midnight with a
// stale persisted marker catches up without waiting a full interval.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.load(ctx); err != nil {
		slog.Warn("day marker unavailable, starting fresh", "error", err)
	}
	w.Check(ctx)

	ticker := time.NewTicker(w.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Check compares the persisted marker against freshly computed today and
// signals (and persists) on mismatch. Exported for tests and for the
// engine's startup pass.
func (w *Watcher) Check(ctx context.Context) {
	today := task.DateOf(w.now())
	if today == w.lastSeen {
		return
	}

	first := w.lastSeen == ""
	w.lastSeen = today
	if err := w.marker.SetMeta(ctx, DayMarkKey, today); err != nil {
		slog.Error("persisting day marker failed", "error", err)
	}

	// The very first observation after a fresh install is not a rollover;
	// only signal when a previously seen day actually changed.
	if first {
		return
	}

	select {
	case w.ch <- today:
	default:
		// A pending signal already covers this change.
	}
}

// load seeds lastSeen from the persisted marker.
func (w *Watcher) load(ctx context.Context) error {
	v, err := w.marker.GetMeta(ctx, DayMarkKey)
	if err != nil {
		return err
	}
	w.lastSeen = v
	return nil
}
