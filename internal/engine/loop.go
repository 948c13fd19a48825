package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/schedule"
	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

// Store is the slice of the task store the tick loop needs: reading the
// full set and persisting field patches (auto-fail and reminder dedup
// flags).
type Store interface {
	List(ctx context.Context) ([]task.Task, error)
	Update(ctx context.Context, id string, p task.Patch) (task.Task, error)
}

// Reminders consumes milestone transitions. Implementations must not
// block the tick path; the notify dispatcher applies its own cooldown and
// falls back to static text when content generation fails.
type Reminders interface {
	TaskStart(ctx context.Context, t task.Task)
	TaskEnd(ctx context.Context, t task.Task)
	Periodic(ctx context.Context, t task.Task)
}

// DefaultTickInterval is the state re-evaluation resolution.
const DefaultTickInterval = time.Second

// DefaultRefreshInterval bounds how stale the in-memory list can be with
// respect to edits made by other processes (the CLI commands write to the
// same database the daemon reads).
const DefaultRefreshInterval = 5 * time.Second

// Engine owns the tick loop. All task-state recomputation for a given tick
// runs synchronously inside Run's goroutine and finishes before the next
// tick is taken; the in-memory today list is the single source of truth
// for one tick's evaluation.
type Engine struct {
	store     Store
	clock     Clock
	reminders Reminders
	opts      Options

	tickEvery    time.Duration
	refreshEvery time.Duration

	// rollover delivers a signal when the calendar date changes; the loop
	// responds with a full refetch+refilter.
	rollover <-chan string

	today []task.Task
}

// Option configures an Engine.
type Option func(*Engine)

// WithTickInterval overrides the 1s evaluation resolution.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) { e.tickEvery = d }
}

// WithRefreshInterval overrides how often the today list is refetched to
// pick up edits from other processes.
func WithRefreshInterval(d time.Duration) Option {
	return func(e *Engine) { e.refreshEvery = d }
}

// WithGrace sets the evaluator's start-boundary grace window.
func WithGrace(d time.Duration) Option {
	return func(e *Engine) { e.opts.Grace = d }
}

// WithRollover wires the day-rollover watcher's signal channel.
func WithRollover(ch <-chan string) Option {
	return func(e *Engine) { e.rollover = ch }
}

// New creates an Engine. reminders may be nil when notifications are
// disabled; milestone transitions are then still recorded on the task
// (notified flags) but nothing is dispatched.
func New(store Store, clock Clock, reminders Reminders, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		clock:        clock,
		reminders:    reminders,
		tickEvery:    DefaultTickInterval,
		refreshEvery: DefaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today returns the current in-memory today list. Only safe from the Run
// goroutine or before Run starts; exposed for tests and the run command's
// startup log.
func (e *Engine) Today() []task.Task {
	return e.today
}

// Refresh refetches the stored task set and refilters it to today.
// Called at startup, on day rollover, and on the refresh ticker.
func (e *Engine) Refresh(ctx context.Context) error {
	all, err := e.store.List(ctx)
	if err != nil {
		return err
	}
	now := e.clock.Now()
	e.today = schedule.ForDay(all, now)
	slog.Debug("task list refreshed", "total", len(all), "today", len(e.today))
	return nil
}

// Run starts the tick loop and blocks until the context is cancelled.
//
// Must be called from exactly one goroutine. Per tick, every task in the
// today list is evaluated; write-backs are persisted and reflected into
// the in-memory list in the same tick, so there is no tick where the
// reported status and the queued write disagree.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting", "tick", e.tickEvery, "grace", e.opts.Grace)

	if err := e.Refresh(ctx); err != nil {
		return err
	}

	tick := time.NewTicker(e.tickEvery)
	defer tick.Stop()
	refresh := time.NewTicker(e.refreshEvery)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			return ctx.Err()

		case day := <-e.rollover:
			slog.Info("day changed, refreshing schedule", "today", day)
			if err := e.Refresh(ctx); err != nil {
				slog.Error("rollover refresh failed", "error", err)
			}

		case <-refresh.C:
			if err := e.Refresh(ctx); err != nil {
				slog.Error("refresh failed", "error", err)
			}

		case <-tick.C:
			e.Tick(ctx)
		}
	}
}

// Tick evaluates every task in the today list at the current instant.
// Exported so tests (and the run command's startup pass) can drive the
// loop with a fake clock instead of waiting on real tickers.
func (e *Engine) Tick(ctx context.Context) {
	now := e.clock.Now()
	for i := range e.today {
		e.evaluateOne(ctx, i, now)
	}
}

// evaluateOne evaluates a single task and handles its side effects:
// write-back persistence and milestone dispatch. Evaluation failure on one
// task is logged and skipped; it never kills the tick.
func (e *Engine) evaluateOne(ctx context.Context, i int, now time.Time) {
	t := e.today[i]

	ev, err := Evaluate(t, now, e.opts)
	if err != nil {
		// Unreachable for tasks that went through validation; a stored
		// task tripping this is a programming error, not user input.
		slog.Error("task evaluation failed, skipping", "task", t.ID, "title", t.Title, "error", err)
		return
	}

	// Write-back first: the persisted flag and the reported status must
	// agree within this same tick.
	if !ev.WriteBack.Empty() {
		e.persist(ctx, i, ev.WriteBack)
		slog.Info("task auto-failed: window closed unstarted",
			"task", t.ID, "title", t.Title, "end", ev.Window.End)
	}

	switch {
	case ev.Status == StatusReadyToStart && !t.NotifiedStart:
		if e.reminders != nil {
			e.reminders.TaskStart(ctx, t)
		}
		e.persist(ctx, i, task.NotifiedStartPatch())

	case ev.Status == StatusReadyToEnd && !t.NotifiedEnd:
		if e.reminders != nil {
			e.reminders.TaskEnd(ctx, t)
		}
		e.persist(ctx, i, task.NotifiedEndPatch())

	case ev.Status == StatusInProgress:
		if e.reminders != nil {
			e.reminders.Periodic(ctx, t)
		}
	}
}

// persist applies a patch through the store and reflects the result into
// the in-memory list so the next evaluation never sees a stale copy. A
// store failure leaves the in-memory copy patched anyway: the next
// successful refresh reconciles, and re-emitting a write-back for a flag
// that failed to land is harmless by idempotence.
func (e *Engine) persist(ctx context.Context, i int, p task.Patch) {
	t := e.today[i]
	updated, err := e.store.Update(ctx, t.ID, p)
	if err != nil {
		slog.Error("write-back failed", "task", t.ID, "error", err)
		e.today[i] = p.Apply(t)
		return
	}
	e.today[i] = updated
}
