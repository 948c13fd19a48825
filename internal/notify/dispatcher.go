package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/quote"
	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

// DefaultCacheTTL bounds how long one generated line is reused before a
// fresh generation is attempted.
const DefaultCacheTTL = 10 * time.Minute

type cachedLine struct {
	line string
	at   time.Time
}

// Dispatcher consumes engine milestone events and delivers reminders.
// Body text comes from the quote generator through a per-milestone TTL
// cache; any generation failure degrades to a static line. Nothing in the
// dispatch path returns an error to the engine: delivery problems are
// logged and swallowed.
type Dispatcher struct {
	enabled  bool
	cooldown *Cooldown
	gen      quote.Generator
	notifier Notifier
	now      func() time.Time
	cacheTTL time.Duration

	mu    sync.Mutex
	cache map[Kind]cachedLine
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithGenerator sets the quote source. Without one every reminder uses
// the static fallback lines.
func WithGenerator(g quote.Generator) DispatcherOption {
	return func(d *Dispatcher) { d.gen = g }
}

// WithCooldown replaces the default 3 minute gate.
func WithCooldown(c *Cooldown) DispatcherOption {
	return func(d *Dispatcher) { d.cooldown = c }
}

// WithEnabled toggles delivery. A disabled dispatcher drops every event,
// mirroring a user who never granted notification permission.
func WithEnabled(enabled bool) DispatcherOption {
	return func(d *Dispatcher) { d.enabled = enabled }
}

// WithCacheTTL overrides how long generated lines are reused.
func WithCacheTTL(ttl time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.cacheTTL = ttl }
}

// WithDispatcherNow overrides the clock source (tests).
func WithDispatcherNow(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher builds an enabled dispatcher delivering through n.
func NewDispatcher(n Notifier, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		enabled:  true,
		notifier: n,
		now:      time.Now,
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[Kind]cachedLine),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.cooldown == nil {
		d.cooldown = NewCooldown(DefaultCooldown, d.now)
	}
	return d
}

// TaskStart announces that a task's window has opened.
func (d *Dispatcher) TaskStart(ctx context.Context, t task.Task) {
	d.dispatch(ctx, KindStart, "Ready to start: "+t.Title, "start-"+t.ID, t)
}

// TaskEnd announces that a started task's window has closed.
func (d *Dispatcher) TaskEnd(ctx context.Context, t task.Task) {
	d.dispatch(ctx, KindEnd, "Time to complete: "+t.Title, "end-"+t.ID, t)
}

// Periodic nags about the task currently in progress.
func (d *Dispatcher) Periodic(ctx context.Context, t task.Task) {
	d.dispatch(ctx, KindPeriodic, "Working on: "+t.Title, "task-"+t.ID, t)
}

func (d *Dispatcher) dispatch(ctx context.Context, kind Kind, title, tag string, t task.Task) {
	if !d.enabled {
		return
	}
	if !d.cooldown.Allow(kind, t.ID) {
		return
	}

	body := d.body(ctx, kind)
	if err := d.notifier.Show(title, body, tag); err != nil {
		slog.Error("reminder delivery failed",
			"kind", kind, "task", t.ID, "error", err)
		return
	}
	slog.Debug("reminder delivered", "kind", kind, "task", t.ID)
}

// body returns the reminder text for a milestone: cached line while
// fresh, then a new generation, then the static fallback.
func (d *Dispatcher) body(ctx context.Context, kind Kind) string {
	now := d.now()

	d.mu.Lock()
	if c, ok := d.cache[kind]; ok && now.Sub(c.at) < d.cacheTTL {
		d.mu.Unlock()
		return c.line
	}
	d.mu.Unlock()

	if d.gen == nil {
		return fallbackLine(kind)
	}
	line, err := d.gen.Generate(ctx, quote.Prompt)
	if err != nil {
		slog.Debug("quote generation failed, using fallback",
			"kind", kind, "error", err)
		return fallbackLine(kind)
	}

	d.mu.Lock()
	d.cache[kind] = cachedLine{line: line, at: now}
	d.mu.Unlock()
	return line
}

func fallbackLine(kind Kind) string {
	switch kind {
	case KindStart:
		return quote.FallbackStart
	case KindEnd:
		return quote.FallbackEnd
	default:
		return quote.FallbackPeriodic
	}
}
