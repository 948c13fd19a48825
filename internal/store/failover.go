package store

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

// Failover serves from a primary store and falls back to a secondary when
// the primary is unreachable, transparently to the caller.
//
// Every call tries the primary first; there is no circuit breaker, so a
// recovered primary is picked up opportunistically on the very next
// operation. Errors that are semantic rather than infrastructural
// (ErrNotFound, the completed/failed exclusivity check) pass through
// untouched; only other primary failures trigger the fallback, wrapped as
// UnavailableError for the log.
//
// The two stores are not reconciled: whichever answered holds the write.
// That mirrors the product's offline mode: a non-fatal notice, not a
// sync protocol.
type Failover struct {
	primary  Store
	fallback Store
	offline  atomic.Bool
}

var _ Store = (*Failover)(nil)

// NewFailover wraps a primary and a fallback store.
func NewFailover(primary, fallback Store) *Failover {
	return &Failover{primary: primary, fallback: fallback}
}

// Offline reports whether the most recent operation was served by the
// fallback. The CLI renders this as the "offline mode" banner.
func (f *Failover) Offline() bool {
	return f.offline.Load()
}

// semantic reports whether err is a domain error that must pass through
// rather than trigger failover.
func semantic(err error) bool {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrTerminalConflict) {
		return true
	}
	if ve, ok := task.AsValidationError(err); ok && ve != nil {
		return true
	}
	return false
}

// fail records a primary failure and logs the switch once per transition.
func (f *Failover) fail(op string, err error) {
	if !f.offline.Swap(true) {
		slog.Warn("primary store unavailable, using fallback",
			"op", op, "error", &UnavailableError{Op: op, Err: err})
	}
}

// recover records a primary success.
func (f *Failover) recover() {
	if f.offline.Swap(false) {
		slog.Info("primary store recovered")
	}
}

func (f *Failover) List(ctx context.Context) ([]task.Task, error) {
	tasks, err := f.primary.List(ctx)
	if err == nil {
		f.recover()
		return tasks, nil
	}
	f.fail("list", err)
	return f.fallback.List(ctx)
}

func (f *Failover) ListByDate(ctx context.Context, date string) ([]task.Task, error) {
	tasks, err := f.primary.ListByDate(ctx, date)
	if err == nil {
		f.recover()
		return tasks, nil
	}
	f.fail("list-by-date", err)
	return f.fallback.ListByDate(ctx, date)
}

func (f *Failover) Get(ctx context.Context, id string) (task.Task, error) {
	t, err := f.primary.Get(ctx, id)
	if err == nil || semantic(err) {
		f.recover()
		return t, err
	}
	f.fail("get", err)
	return f.fallback.Get(ctx, id)
}

func (f *Failover) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	t, err := f.primary.Create(ctx, d)
	if err == nil {
		f.recover()
		return t, nil
	}
	f.fail("create", err)
	return f.fallback.Create(ctx, d)
}

func (f *Failover) Update(ctx context.Context, id string, p task.Patch) (task.Task, error) {
	t, err := f.primary.Update(ctx, id, p)
	if err == nil || semantic(err) {
		f.recover()
		return t, err
	}
	f.fail("update", err)
	return f.fallback.Update(ctx, id, p)
}

func (f *Failover) Delete(ctx context.Context, id string) error {
	err := f.primary.Delete(ctx, id)
	if err == nil || semantic(err) {
		f.recover()
		return err
	}
	f.fail("delete", err)
	return f.fallback.Delete(ctx, id)
}

func (f *Failover) GetMeta(ctx context.Context, key string) (string, error) {
	v, err := f.primary.GetMeta(ctx, key)
	if err == nil {
		f.recover()
		return v, nil
	}
	f.fail("get-meta", err)
	return f.fallback.GetMeta(ctx, key)
}

func (f *Failover) SetMeta(ctx context.Context, key, value string) error {
	err := f.primary.SetMeta(ctx, key, value)
	if err == nil {
		f.recover()
		return nil
	}
	f.fail("set-meta", err)
	return f.fallback.SetMeta(ctx, key, value)
}

// Close closes both stores, returning the first error.
func (f *Failover) Close() error {
	err1 := f.primary.Close()
	err2 := f.fallback.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
