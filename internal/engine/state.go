package engine

import (
	"fmt"
	"time"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

// Status is a task's derived position in its lifecycle.
type Status string

const (
	StatusWaiting      Status = "waiting"
	StatusReadyToStart Status = "ready-to-start"
	StatusInProgress   Status = "in-progress"
	StatusReadyToEnd   Status = "ready-to-end"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// Terminal reports whether the status is absorbing.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Options tunes the evaluator. The zero value is the canonical
// exact-boundary policy.
type Options struct {
	// Grace opens the start boundary early: a task reports ready-to-start
	// up to Grace before its window opens. It applies to the start
	// boundary only, never the end, and must default to zero.
	Grace time.Duration
}

// Evaluation is the full derived view of one task at one instant.
type Evaluation struct {
	Status    Status
	CanStart  bool
	CanEnd    bool
	Remaining string
	Window    task.Window

	// WriteBack, when non-empty, is a field update the caller must persist
	// exactly once. Emitted on the first tick where the window has closed
	// with the task never started; once the failed flag lands, subsequent
	// evaluations take the unconditional failed branch and emit nothing.
	WriteBack task.Patch
}

// Evaluate derives status, permitted actions, remaining-time label and any
// requested write-back for one task at one instant. Pure: no I/O, no
// mutation of t.
//
// Returns an error only when the task's stored times cannot be resolved,
// which validation makes unreachable for tasks that went through the entry
// gate; the tick loop logs and skips such a task rather than crashing.
func Evaluate(t task.Task, now time.Time, opts Options) (Evaluation, error) {
	w, err := t.ResolveWindow(now)
	if err != nil {
		return Evaluation{}, fmt.Errorf("resolve window for task %s: %w", t.ID, err)
	}

	ev := Evaluation{Window: w}

	switch {
	case t.Completed:
		ev.Status = StatusCompleted

	case t.Failed:
		ev.Status = StatusFailed

	case !now.Before(w.End) && !t.Started:
		// Window closed without the task ever starting.
		ev.Status = StatusFailed
		ev.WriteBack = task.FailPatch()

	case !now.Before(w.End) && t.Started:
		ev.Status = StatusReadyToEnd
		ev.CanEnd = true
		ev.Remaining = "Time up!"

	case w.Contains(now) && t.Started:
		ev.Status = StatusInProgress
		ev.CanEnd = true
		ev.Remaining = fmt.Sprintf("%dm left", ceilMinutes(w.End.Sub(now)))

	// now < w.End from here on; the two closed-window cases are above.
	case !now.Add(opts.Grace).Before(w.Start) && !t.Started:
		ev.Status = StatusReadyToStart
		ev.CanStart = true
		ev.Remaining = fmt.Sprintf("%dm to complete", ceilMinutes(w.End.Sub(now)))

	default:
		ev.Status = StatusWaiting
		ev.Remaining = waitingLabel(w.Start.Sub(now))
	}

	return ev, nil
}

// ceilMinutes rounds a duration up to whole minutes so the label never
// shows "0m" while time remains.
func ceilMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	m := int(d / time.Minute)
	if d%time.Minute != 0 {
		m++
	}
	return m
}

func waitingLabel(until time.Duration) string {
	minutes := ceilMinutes(until)
	if hours := minutes / 60; hours > 0 {
		return fmt.Sprintf("%dh %dm to start", hours, minutes%60)
	}
	return fmt.Sprintf("%dm to start", minutes)
}
