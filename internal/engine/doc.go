// Package engine derives task state from the clock.
//
// The core is Evaluate: a pure function of (task, now) producing the
// task's status, the actions currently permitted, a human-readable
// remaining-time label, and at most one requested write-back (today:
// auto-fail for a task whose window closed unstarted). Evaluate never
// touches I/O; the caller persists the write-back exactly once.
//
// Around the evaluator sits a single-goroutine tick loop (Engine.Run)
// that re-evaluates today's tasks once per tick, persists write-backs
// through the store before the tick's results are acted on, and hands
// milestone transitions to the reminder dispatcher. All mutations to the
// in-memory task list happen in the Run goroutine.
//
// # State table
//
// Entry conditions, checked in priority order; completed and failed are
// absorbing:
//
//	completed       task.Completed
//	failed          task.Failed
//	failed (auto)   now >= end && !started           (write-back {failed:true})
//	ready-to-end    started && now >= end
//	in-progress     start <= now < end && started
//	ready-to-start  start <= now < end && !started
//	waiting         now < start
//
// The canonical policy is exact-boundary: a task becomes actionable the
// instant its window opens. A configurable grace window may open the start
// boundary early, and defaults to zero.
package engine
