// Package task defines the timetable's only persistent entity and the
// rules that gate it.
//
// A Task is a time-boxed block of a single day: a start and end written as
// wall-clock "HH:MM" values, the calendar date the start falls on, and a
// small set of lifecycle flags (started, completed, failed). Times carry no
// date component; resolving them against a concrete date is what turns a
// task into something the engine can evaluate (see ResolveWindow).
//
// # Cross-day tasks
//
// A pair where the end is not strictly after the start wraps past midnight:
// the effective end is on the following calendar date. "23:00" -> "01:00"
// is a two hour task, not minus twenty-two.
//
// # Invariants
//
//   - At most one of completed/failed is true at any time.
//   - The effective end instant is strictly after the effective start.
//   - Tasks reach storage only through Validate; the engine treats a
//     malformed time string as an invariant violation, not user error.
package task
