// Package schedule selects and orders the tasks that belong to a given
// day, and watches for the day changing underneath a long-lived process.
package schedule

import (
	"sort"
	"time"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

// ForDay returns the ordered subset of tasks live on the day of now.
//
// A task is included when its scheduled date is today, or when it is a
// cross-day task scheduled yesterday, a block that began yesterday
// evening and wraps into this morning is still live today.
//
// Ordering: yesterday's carry-overs sort before any proper today task
// (they are already in progress or imminent relative to a same-minute
// today task), then scheduled time ascending, with id as a deterministic
// tiebreak for equal times.
func ForDay(all []task.Task, now time.Time) []task.Task {
	today := task.DateOf(now)
	yesterday := task.DateOf(now.AddDate(0, 0, -1))

	var out []task.Task
	for _, t := range all {
		switch t.ScheduledDate {
		case today:
			out = append(out, t)
		case yesterday:
			if t.CrossDay() {
				out = append(out, t)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ScheduledDate != b.ScheduledDate {
			// Dates differ only between yesterday and today here; the
			// earlier date (the carry-over) wins.
			return a.ScheduledDate < b.ScheduledDate
		}
		if a.ScheduledTime != b.ScheduledTime {
			return minuteOf(a.ScheduledTime) < minuteOf(b.ScheduledTime)
		}
		return a.ID < b.ID
	})

	return out
}

// minuteOf orders "HH:MM" strings numerically. Malformed times sort last;
// they cannot get past validation but the comparator must stay total.
func minuteOf(s string) int {
	ct, err := task.ParseClockTime(s)
	if err != nil {
		return 24 * 60
	}
	return ct.MinuteOfDay()
}
