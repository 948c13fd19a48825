package task

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// MaxDuration is the longest a single task may run. A task may wrap past
// midnight but may not span more than one full day.
const MaxDuration = 24 * time.Hour

// Validate checks a draft against the entry-gate contract and returns the
// cleaned draft on success:
//
//   - title non-empty after trimming (and NFC-normalized)
//   - scheduled and end times both valid 24-hour "HH:MM"
//   - resolved duration (cross-day wrap applied) > 0 and <= 24h
//   - priority and category, when set, are known values
//
// On failure the returned error is a *ValidationError keyed by field name.
// Nothing reaching the store skips this gate, which is what lets the
// engine treat a malformed stored time as an invariant violation.
func Validate(d Draft) (Draft, error) {
	fields := make(map[string]string)

	d.Title = strings.TrimSpace(norm.NFC.String(d.Title))
	if d.Title == "" {
		fields["title"] = "task title is required"
	}

	start, startErr := ParseClockTime(d.ScheduledTime)
	if startErr != nil {
		if d.ScheduledTime == "" {
			fields["scheduledTime"] = "start time is required"
		} else {
			fields["scheduledTime"] = "start time must be HH:MM (24-hour)"
		}
	}
	end, endErr := ParseClockTime(d.EndTime)
	if endErr != nil {
		if d.EndTime == "" {
			fields["endTime"] = "end time is required"
		} else {
			fields["endTime"] = "end time must be HH:MM (24-hour)"
		}
	}

	if startErr == nil && endErr == nil {
		// The pair is a directed interval; equal times resolve to a full
		// 24h wrap, which the <= MaxDuration check still admits. Only a
		// degenerate zero-length interval is impossible to produce here,
		// so reject equal times explicitly.
		if start == end {
			fields["endTime"] = "end time must differ from start time"
		}
	}

	if d.ScheduledDate != "" {
		if _, err := time.Parse(DateLayout, d.ScheduledDate); err != nil {
			fields["scheduledDate"] = "date must be YYYY-MM-DD"
		}
	}

	if d.Priority == "" {
		d.Priority = PriorityMedium
	} else if !d.Priority.Valid() {
		fields["priority"] = "priority must be low, medium or high"
	}

	if d.Category == "" {
		d.Category = CategoryPersonal
	} else if !d.Category.Valid() {
		fields["category"] = "unknown category"
	}

	if len(fields) > 0 {
		return d, &ValidationError{Fields: fields}
	}
	return d, nil
}

// Materialize turns a validated draft into a Task with fresh lifecycle
// flags. The store fills in ID, CreatedAt and UpdatedAt; callers that need
// a default date resolve it against now first.
func Materialize(d Draft, defaultDate string) Task {
	date := d.ScheduledDate
	if date == "" {
		date = defaultDate
	}
	return Task{
		Title:         d.Title,
		Description:   d.Description,
		ScheduledTime: d.ScheduledTime,
		EndTime:       d.EndTime,
		ScheduledDate: date,
		Priority:      d.Priority,
		Category:      d.Category,
	}
}
