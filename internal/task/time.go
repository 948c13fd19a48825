package task

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used everywhere a date is stored
// or compared ("YYYY-MM-DD").
const DateLayout = "2006-01-02"

// ClockTime is a wall-clock time of day with minute resolution and no date
// component. The zero value is midnight.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses a strict 24-hour "HH:MM" string.
//
// The format is exactly two digits, a colon, two digits: the same shape
// the entry forms produce. Anything else (including "9:00" or "24:00")
// returns a TimeFormatError; nothing is coerced.
func ParseClockTime(s string) (ClockTime, error) {
	if len(s) != 5 || s[2] != ':' {
		return ClockTime{}, &TimeFormatError{Value: s}
	}
	var h, m int
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return ClockTime{}, &TimeFormatError{Value: s}
		}
	}
	h = int(s[0]-'0')*10 + int(s[1]-'0')
	m = int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return ClockTime{}, &TimeFormatError{Value: s}
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

// String renders the time back to "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MinuteOfDay returns the minute offset from midnight, 0..1439.
func (c ClockTime) MinuteOfDay() int {
	return c.Hour*60 + c.Minute
}

// On resolves the clock time against a calendar date in date's location.
func (c ClockTime) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, date.Location())
}

// Format12 renders the time in 12-hour form for display ("2:05 PM").
func (c ClockTime) Format12() string {
	period := "AM"
	hour := c.Hour
	if hour >= 12 {
		period = "PM"
	}
	switch {
	case hour == 0:
		hour = 12
	case hour > 12:
		hour -= 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, c.Minute, period)
}

// Window is a task's schedule resolved to absolute instants. End is always
// strictly after Start; the cross-day wrap has already been applied.
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration returns the resolved length of the window.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether now is inside [Start, End).
func (w Window) Contains(now time.Time) bool {
	return !now.Before(w.Start) && now.Before(w.End)
}

// CrossesMidnight reports whether an end time-of-day that is not strictly
// after the start time-of-day wraps to the next calendar date.
func CrossesMidnight(start, end ClockTime) bool {
	return end.MinuteOfDay() <= start.MinuteOfDay()
}

// ResolveWindow resolves a start/end time-of-day pair against a calendar
// date into absolute instants, applying the cross-day rule: when the
// resolved end is not strictly after the resolved start, the end moves to
// the following date.
//
// This is computed once per evaluation; everything downstream works with
// the resolved instants rather than re-slicing time strings.
func ResolveWindow(startStr, endStr string, date time.Time) (Window, error) {
	start, err := ParseClockTime(startStr)
	if err != nil {
		return Window{}, fmt.Errorf("scheduled time: %w", err)
	}
	end, err := ParseClockTime(endStr)
	if err != nil {
		return Window{}, fmt.Errorf("end time: %w", err)
	}

	w := Window{Start: start.On(date), End: end.On(date)}
	if !w.End.After(w.Start) {
		w.End = w.End.AddDate(0, 0, 1)
	}
	return w, nil
}

// ResolveWindow resolves the task's schedule against its own ScheduledDate,
// or against the date of now when the task carries no date.
func (t *Task) ResolveWindow(now time.Time) (Window, error) {
	base := now
	if t.ScheduledDate != "" {
		parsed, err := time.ParseInLocation(DateLayout, t.ScheduledDate, now.Location())
		if err != nil {
			return Window{}, fmt.Errorf("scheduled date %q: %w", t.ScheduledDate, err)
		}
		base = parsed
	}
	return ResolveWindow(t.ScheduledTime, t.EndTime, base)
}

// CrossDay reports whether the task wraps past midnight. Malformed times
// report false; they never get past validation anyway.
func (t *Task) CrossDay() bool {
	start, err := ParseClockTime(t.ScheduledTime)
	if err != nil {
		return false
	}
	end, err := ParseClockTime(t.EndTime)
	if err != nil {
		return false
	}
	return CrossesMidnight(start, end)
}

// DateOf formats an instant as a calendar date string in its location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}
