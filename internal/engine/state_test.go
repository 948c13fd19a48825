package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

// at builds an instant on the fixed test day.
func at(hour, min int) time.Time {
	return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
}

func testTask(started, completed, failed bool) task.Task {
	return task.Task{
		ID:            "t1",
		Title:         "deep work",
		ScheduledTime: "09:00",
		EndTime:       "09:30",
		ScheduledDate: "2025-03-10",
		Started:       started,
		Completed:     completed,
		Failed:        failed,
	}
}

func TestEvaluate_StateTable(t *testing.T) {
	tests := []struct {
		name      string
		task      task.Task
		now       time.Time
		status    Status
		canStart  bool
		canEnd    bool
		writeBack bool
	}{
		{"waiting before window", testTask(false, false, false), at(8, 0), StatusWaiting, false, false, false},
		{"ready at exact open", testTask(false, false, false), at(9, 0), StatusReadyToStart, true, false, false},
		{"ready mid window", testTask(false, false, false), at(9, 15), StatusReadyToStart, true, false, false},
		{"in progress", testTask(true, false, false), at(9, 15), StatusInProgress, false, true, false},
		{"started waits before open", testTask(true, false, false), at(8, 59), StatusWaiting, false, false, false},
		{"ready to end at close", testTask(true, false, false), at(9, 30), StatusReadyToEnd, false, true, false},
		{"ready to end long after", testTask(true, false, false), at(23, 0), StatusReadyToEnd, false, true, false},
		{"auto fail at close unstarted", testTask(false, false, false), at(9, 30), StatusFailed, false, false, true},
		{"auto fail after close unstarted", testTask(false, false, false), at(10, 0), StatusFailed, false, false, true},
		{"completed absorbs past", testTask(true, true, false), at(23, 59), StatusCompleted, false, false, false},
		{"completed absorbs future", testTask(true, true, false), at(0, 1), StatusCompleted, false, false, false},
		{"failed absorbs", testTask(false, false, true), at(9, 15), StatusFailed, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Evaluate(tt.task, tt.now, Options{})
			require.NoError(t, err)

			assert.Equal(t, tt.status, ev.Status)
			assert.Equal(t, tt.canStart, ev.CanStart, "canStart")
			assert.Equal(t, tt.canEnd, ev.CanEnd, "canEnd")
			assert.Equal(t, tt.writeBack, !ev.WriteBack.Empty(), "writeBack presence")
			assert.False(t, ev.CanStart && ev.CanEnd, "canStart and canEnd are never both true")
		})
	}
}

func TestEvaluate_TerminalRegardlessOfClock(t *testing.T) {
	// Terminal flags dominate no matter where the clock sits, including
	// instants far outside the task's own day.
	times := []time.Time{
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		at(9, 15),
		time.Date(2099, 12, 31, 23, 59, 0, 0, time.UTC),
	}

	for _, now := range times {
		ev, err := Evaluate(testTask(true, true, false), now, Options{})
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, ev.Status)
		assert.True(t, ev.WriteBack.Empty())

		ev, err = Evaluate(testTask(false, false, true), now, Options{})
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, ev.Status)
		assert.True(t, ev.WriteBack.Empty())
	}
}

func TestEvaluate_AutoFailIdempotent(t *testing.T) {
	tk := testTask(false, false, false)
	now := at(9, 31)

	ev, err := Evaluate(tk, now, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, ev.Status)
	require.False(t, ev.WriteBack.Empty(), "first evaluation past close emits the write-back")

	// Apply the write-back and re-evaluate at the same instant: the task
	// now takes the unconditional failed branch and emits nothing.
	tk = ev.WriteBack.Apply(tk)
	ev2, err := Evaluate(tk, now, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, ev2.Status)
	assert.True(t, ev2.WriteBack.Empty(), "no further write-back after the flag lands")
}

func TestEvaluate_CrossDayTask(t *testing.T) {
	tk := task.Task{
		ID:            "night",
		Title:         "night shift",
		ScheduledTime: "23:00",
		EndTime:       "01:00",
		ScheduledDate: "2025-03-10",
		Started:       true,
	}

	// 00:30 on the 11th is inside the window that opened at 23:00 on the 10th.
	ev, err := Evaluate(tk, time.Date(2025, 3, 11, 0, 30, 0, 0, time.UTC), Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, ev.Status)
	assert.Equal(t, 2*time.Hour, ev.Window.Duration())

	// 01:00 on the 11th closes it.
	ev, err = Evaluate(tk, time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC), Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusReadyToEnd, ev.Status)
}

func TestEvaluate_EndToEndScenario(t *testing.T) {
	tk := task.Task{
		ID:            "t1",
		Title:         "standup",
		ScheduledTime: "09:00",
		EndTime:       "09:30",
		ScheduledDate: "2025-03-10",
	}

	ev, err := Evaluate(tk, at(9, 15), Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusReadyToStart, ev.Status)
	assert.True(t, ev.CanStart)

	ev, err = Evaluate(tk, at(9, 31), Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, ev.Status)
	require.False(t, ev.WriteBack.Empty())
	assert.NotNil(t, ev.WriteBack.Failed)
	assert.True(t, *ev.WriteBack.Failed)
}

func TestEvaluate_GraceOpensStartEarly(t *testing.T) {
	tk := testTask(false, false, false)
	grace := Options{Grace: 5 * time.Minute}

	// Exact-boundary default: 08:56 is still waiting.
	ev, err := Evaluate(tk, at(8, 56), Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, ev.Status)

	// With a 5m grace the start boundary opens early...
	ev, err = Evaluate(tk, at(8, 56), grace)
	require.NoError(t, err)
	assert.Equal(t, StatusReadyToStart, ev.Status)
	assert.True(t, ev.CanStart)

	// ...but the end boundary is untouched: grace is start-only.
	ev, err = Evaluate(tk, at(9, 29), grace)
	require.NoError(t, err)
	assert.Equal(t, StatusReadyToStart, ev.Status)
	ev, err = Evaluate(tk, at(9, 30), grace)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, ev.Status, "auto-fail still lands at the exact end")
}

func TestEvaluate_RemainingLabels(t *testing.T) {
	tk := testTask(false, false, false)

	ev, err := Evaluate(tk, at(7, 30), Options{})
	require.NoError(t, err)
	assert.Equal(t, "1h 30m to start", ev.Remaining)

	ev, err = Evaluate(tk, at(8, 55), Options{})
	require.NoError(t, err)
	assert.Equal(t, "5m to start", ev.Remaining)

	ev, err = Evaluate(tk, at(9, 10), Options{})
	require.NoError(t, err)
	assert.Equal(t, "20m to complete", ev.Remaining)

	started := testTask(true, false, false)
	ev, err = Evaluate(started, at(9, 10), Options{})
	require.NoError(t, err)
	assert.Equal(t, "20m left", ev.Remaining)

	// Ceiling: 19m30s remaining still reads 20m, never 19m-and-change
	// rounding down to a premature zero.
	ev, err = Evaluate(started, at(9, 10).Add(30*time.Second), Options{})
	require.NoError(t, err)
	assert.Equal(t, "20m left", ev.Remaining)

	ev, err = Evaluate(started, at(9, 30), Options{})
	require.NoError(t, err)
	assert.Equal(t, "Time up!", ev.Remaining)
}

func TestEvaluate_MalformedTimeFails(t *testing.T) {
	tk := testTask(false, false, false)
	tk.ScheduledTime = "nine"

	_, err := Evaluate(tk, at(9, 0), Options{})
	require.Error(t, err)
	assert.True(t, task.IsTimeFormatError(err), "the engine surfaces the typed error, it never coerces")
}
