package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/task"
)

func TestAdd_CreatesTask(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustExecute(t, "add", "Morning run", "--start", "09:00", "--end", "10:00",
		"--priority", "high", "--category", "fitness")
	assert.Contains(t, out, "Morning run")
	assert.Contains(t, out, "09:00-10:00")
	assert.Contains(t, out, "2025-03-10", "date defaults to today")
}

func TestAdd_JSONReturnsTask(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustExecute(t, "add", "Morning run", "--format", "json",
		"--start", "09:00", "--end", "10:00")

	var resp struct {
		Status string    `json:"status"`
		Data   task.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Data.ID)
	assert.Equal(t, "2025-03-10", resp.Data.ScheduledDate)
	assert.Equal(t, task.PriorityMedium, resp.Data.Priority, "priority defaults to medium")
	assert.False(t, resp.Data.Started)
}

func TestAdd_ValidationFailureListsFields(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.execute(t, "add", "Bad one", "--start", "9am", "--end", "25:00")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Invalid task:")
	assert.Contains(t, out, "scheduledTime")
	assert.Contains(t, out, "endTime")
}

func TestAdd_EqualTimesRejected(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.execute(t, "add", "Zero width", "--start", "10:00", "--end", "10:00")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAdd_RequiredFlags(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.execute(t, "add", "No times")
	require.Error(t, err)
}
