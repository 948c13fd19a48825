package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/codes-by-keshav/NotJustaToDoList/internal/testutil"
)

func TestCooldown_BlocksWithinWindow(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	c := NewCooldown(3*time.Minute, clock.Now)

	assert.True(t, c.Allow(KindStart, "t1"))
	assert.False(t, c.Allow(KindStart, "t1"), "second attempt inside the window")

	clock.Advance(2 * time.Minute)
	assert.False(t, c.Allow(KindStart, "t1"))

	clock.Advance(time.Minute)
	assert.True(t, c.Allow(KindStart, "t1"), "window elapsed")
}

func TestCooldown_KeysAreIndependent(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	c := NewCooldown(3*time.Minute, clock.Now)

	assert.True(t, c.Allow(KindStart, "t1"))
	assert.True(t, c.Allow(KindEnd, "t1"), "different milestone, same task")
	assert.True(t, c.Allow(KindStart, "t2"), "same milestone, different task")
}

func TestCooldown_PeriodicSharesOneKey(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	c := NewCooldown(3*time.Minute, clock.Now)

	assert.True(t, c.Allow(KindPeriodic, "t1"))
	assert.False(t, c.Allow(KindPeriodic, "t2"),
		"periodic reminders are throttled globally, not per task")
}

func TestCooldown_StampsEvenIfDeliveryFails(t *testing.T) {
	clock := testutil.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	c := NewCooldown(3*time.Minute, clock.Now)

	// Allow stamps immediately; the caller failing afterwards does not
	// reopen the window.
	assert.True(t, c.Allow(KindEnd, "t1"))
	clock.Advance(time.Second)
	assert.False(t, c.Allow(KindEnd, "t1"))
}
