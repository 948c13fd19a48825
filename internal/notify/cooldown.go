// Package notify turns engine milestone events into delivered reminders:
// a cooldown gate decides whether a reminder may fire at all, the
// dispatcher fetches body text and hands the result to a Notifier.
package notify

import (
	"sync"
	"time"
)

// Kind names a reminder milestone.
type Kind string

const (
	KindStart    Kind = "start"
	KindEnd      Kind = "end"
	KindPeriodic Kind = "periodic"
)

// DefaultCooldown is the minimum gap between two reminders for the same
// milestone key.
const DefaultCooldown = 3 * time.Minute

// Cooldown rate-limits reminders per milestone key. Start and end
// reminders are keyed per task; periodic reminders share one key so the
// daemon nags about at most one active task per window, whichever it is.
//
// Allow stamps before the caller delivers. A failed delivery therefore
// burns the window rather than retrying every tick, which is the point:
// the milestone flags on the task are the durable record, the cooldown
// only throttles.
type Cooldown struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewCooldown builds a gate with the given minimum gap.
func NewCooldown(window time.Duration, now func() time.Time) *Cooldown {
	if now == nil {
		now = time.Now
	}
	return &Cooldown{window: window, now: now, last: make(map[string]time.Time)}
}

func cooldownKey(kind Kind, taskID string) string {
	if kind == KindPeriodic {
		return string(kind)
	}
	return string(kind) + ":" + taskID
}

// Allow reports whether a reminder for (kind, taskID) may fire now, and
// stamps the attempt when it may.
func (c *Cooldown) Allow(kind Kind, taskID string) bool {
	key := cooldownKey(kind, taskID)
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if last, ok := c.last[key]; ok && now.Sub(last) < c.window {
		return false
	}
	c.last[key] = now
	return true
}
