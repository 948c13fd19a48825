package engine

import "time"

// Clock supplies the current instant to the tick loop and evaluator.
// Production code uses SystemClock; tests use testutil.FakeClock so the
// same scenario replays at any simulated time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
