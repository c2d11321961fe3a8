package utils

import "time"

// Throttle admits at most one event per Interval.
// It is driven by caller-supplied timestamps so it behaves the same under a
// real clock and in tests.
type Throttle struct {
	Interval time.Duration

	last   time.Time
	primed bool
}

// NewThrottle creates a Throttle with the given minimum interval.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{Interval: interval}
}

// Allow reports whether an event at now may pass, and records it if so.
func (t *Throttle) Allow(now time.Time) bool {
	if t.primed && now.Sub(t.last) < t.Interval {
		return false
	}
	t.last = now
	t.primed = true
	return true
}

// Reset forgets the last admitted event.
func (t *Throttle) Reset() {
	t.primed = false
	t.last = time.Time{}
}
