package clock

import (
	"sync"
	"time"
)

// Timer counts down a fixed duration against a Clock. It does not fire on
// its own; callers poll Expired.
type Timer struct {
	clock    Clock
	duration time.Duration

	mu       sync.Mutex
	deadline time.Time
}

// NewTimer returns a timer with the full duration remaining.
func NewTimer(c Clock, d time.Duration) *Timer {
	return &Timer{clock: c, duration: d, deadline: c.Now().Add(d)}
}

// SetRemaining moves the deadline so that d remains from now.
func (t *Timer) SetRemaining(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deadline = t.clock.Now().Add(d)
}

// Remaining is never negative.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r := t.deadline.Sub(t.clock.Now()); r > 0 {
		return r
	}
	return 0
}

func (t *Timer) Expired() bool {
	return t.Remaining() == 0
}

// Reset restarts the countdown at the full duration.
func (t *Timer) Reset() {
	t.SetRemaining(t.duration)
}
