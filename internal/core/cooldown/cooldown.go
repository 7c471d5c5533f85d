package cooldown

import (
	"sync"
	"time"
)

// Clock supplies the current instant. Game code never calls time.Now
// directly so tests can move time by hand.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock (monotonic reading included).
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Timer is an interval gate: armed at an instant with a duration, it reports
// ready once the duration has elapsed. A zero Timer is ready.
type Timer struct {
	start    time.Time
	duration time.Duration
}

// New returns an unarmed timer that remembers d for later Arm calls.
func New(d time.Duration) Timer {
	return Timer{duration: d}
}

// Ready reports whether the armed interval has elapsed at now.
func (t Timer) Ready(now time.Time) bool {
	if t.start.IsZero() {
		return true
	}
	return !now.Before(t.start.Add(t.duration))
}

// Remaining returns how long until Ready, or 0.
func (t Timer) Remaining(now time.Time) time.Duration {
	if t.start.IsZero() {
		return 0
	}
	left := t.start.Add(t.duration).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Arm starts the interval at now using the timer's duration.
func (t *Timer) Arm(now time.Time) {
	t.start = now
}

// Rearm starts a new interval at now with a different duration.
func (t *Timer) Rearm(now time.Time, d time.Duration) {
	t.start = now
	t.duration = d
}

// Reset makes the timer ready again.
func (t *Timer) Reset() {
	t.start = time.Time{}
}

func (t Timer) Duration() time.Duration { return t.duration }
