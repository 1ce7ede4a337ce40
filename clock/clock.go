// Package clock measures frame time for the animation loop.
package clock

import (
	"sync"
	"time"
)

// Source reports the time since some fixed origin.
type Source interface {
	Now() time.Duration
}

// System reads the monotonic wall clock.
type System struct {
	origin time.Time
}

// NewSystem returns a source whose origin is the moment of the call.
func NewSystem() *System {
	return &System{origin: time.Now()}
}

// Now implements Source.
func (s *System) Now() time.Duration {
	return time.Since(s.origin)
}

// Manual is a source moved only by its owner. Safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Duration
}

// Now implements Source.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the source forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
}

// Set moves the source to d, which may be earlier than the current time.
func (m *Manual) Set(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = d
}

// Fixed advances by one step on every call to Now. Headless runs use it to
// get reproducible frame timing.
type Fixed struct {
	step time.Duration
	n    int64
}

// NewFixed returns a fixed-step source. A non-positive step means 1/60 s.
func NewFixed(step time.Duration) *Fixed {
	if step <= 0 {
		step = time.Second / 60
	}
	return &Fixed{step: step}
}

// Now implements Source.
func (f *Fixed) Now() time.Duration {
	d := time.Duration(f.n) * f.step
	f.n++
	return d
}

// Step returns the step size.
func (f *Fixed) Step() time.Duration {
	return f.step
}

// Clock turns source readings into elapsed and delta seconds.
type Clock struct {
	src      Source
	maxDelta float64

	started bool
	last    time.Duration
	elapsed float64
	frames  uint64
}

// New creates a clock. A nil source uses the system clock.
func New(src Source) *Clock {
	if src == nil {
		src = NewSystem()
	}
	return &Clock{src: src}
}

// SetMaxDelta caps the delta reported by a single tick, in seconds.
// Zero disables the cap.
func (c *Clock) SetMaxDelta(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	c.maxDelta = seconds
}

// Tick reads the source and returns the seconds elapsed since the first tick
// and the seconds since the previous tick. The first tick returns (0, 0).
// Both values are non-negative and elapsed never decreases: a source that
// jumps backwards yields a zero delta and re-anchors on the new reading.
func (c *Clock) Tick() (elapsed, delta float64) {
	now := c.src.Now()
	c.frames++

	if !c.started {
		c.started = true
		c.last = now
		return 0, 0
	}

	if now > c.last {
		delta = (now - c.last).Seconds()
	}
	c.last = now

	if c.maxDelta > 0 && delta > c.maxDelta {
		delta = c.maxDelta
	}
	c.elapsed += delta
	return c.elapsed, delta
}

// Elapsed returns the elapsed seconds as of the last tick.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}

// Frames returns the number of ticks so far.
func (c *Clock) Frames() uint64 {
	return c.frames
}
