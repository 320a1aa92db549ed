// Package timeutil measures wall-clock processing time behind an
// interface so runs can be timed deterministically in tests.
package timeutil

import (
	"sync"
	"time"
)

// Clock is the subset of the time package the pipeline and store use.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time                  { return time.Now() }
func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

// MockClock only moves when told to.
type MockClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewMockClock returns a MockClock reading t.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the current mock time and then moves it forward by the
// step set with SetStep.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// Since does not step the clock.
func (c *MockClock) Since(t time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(t)
}

// Set jumps to t.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// SetStep makes each Now call advance the clock by d.
func (c *MockClock) SetStep(d time.Duration) {
	c.mu.Lock()
	c.step = d
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Stopwatch counts processed frames against elapsed wall time.
type Stopwatch struct {
	clock  Clock
	start  time.Time
	frames int
}

// StartStopwatch starts timing now. A nil clock uses RealClock.
func StartStopwatch(c Clock) *Stopwatch {
	if c == nil {
		c = RealClock{}
	}
	return &Stopwatch{clock: c, start: c.Now()}
}

// Tick records one processed frame.
func (s *Stopwatch) Tick() { s.frames++ }

// Frames returns the number of ticks.
func (s *Stopwatch) Frames() int { return s.frames }

// Elapsed returns the wall time since the stopwatch started.
func (s *Stopwatch) Elapsed() time.Duration { return s.clock.Since(s.start) }

// Rate returns frames per second of wall time, or 0 before any time
// has passed.
func (s *Stopwatch) Rate() float64 {
	el := s.Elapsed()
	if el <= 0 {
		return 0
	}
	return float64(s.frames) / el.Seconds()
}
