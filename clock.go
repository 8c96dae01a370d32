package noboiler

import "time"

// Clock is a source of the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// FrameClock measures the interval between redraw cycles.
//
// The first Tick has no previous instant to measure against and reports a
// delta and FPS of zero. FPS is the reciprocal of the most recent interval
// with no averaging.
type FrameClock struct {
	clock   Clock
	started bool
	start   time.Time
	last    time.Time
	delta   time.Duration
	fps     float64
	frames  uint64
}

// NewFrameClock returns a FrameClock reading time from c, or from the wall
// clock when c is nil.
func NewFrameClock(c Clock) *FrameClock {
	if c == nil {
		c = SystemClock()
	}
	return &FrameClock{clock: c}
}

// Tick records a new frame.
func (c *FrameClock) Tick() {
	now := c.clock.Now()
	c.frames++
	if !c.started {
		c.started = true
		c.start = now
		c.last = now
		c.delta = 0
		c.fps = 0
		return
	}
	d := now.Sub(c.last)
	if d <= 0 {
		// coarse timers can report the same instant twice
		d = time.Nanosecond
	}
	c.delta = d
	c.fps = 1 / d.Seconds()
	c.last = now
}

// Delta is the last frame interval in seconds.
func (c *FrameClock) Delta() float64 { return c.delta.Seconds() }

// DeltaDuration is the last frame interval.
func (c *FrameClock) DeltaDuration() time.Duration { return c.delta }

// FPS is the reciprocal of the last frame interval.
func (c *FrameClock) FPS() float64 { return c.fps }

// Frames is the number of ticks so far.
func (c *FrameClock) Frames() uint64 { return c.frames }

// Elapsed is the time from the first tick to the latest one.
func (c *FrameClock) Elapsed() time.Duration {
	if !c.started {
		return 0
	}
	return c.last.Sub(c.start)
}
