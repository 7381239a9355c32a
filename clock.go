package prism

import (
	"time"
)

// Clock tracks frame delta time and a once-per-second frame rate.
type Clock struct {
	Time time.Time
	Dt   time.Duration
	FPS  float64

	frames   int
	fpsSince time.Time
	now      func() time.Time
}

func NewClock() *Clock {
	return newClockWith(time.Now)
}

func newClockWith(now func() time.Time) *Clock {
	t := now()
	return &Clock{Time: t, fpsSince: t, now: now}
}

// Tick advances the clock and returns the time since the previous tick.
// The second result is true when FPS was refreshed by this tick.
func (c *Clock) Tick() (time.Duration, bool) {
	now := c.now()
	c.Dt = now.Sub(c.Time)
	c.Time = now

	c.frames++
	elapsed := now.Sub(c.fpsSince)
	if elapsed >= time.Second {
		c.FPS = float64(c.frames) / elapsed.Seconds()
		c.frames = 0
		c.fpsSince = now
		return c.Dt, true
	}
	return c.Dt, false
}
