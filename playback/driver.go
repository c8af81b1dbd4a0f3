package playback

import (
	"time"
)

// WallClock provides the current time. Tests substitute a fixed clock.
type WallClock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns a WallClock backed by the time package.
func SystemClock() WallClock {
	return systemClock{}
}

// A RenderFunc draws the timeline at frame.
type RenderFunc func(frame float64)

// Driver turns wall-clock ticks into Clock advances and calls the render hook
// once per advanced tick.
type Driver struct {
	clock  *Clock
	render RenderFunc
	wall   WallClock

	previous time.Time
	primed   bool
	run      uint64
}

// NewDriver creates a Driver for clock. render may be nil.
func NewDriver(clock *Clock, render RenderFunc, wall WallClock) *Driver {
	d := new(Driver)
	d.clock = clock
	d.render = render
	d.wall = wall
	if d.wall == nil {
		d.wall = SystemClock()
	}
	return d
}

// Tick handles one display tick at now. It reports whether the clock moved.
// Ticks that arrive while stopped are dropped and the first tick after a
// restart only records its timestamp.
func (d *Driver) Tick(now time.Time) bool {
	if !d.clock.IsPlaying() {
		d.primed = false
		return false
	}
	if !d.primed || d.run != d.clock.run {
		d.previous = now
		d.primed = true
		d.run = d.clock.run
		return false
	}

	delta := now.Sub(d.previous)
	d.previous = now
	frame := d.clock.Advance(float64(delta) / float64(time.Millisecond))

	if d.render != nil {
		d.render(frame)
	}
	return true
}

// TickNow ticks at the current wall-clock time.
func (d *Driver) TickNow() bool {
	return d.Tick(d.wall.Now())
}
