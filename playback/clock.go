package playback

import (
	"fmt"
	"math"

	"github.com/matt-g-everett/keyframer/keyframe"
)

// ErrInvalidArgument is returned for a bad frame rate or frame count.
var ErrInvalidArgument = keyframe.ErrInvalidArgument

// State is the play state of a Clock.
type State int

const (
	// Stopped clocks ignore Advance.
	Stopped State = iota
	// Playing clocks move forward on every Advance.
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// Status is a point-in-time copy of a Clock.
type Status struct {
	CurrentFrame float64 `json:"currentFrame"`
	TotalFrames  int     `json:"totalFrames"`
	FPS          float64 `json:"fps"`
	Playing      bool    `json:"isPlaying"`
	Loop         bool    `json:"loopEnabled"`
}

// Clock moves a virtual current frame through [0, totalFrames] in real time.
type Clock struct {
	currentFrame float64
	totalFrames  int
	fps          float64
	state        State
	loop         bool
	run          uint64
}

func validFPS(fps float64) bool {
	return fps > 0 && !math.IsInf(fps, 0)
}

// NewClock creates a stopped Clock at frame 0.
func NewClock(totalFrames int, fps float64, loop bool) (*Clock, error) {
	if totalFrames < 0 {
		return nil, fmt.Errorf("%w: total frames %d", ErrInvalidArgument, totalFrames)
	}
	if !validFPS(fps) {
		return nil, fmt.Errorf("%w: fps %v", ErrInvalidArgument, fps)
	}

	c := new(Clock)
	c.totalFrames = totalFrames
	c.fps = fps
	c.loop = loop
	c.state = Stopped
	return c, nil
}

// TotalFramesFor converts a duration in seconds to a frame count.
func TotalFramesFor(durationSecs, fps float64) int {
	return int(math.Round(durationSecs * fps))
}

// Play starts playback. It does nothing and returns false when there are no
// frames to play.
func (c *Clock) Play() bool {
	if c.totalFrames == 0 {
		return false
	}
	if c.state != Playing {
		c.run++
	}
	c.state = Playing
	return true
}

// Pause halts playback at the current frame.
func (c *Clock) Pause() {
	c.state = Stopped
}

// Stop halts playback. The current frame is kept.
func (c *Clock) Stop() {
	c.state = Stopped
}

// Toggle flips between playing and stopped.
func (c *Clock) Toggle() {
	if c.state == Playing {
		c.Pause()
	} else {
		c.Play()
	}
}

// Advance moves the clock forward by deltaMs of wall time and returns the new
// current frame. Reaching the end either resets to frame 0 when looping or
// parks on the last frame and stops. Stopped clocks do not move.
func (c *Clock) Advance(deltaMs float64) float64 {
	if c.state != Playing {
		return c.currentFrame
	}
	if math.IsNaN(deltaMs) || math.IsInf(deltaMs, 0) || deltaMs < 0 {
		return c.currentFrame
	}

	next := c.currentFrame + (deltaMs/1000)*c.fps
	if next >= float64(c.totalFrames) {
		if c.loop {
			next = 0
		} else {
			next = float64(c.totalFrames)
			c.state = Stopped
		}
	}
	c.currentFrame = next

	return c.currentFrame
}

// Seek jumps to frame, clamped into the timeline. Non-finite frames are
// ignored.
func (c *Clock) Seek(frame float64) {
	if math.IsNaN(frame) || math.IsInf(frame, 0) {
		return
	}
	c.currentFrame = math.Max(0, math.Min(float64(c.totalFrames), frame))
}

// StepForward moves one frame later.
func (c *Clock) StepForward() {
	c.currentFrame = math.Min(float64(c.totalFrames), c.currentFrame+1)
}

// StepBackward moves one frame earlier.
func (c *Clock) StepBackward() {
	c.currentFrame = math.Max(0, c.currentFrame-1)
}

// JumpToStart rewinds to frame 0.
func (c *Clock) JumpToStart() {
	c.currentFrame = 0
}

// JumpToEnd moves to the last frame.
func (c *Clock) JumpToEnd() {
	c.currentFrame = float64(c.totalFrames)
}

// SetFPS changes the frame rate.
func (c *Clock) SetFPS(fps float64) error {
	if !validFPS(fps) {
		return fmt.Errorf("%w: fps %v", ErrInvalidArgument, fps)
	}
	c.fps = fps
	return nil
}

// SetTotalFrames changes the timeline length. The current frame is pulled
// back inside the new range and an empty timeline stops playback.
func (c *Clock) SetTotalFrames(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: total frames %d", ErrInvalidArgument, n)
	}
	c.totalFrames = n
	if c.currentFrame > float64(n) {
		c.currentFrame = float64(n)
	}
	if n == 0 {
		c.state = Stopped
	}
	return nil
}

// SetLoop enables or disables looping.
func (c *Clock) SetLoop(loop bool) {
	c.loop = loop
}

// CurrentFrame returns the current, possibly fractional, frame.
func (c *Clock) CurrentFrame() float64 { return c.currentFrame }

// TotalFrames returns the timeline length.
func (c *Clock) TotalFrames() int { return c.totalFrames }

// FPS returns the frame rate.
func (c *Clock) FPS() float64 { return c.fps }

// Loop reports whether playback wraps at the end.
func (c *Clock) Loop() bool { return c.loop }

// State returns the play state.
func (c *Clock) State() State { return c.state }

// IsPlaying reports whether the clock is playing.
func (c *Clock) IsPlaying() bool { return c.state == Playing }

// Snapshot copies the clock's state.
func (c *Clock) Snapshot() Status {
	return Status{
		CurrentFrame: c.currentFrame,
		TotalFrames:  c.totalFrames,
		FPS:          c.fps,
		Playing:      c.state == Playing,
		Loop:         c.loop,
	}
}
