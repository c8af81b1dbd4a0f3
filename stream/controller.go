package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matt-g-everett/keyframer/keyframe"
	"github.com/matt-g-everett/keyframer/playback"
	"github.com/rs/zerolog/log"
)

// ErrStopped is returned by Do once the Controller's loop has exited.
var ErrStopped = errors.New("controller stopped")

type command struct {
	fn     func(*Scene, *playback.Clock) error
	result chan error
}

// Controller owns a scene and its playback clock. Every mutation runs on the
// Run goroutine, so the scene, store and clock need no locking.
type Controller struct {
	scene  *Scene
	clock  *playback.Clock
	driver *playback.Driver
	sinks  []FrameSink
	cmds   chan command
	done   chan struct{}

	outgoing       *Frame
	transition     float64
	transitionTime time.Duration
	lastFrame      float64

	mu      sync.RWMutex
	current *Frame
	status  playback.Status
}

// NewController creates an instance of a Controller.
func NewController(scene *Scene, clock *playback.Clock, sinks ...FrameSink) *Controller {
	c := new(Controller)
	c.sinks = sinks
	c.cmds = make(chan command)
	c.done = make(chan struct{})
	c.load(scene, clock)
	c.publish(scene.Render(clock.CurrentFrame()))
	return c
}

func (c *Controller) load(scene *Scene, clock *playback.Clock) {
	c.scene = scene
	c.clock = clock
	c.driver = playback.NewDriver(clock, c.advance, nil)
}

// played returns how many frames of playback it took to reach frame from the
// last rendered frame. A loop wraps back through frame 0.
func (c *Controller) played(frame float64) float64 {
	if frame >= c.lastFrame {
		return frame - c.lastFrame
	}
	return float64(c.clock.TotalFrames()) - c.lastFrame + frame
}

func (c *Controller) advance(frame float64) {
	if c.outgoing != nil {
		c.transition += c.played(frame) / (c.clock.FPS() * c.transitionTime.Seconds())
		if c.transition >= 1.0 {
			c.outgoing = nil
			c.transition = 0.0
		}
	}
	c.render(frame)
}

// render draws the frame, crossfading from the previous scene while a
// transition is running. Only played frames move the transition on.
func (c *Controller) render(frame float64) {
	c.lastFrame = frame
	f := c.scene.Render(frame)
	if c.outgoing != nil {
		f = c.outgoing.InterpolateFrame(f, c.transition)
	}
	c.publish(f)
}

func (c *Controller) publish(f *Frame) {
	c.mu.Lock()
	c.current = f
	c.status = c.clock.Snapshot()
	c.mu.Unlock()

	for _, sink := range c.sinks {
		if err := sink.SendFrame(f); err != nil {
			log.Warn().Err(err).Float64("frame", f.Number).Msg("Failed to send frame")
		}
	}
}

// Run ticks the clock every interval and executes commands until ctx is
// done. It must only be called once.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("Controller running")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.driver.TickNow()
		case cmd := <-c.cmds:
			cmd.result <- c.execute(cmd.fn)
		}
	}
}

func (c *Controller) execute(fn func(*Scene, *playback.Clock) error) error {
	err := fn(c.scene, c.clock)
	c.render(c.clock.CurrentFrame())
	return err
}

// Do runs fn on the controller goroutine and waits for it. The current frame
// is re-rendered afterwards so sinks see scrubs and edits while paused.
func (c *Controller) Do(fn func(*Scene, *playback.Clock) error) error {
	cmd := command{fn: fn, result: make(chan error, 1)}
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return ErrStopped
	}
	return <-cmd.result
}

// Load swaps in a new scene and clock. With a positive transition the
// previous frame fades into the new scene over that much playback time.
func (c *Controller) Load(scene *Scene, clock *playback.Clock, transition time.Duration) error {
	return c.Do(func(*Scene, *playback.Clock) error {
		c.swap(scene, clock, transition)
		return nil
	})
}

func (c *Controller) swap(scene *Scene, clock *playback.Clock, transition time.Duration) {
	c.mu.RLock()
	previous := c.current
	c.mu.RUnlock()

	c.load(scene, clock)
	c.outgoing = nil
	c.transition = 0.0
	c.transitionTime = transition
	c.lastFrame = clock.CurrentFrame()
	if transition > 0 && previous != nil {
		c.outgoing = previous
	}
	log.Info().Int("totalFrames", clock.TotalFrames()).Float64("fps", clock.FPS()).Dur("transition", transition).Msg("Scene loaded")
}

// Apply executes a control message.
func (c *Controller) Apply(msg ControlMessage) error {
	return c.Do(func(_ *Scene, clock *playback.Clock) error {
		switch msg.Type {
		case MsgPlay:
			if !clock.Play() {
				log.Debug().Msg("Play ignored on an empty timeline")
			}
		case MsgPause:
			clock.Pause()
		case MsgStop:
			clock.Stop()
		case MsgToggle:
			clock.Toggle()
		case MsgSeek:
			clock.Seek(msg.Frame)
		case MsgStep:
			delta := msg.Delta
			if delta == 0 {
				delta = 1
			}
			clock.Seek(clock.CurrentFrame() + float64(delta))
		case MsgStart:
			clock.JumpToStart()
		case MsgEnd:
			clock.JumpToEnd()
		default:
			return fmt.Errorf("%w: unknown control message type %q", keyframe.ErrInvalidArgument, msg.Type)
		}
		return nil
	})
}

// CurrentFrame returns the most recently rendered frame.
func (c *Controller) CurrentFrame() *Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Status returns the clock state as of the last render.
func (c *Controller) Status() playback.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}
