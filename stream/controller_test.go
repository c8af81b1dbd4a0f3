package stream

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/matt-g-everett/keyframer/keyframe"
	"github.com/matt-g-everett/keyframer/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	frames []*Frame
}

func (r *recordingSink) SendFrame(f *Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return nil
}

func (r *recordingSink) last() *Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

func newKeyedScene(t *testing.T) *Scene {
	t.Helper()
	s := newScene(t)
	require.NoError(t, s.Store().AddKeyframe("rect", Position, 0, keyframe.Point(0, 0), ""))
	require.NoError(t, s.Store().AddKeyframe("rect", Position, 100, keyframe.Point(100, 0), ""))
	return s
}

func startController(t *testing.T, c *Controller) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, time.Millisecond) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func newTestClock(t *testing.T, total int) *playback.Clock {
	t.Helper()
	clock, err := playback.NewClock(total, 30, false)
	require.NoError(t, err)
	return clock
}

func TestControllerRendersInitialFrame(t *testing.T) {
	sink := new(recordingSink)
	c := NewController(newKeyedScene(t), newTestClock(t, 100), sink)

	require.NotNil(t, c.CurrentFrame())
	assert.Equal(t, 0.0, c.CurrentFrame().Number)
	assert.Len(t, sink.frames, 1)
}

func TestControllerSeekRerenders(t *testing.T) {
	sink := new(recordingSink)
	c := NewController(newKeyedScene(t), newTestClock(t, 100), sink)
	startController(t, c)

	require.NoError(t, c.Apply(ControlMessage{Type: MsgSeek, Frame: 25}))

	f := sink.last()
	assert.Equal(t, 25.0, f.Number)
	assert.InDelta(t, 25.0, f.Objects[0].X, 1e-9)
	assert.Equal(t, 25.0, c.Status().CurrentFrame)
	assert.False(t, c.Status().Playing)
}

func TestControllerStepAndJump(t *testing.T) {
	c := NewController(newKeyedScene(t), newTestClock(t, 100))
	startController(t, c)

	require.NoError(t, c.Apply(ControlMessage{Type: MsgStep, Delta: 3}))
	assert.Equal(t, 3.0, c.Status().CurrentFrame)
	require.NoError(t, c.Apply(ControlMessage{Type: MsgStep, Delta: -5}))
	assert.Equal(t, 0.0, c.Status().CurrentFrame)
	require.NoError(t, c.Apply(ControlMessage{Type: MsgStep}))
	assert.Equal(t, 1.0, c.Status().CurrentFrame)
	require.NoError(t, c.Apply(ControlMessage{Type: MsgEnd}))
	assert.Equal(t, 100.0, c.Status().CurrentFrame)
	require.NoError(t, c.Apply(ControlMessage{Type: MsgStart}))
	assert.Equal(t, 0.0, c.Status().CurrentFrame)
}

func TestControllerStepClampsLargeDelta(t *testing.T) {
	c := NewController(newKeyedScene(t), newTestClock(t, 100))
	startController(t, c)

	done := make(chan error, 1)
	go func() { done <- c.Apply(ControlMessage{Type: MsgStep, Delta: math.MaxInt}) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("step did not return")
	}
	assert.Equal(t, 100.0, c.Status().CurrentFrame)

	require.NoError(t, c.Apply(ControlMessage{Type: MsgStep, Delta: math.MinInt}))
	assert.Equal(t, 0.0, c.Status().CurrentFrame)
}

func TestControllerPlayAdvances(t *testing.T) {
	c := NewController(newKeyedScene(t), newTestClock(t, 100))
	startController(t, c)

	require.NoError(t, c.Apply(ControlMessage{Type: MsgPlay}))
	assert.Eventually(t, func() bool {
		return c.Status().CurrentFrame > 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Apply(ControlMessage{Type: MsgPause}))
	paused := c.Status().CurrentFrame
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, paused, c.Status().CurrentFrame)
	assert.False(t, c.Status().Playing)
}

func TestControllerPlayOnEmptyTimeline(t *testing.T) {
	c := NewController(newKeyedScene(t), newTestClock(t, 0))
	startController(t, c)

	require.NoError(t, c.Apply(ControlMessage{Type: MsgPlay}))
	assert.False(t, c.Status().Playing)
}

func TestControllerRejectsUnknownMessage(t *testing.T) {
	c := NewController(newKeyedScene(t), newTestClock(t, 100))
	startController(t, c)

	assert.ErrorIs(t, c.Apply(ControlMessage{Type: "rewind"}), keyframe.ErrInvalidArgument)
}

func TestControllerSerializesCommands(t *testing.T) {
	c := NewController(newScene(t), newTestClock(t, 100))
	startController(t, c)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.Do(func(s *Scene, clock *playback.Clock) error {
				el, _ := s.Object("rect")
				el.X++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 150.0, c.CurrentFrame().Objects[0].X)
}

func TestControllerDoAfterStop(t *testing.T) {
	c := NewController(newScene(t), newTestClock(t, 100))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Run(ctx, time.Millisecond), context.Canceled)

	err := c.Do(func(*Scene, *playback.Clock) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}

func TestControllerLoadCrossfades(t *testing.T) {
	c := NewController(newScene(t), newTestClock(t, 100))
	startController(t, c)

	next := NewScene(nil, nil)
	el := newRect("rect")
	el.X = 200
	require.NoError(t, next.AddObject(el, 0, false))

	require.NoError(t, c.Load(next, newTestClock(t, 100), time.Second))
	assert.Equal(t, 100.0, c.CurrentFrame().Objects[0].X)

	require.NoError(t, c.Load(next, newTestClock(t, 100), 0))
	assert.Equal(t, 200.0, c.CurrentFrame().Objects[0].X)
}

func loadFarRect(t *testing.T, c *Controller, clock *playback.Clock) {
	t.Helper()
	next := NewScene(nil, nil)
	el := newRect("rect")
	el.X = 200
	require.NoError(t, next.AddObject(el, 0, false))
	c.swap(next, clock, time.Second)
}

func TestControllerCrossfadeFollowsPlaybackTime(t *testing.T) {
	for _, interval := range []time.Duration{time.Millisecond, 16 * time.Millisecond, 100 * time.Millisecond} {
		t.Run(interval.String(), func(t *testing.T) {
			c := NewController(newScene(t), newTestClock(t, 3000))
			clock := newTestClock(t, 3000)
			loadFarRect(t, c, clock)
			require.True(t, clock.Play())

			start := time.Unix(0, 0)
			var elapsed time.Duration
			playUntil := func(d time.Duration) {
				for ; elapsed <= d; elapsed += interval {
					c.driver.Tick(start.Add(elapsed))
				}
			}

			playUntil(900 * time.Millisecond)
			assert.NotNil(t, c.outgoing)
			x := c.CurrentFrame().Objects[0].X
			assert.Greater(t, x, 100.0)
			assert.Less(t, x, 200.0)

			playUntil(1100 * time.Millisecond)
			assert.Nil(t, c.outgoing)
			assert.Equal(t, 200.0, c.CurrentFrame().Objects[0].X)
		})
	}
}

func TestControllerCrossfadeHoldsWhilePaused(t *testing.T) {
	c := NewController(newScene(t), newTestClock(t, 100))
	loadFarRect(t, c, newTestClock(t, 100))

	start := time.Unix(0, 0)
	for i := 0; i < 100; i++ {
		c.driver.Tick(start.Add(time.Duration(i) * 16 * time.Millisecond))
		c.execute(func(*Scene, *playback.Clock) error { return nil })
	}
	assert.NotNil(t, c.outgoing)
	assert.Equal(t, 100.0, c.CurrentFrame().Objects[0].X)
}

func TestControllerKeepsRenderingWhenSinkFails(t *testing.T) {
	failures := 0
	failing := SinkFunc(func(*Frame) error {
		failures++
		return assert.AnError
	})
	sink := new(recordingSink)
	c := NewController(newKeyedScene(t), newTestClock(t, 100), failing, sink)
	startController(t, c)

	require.NoError(t, c.Apply(ControlMessage{Type: MsgSeek, Frame: 10}))
	assert.Equal(t, 2, failures)
	assert.Equal(t, 10.0, sink.last().Number)
}
