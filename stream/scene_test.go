package stream

import (
	"testing"

	"github.com/matt-g-everett/keyframer/keyframe"
	"github.com/matt-g-everett/keyframer/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRect(id string) *project.Element {
	return &project.Element{
		ID: id, Type: "rectangle",
		X: 100, Y: 100, Width: 50, Height: 30, Opacity: 1, Fill: "#0000ff",
	}
}

func newScene(t *testing.T) *Scene {
	t.Helper()
	s := NewScene(nil, nil)
	require.NoError(t, s.AddObject(newRect("rect"), 0, false))
	return s
}

func TestRenderUsesLiveValuesWithoutKeyframes(t *testing.T) {
	s := newScene(t)

	f := s.Render(10)
	require.Len(t, f.Objects, 1)
	o := f.Objects[0]
	assert.Equal(t, 100.0, o.X)
	assert.Equal(t, 50.0, o.Width)
	assert.Equal(t, 1.0, o.Opacity)
	assert.Equal(t, "#0000ff", o.Fill.Hex())
}

func TestRenderInterpolatesKeyframes(t *testing.T) {
	s := newScene(t)
	store := s.Store()
	require.NoError(t, store.AddKeyframe("rect", Position, 0, keyframe.Point(0, 0), ""))
	require.NoError(t, store.AddKeyframe("rect", Position, 10, keyframe.Point(100, 200), ""))
	require.NoError(t, store.AddKeyframe("rect", Opacity, 0, keyframe.Scalar(0), ""))
	require.NoError(t, store.AddKeyframe("rect", Opacity, 10, keyframe.Scalar(1), ""))
	require.NoError(t, store.AddKeyframe("rect", Fill, 0, keyframe.RGB(0, 0, 0), ""))
	require.NoError(t, store.AddKeyframe("rect", Fill, 10, keyframe.RGB(1, 1, 1), ""))

	o := s.Render(5).Objects[0]
	assert.InDelta(t, 50.0, o.X, 1e-9)
	assert.InDelta(t, 100.0, o.Y, 1e-9)
	assert.InDelta(t, 0.5, o.Opacity, 1e-9)
	assert.InDelta(t, 0.5, o.Fill.R, 1e-9)
	assert.Equal(t, 50.0, o.Width)
}

func TestRenderSkipsHiddenObjects(t *testing.T) {
	s := newScene(t)
	hidden := false
	el := newRect("hidden")
	el.Visible = &hidden
	require.NoError(t, s.AddObject(el, 0, false))

	f := s.Render(0)
	require.Len(t, f.Objects, 1)
	assert.Equal(t, "rect", f.Objects[0].ID)
}

func TestSetPropertyAutoKeysAtRoundedFrame(t *testing.T) {
	s := newScene(t)

	require.NoError(t, s.SetProperty("rect", Position, keyframe.Point(10, 20), 4.6, true))
	el, _ := s.Object("rect")
	assert.Equal(t, 10.0, el.X)
	assert.Equal(t, 20.0, el.Y)

	v, ok := s.Store().KeyframeValue("rect", Position, 5)
	require.True(t, ok)
	assert.True(t, v.Equal(keyframe.Point(10, 20)))
}

func TestSetPropertyWithoutAutoKey(t *testing.T) {
	s := newScene(t)

	require.NoError(t, s.SetProperty("rect", Rotation, keyframe.Scalar(90), 3, false))
	el, _ := s.Object("rect")
	assert.Equal(t, 90.0, el.Rotation)
	assert.Zero(t, s.Store().Len())
}

func TestSetPropertyRejectsBadInput(t *testing.T) {
	s := newScene(t)

	assert.ErrorIs(t, s.SetProperty("ghost", Rotation, keyframe.Scalar(1), 0, false), keyframe.ErrInvalidArgument)
	assert.ErrorIs(t, s.SetProperty("rect", "skew", keyframe.Scalar(1), 0, false), keyframe.ErrInvalidArgument)
	assert.ErrorIs(t, s.SetProperty("rect", Position, keyframe.Scalar(1), 0, false), keyframe.ErrInvalidArgument)
	assert.ErrorIs(t, s.SetProperty("rect", Opacity, keyframe.Point(1, 1), 0, false), keyframe.ErrInvalidArgument)
}

func TestSetFillUpdatesHex(t *testing.T) {
	s := newScene(t)

	require.NoError(t, s.SetProperty("rect", Fill, keyframe.RGB(1, 0, 0), 0, false))
	el, _ := s.Object("rect")
	assert.Equal(t, "#ff0000", el.Fill)
}

func TestKeyAll(t *testing.T) {
	s := newScene(t)

	require.NoError(t, s.KeyAll("rect", 7.2))
	assert.ElementsMatch(t, CoreProperties, s.Store().Properties("rect"))
	assert.Equal(t, []float64{7}, s.Store().FrameMarkers("rect"))
}

func TestAddObjectAutoKey(t *testing.T) {
	s := NewScene(nil, nil)

	require.NoError(t, s.AddObject(newRect("rect"), 12, true))
	assert.Equal(t, 4, s.Store().Len())
	assert.ErrorIs(t, s.AddObject(newRect("rect"), 0, false), keyframe.ErrInvalidArgument)
}

func TestRemoveObjectCascades(t *testing.T) {
	s := newScene(t)
	require.NoError(t, s.KeyAll("rect", 0))

	s.RemoveObject("rect")
	_, ok := s.Object("rect")
	assert.False(t, ok)
	assert.Empty(t, s.Store().Objects())
	assert.Empty(t, s.Render(0).Objects)
}

func TestApplyPresetAnchorsToLiveState(t *testing.T) {
	s := newScene(t)

	require.NoError(t, s.ApplyPreset("rect", "slide", 0))
	o := s.Render(0).Objects[0]
	assert.Equal(t, -50.0, o.X)
	assert.Equal(t, 100.0, s.Render(30).Objects[0].X)

	assert.ErrorIs(t, s.ApplyPreset("ghost", "slide", 0), keyframe.ErrInvalidArgument)
}

func TestSceneProjectRoundTrip(t *testing.T) {
	s := newScene(t)
	require.NoError(t, s.ApplyPreset("rect", "pulse", 0))

	p := project.New("demo")
	s.Capture(p)

	restored, err := SceneFromProject(p)
	require.NoError(t, err)
	assert.Equal(t, s.Store().Len(), restored.Store().Len())
	assert.Equal(t, s.Render(7), restored.Render(7))
}
