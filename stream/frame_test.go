package stream

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame() *Frame {
	f := NewFrame(12.5)
	f.Objects = append(f.Objects, ObjectState{
		ID: "rect", Type: "rectangle",
		X: 100, Y: 50, Width: 40, Height: 20, Rotation: 45, Opacity: 0.5,
		Fill: colorful.Color{R: 1, G: 0, B: 0},
	})
	return f
}

func readFloat(t *testing.T, data []byte) float64 {
	t.Helper()
	require.GreaterOrEqual(t, len(data), 4)
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(data)))
}

func TestMarshalBinaryLayout(t *testing.T) {
	data, err := testFrame().MarshalBinary()
	require.NoError(t, err)

	require.Len(t, data, 6+1+4+6*4+3)
	assert.Equal(t, 12.5, readFloat(t, data))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[4:]))
	assert.Equal(t, byte(4), data[6])
	assert.Equal(t, "rect", string(data[7:11]))

	want := []float64{100, 50, 40, 20, 45, 0.5}
	for i, w := range want {
		assert.Equal(t, w, readFloat(t, data[11+i*4:]))
	}
	assert.Equal(t, []byte{255, 0, 0}, data[len(data)-3:])
}

func TestMarshalBinaryRejectsLongID(t *testing.T) {
	f := NewFrame(0)
	id := make([]byte, 256)
	for i := range id {
		id[i] = 'a'
	}
	f.Objects = append(f.Objects, ObjectState{ID: string(id)})

	_, err := f.MarshalBinary()
	assert.Error(t, err)
}

func TestMarshalJSON(t *testing.T) {
	data, err := testFrame().MarshalJSON()
	require.NoError(t, err)

	assert.JSONEq(t, `{"frame":12.5,"objects":[{"id":"rect","type":"rectangle","x":100,"y":50,
		"width":40,"height":20,"rotation":45,"opacity":0.5,"fill":"#ff0000"}]}`, string(data))
}

func TestInterpolateFrame(t *testing.T) {
	a := testFrame()
	b := NewFrame(3)
	b.Objects = append(b.Objects,
		ObjectState{ID: "rect", X: 200, Y: 50, Width: 40, Height: 20, Opacity: 1, Fill: colorful.Color{R: 1}},
		ObjectState{ID: "circle", Opacity: 1},
	)

	f := a.InterpolateFrame(b, 0.5)
	assert.Equal(t, 3.0, f.Number)
	require.Len(t, f.Objects, 2)

	rect, ok := f.Object("rect")
	require.True(t, ok)
	assert.Equal(t, 150.0, rect.X)
	assert.Equal(t, 22.5, rect.Rotation)
	assert.Equal(t, 0.75, rect.Opacity)

	circle, ok := f.Object("circle")
	require.True(t, ok)
	assert.Equal(t, 0.5, circle.Opacity)
}

func TestInterpolateFrameFadesOutMissing(t *testing.T) {
	f := testFrame().InterpolateFrame(NewFrame(0), 0.5)
	require.Len(t, f.Objects, 1)
	assert.Equal(t, 0.25, f.Objects[0].Opacity)
}
