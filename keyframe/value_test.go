package keyframe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueJSONShapes(t *testing.T) {
	b, err := json.Marshal(Scalar(1.5))
	require.NoError(t, err)
	assert.JSONEq(t, `1.5`, string(b))

	b, err = json.Marshal(Size(4, 2))
	require.NoError(t, err)
	assert.JSONEq(t, `{"width":4,"height":2}`, string(b))

	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"x": 1, "y": -2}`), &v))
	assert.True(t, v.Equal(Point(1, -2)))

	require.NoError(t, json.Unmarshal([]byte(`360`), &v))
	assert.True(t, v.Equal(Scalar(360)))

	assert.ErrorIs(t, json.Unmarshal([]byte(`"red"`), &v), ErrInvalidArgument)
	assert.ErrorIs(t, json.Unmarshal([]byte(`null`), &v), ErrInvalidArgument)
}

func TestFieldsCopiesInput(t *testing.T) {
	m := map[string]float64{"x": 1}
	v := Fields(m)
	m["x"] = 2

	x, ok := v.Field("x")
	require.True(t, ok)
	assert.Equal(t, 1.0, x)

	out := v.Map()
	out["x"] = 3
	x, _ = v.Field("x")
	assert.Equal(t, 1.0, x)
}

func TestLerpShapeMismatch(t *testing.T) {
	_, err := Lerp(Scalar(0), Point(1, 1), 0.5)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Lerp(Point(0, 0), Fields(map[string]float64{"x": 1}), 0.5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
