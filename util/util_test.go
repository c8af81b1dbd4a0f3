package util

import (
	"testing"

	"github.com/fogleman/ease"
	"github.com/stretchr/testify/assert"
)

func TestGenerateLut(t *testing.T) {
	lut := GenerateLut(5, ease.Linear)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, lut)

	assert.Empty(t, GenerateLut(0, ease.Linear))
	assert.Equal(t, []float64{0}, GenerateLut(1, ease.InQuad))
}

func TestGeneratePingPongLut(t *testing.T) {
	lut := GeneratePingPongLut(4, ease.Linear)
	assert.Equal(t, []float64{0, 0.5, 0.5, 0}, lut)

	odd := GeneratePingPongLut(5, ease.Linear)
	assert.Equal(t, []float64{0, 0.5, 1, 0.5, 0}, odd)
}
