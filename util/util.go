package util

// GenerateLut samples fn at length evenly spaced points across [0, 1].
func GenerateLut(length int, fn func(float64) float64) []float64 {
	if length <= 0 {
		return []float64{}
	}
	if length == 1 {
		return []float64{fn(0)}
	}

	increment := 1.0 / float64(length-1)
	lut := make([]float64, length)
	for i := range lut {
		lut[i] = fn(float64(i) * increment)
	}
	return lut
}

// GeneratePingPongLut samples fn rising over the first half of the table and
// mirrors it over the second half.
func GeneratePingPongLut(length int, fn func(float64) float64) []float64 {
	lut := make([]float64, length)
	if length < 2 {
		return GenerateLut(length, fn)
	}

	increment := 1.0 / float64(length/2)
	for i, j := 0, length-1; i < length/2; i, j = i+1, j-1 {
		value := fn(float64(i) * increment)
		lut[i] = value
		lut[j] = value
	}
	if length%2 == 1 {
		lut[length/2] = fn(1)
	}
	return lut
}
