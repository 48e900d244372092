package composite

import "math"

// ZScores converts values to population z-scores. ok is false when the
// values have no spread, since dividing by a zero deviation would only
// produce NaN.
func ZScores(values []float64) (z []float64, ok bool) {
	n := float64(len(values))
	if n == 0 {
		return nil, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	std := math.Sqrt(ss / n)
	if std == 0 || math.IsNaN(std) {
		return nil, false
	}
	z = make([]float64, len(values))
	for i, v := range values {
		z[i] = (v - mean) / std
	}
	return z, true
}
