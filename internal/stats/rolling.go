package stats

import "math"

// RollingMean computes the trailing mean over window observations. The first
// window-1 positions are NaN since no full window exists yet.
func RollingMean(values []float64, window int) []float64 {
	n := len(values)
	out := make([]float64, n)
	if window <= 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
