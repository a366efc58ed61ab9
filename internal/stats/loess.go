// Package stats implements the numerical kernels of the seasonality model:
// LOESS smoothing, STL decomposition and rolling means.
package stats

import (
	"errors"
	"math"
	"sort"
)

// Loess smooths ys over the implicit index grid 0..n-1 using locally weighted
// linear regression with tricube weights. span is the fraction of the series
// used for each local fit (0 < span <= 1). weights, if non-nil, carries
// robustness weights per observation.
func Loess(ys []float64, span float64, weights []float64) ([]float64, error) {
	n := len(ys)
	if n == 0 {
		return nil, errors.New("stats: empty input to Loess")
	}
	if span <= 0 || span > 1 {
		return nil, errors.New("stats: Loess span must be in (0, 1]")
	}
	if weights != nil && len(weights) != n {
		return nil, errors.New("stats: Loess weights length mismatch")
	}

	window := int(math.Ceil(span * float64(n)))
	if window < 3 {
		window = 3
	}
	if window > n {
		window = n
	}

	smoothed := make([]float64, n)
	for i := 0; i < n; i++ {
		smoothed[i] = loessAt(ys, weights, i, window)
	}
	return smoothed, nil
}

// loessAt fits a weighted line over the window nearest neighbors of index i
// and evaluates it at i.
func loessAt(ys, robustness []float64, i, window int) float64 {
	n := len(ys)

	lo := i - window/2
	if lo < 0 {
		lo = 0
	}
	hi := lo + window
	if hi > n {
		hi = n
		lo = hi - window
	}

	maxDist := math.Max(float64(i-lo), float64(hi-1-i))
	if maxDist == 0 {
		maxDist = 1
	}

	// weighted least squares accumulators for y = a + b*x
	var sw, swx, swy, swxx, swxy float64
	for j := lo; j < hi; j++ {
		if math.IsNaN(ys[j]) {
			continue
		}
		d := math.Abs(float64(j-i)) / maxDist
		w := tricube(d)
		if robustness != nil {
			w *= robustness[j]
		}
		if w <= 0 {
			continue
		}
		x := float64(j - i)
		sw += w
		swx += w * x
		swy += w * ys[j]
		swxx += w * x * x
		swxy += w * x * ys[j]
	}

	if sw == 0 {
		return math.NaN()
	}

	denom := sw*swxx - swx*swx
	if math.Abs(denom) < 1e-12 {
		// degenerate fit, fall back to the weighted mean
		return swy / sw
	}

	// x is centered on i, so the fitted value at i is the intercept
	b := (sw*swxy - swx*swy) / denom
	return (swy - b*swx) / sw
}

func tricube(d float64) float64 {
	if d >= 1 {
		return 0
	}
	c := 1 - d*d*d
	return c * c * c
}

// median calculates the median of a slice, ignoring NaNs.
func median(data []float64) float64 {
	vals := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 0 {
		return (vals[n/2-1] + vals[n/2]) / 2
	}
	return vals[n/2]
}
