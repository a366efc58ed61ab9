package stats

import (
	"math"
	"testing"
)

func TestLoessRecoversLine(t *testing.T) {
	n := 100
	ys := make([]float64, n)
	for i := range ys {
		ys[i] = 2.5*float64(i) + 7
	}

	smoothed, err := Loess(ys, 0.3, nil)
	if err != nil {
		t.Fatal(err)
	}
	// a local linear fit reproduces a line exactly
	for i := range ys {
		if math.Abs(smoothed[i]-ys[i]) > 1e-6 {
			t.Fatalf("Loess deviates from line at %d: %v != %v", i, smoothed[i], ys[i])
		}
	}
}

func TestLoessSmoothsNoise(t *testing.T) {
	n := 200
	ys := make([]float64, n)
	for i := range ys {
		// deterministic zig-zag noise around a slow line
		noise := 5.0
		if i%2 == 0 {
			noise = -5.0
		}
		ys[i] = 0.1*float64(i) + noise
	}

	smoothed, err := Loess(ys, 0.2, nil)
	if err != nil {
		t.Fatal(err)
	}

	// smoothed curve must be much closer to the underlying line than the input
	var inErr, outErr float64
	for i := range ys {
		base := 0.1 * float64(i)
		inErr += math.Abs(ys[i] - base)
		outErr += math.Abs(smoothed[i] - base)
	}
	if outErr > inErr/4 {
		t.Errorf("smoothing barely reduced the noise: in=%v out=%v", inErr, outErr)
	}
}

func TestLoessRejectsBadSpan(t *testing.T) {
	if _, err := Loess([]float64{1, 2, 3}, 0, nil); err == nil {
		t.Error("expected error for span 0")
	}
	if _, err := Loess([]float64{1, 2, 3}, 1.5, nil); err == nil {
		t.Error("expected error for span > 1")
	}
	if _, err := Loess(nil, 0.5, nil); err == nil {
		t.Error("expected error for empty input")
	}
}

// synthetic series: linear trend plus a clean seasonal cycle
func seasonalFixture(n, period int) []float64 {
	ys := make([]float64, n)
	for i := range ys {
		ys[i] = 0.05*float64(i) + 10*math.Sin(2*math.Pi*float64(i)/float64(period))
	}
	return ys
}

func TestSTLReconstruction(t *testing.T) {
	period := 50
	ys := seasonalFixture(6*period, period)

	res, err := STL(ys, period, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := range ys {
		sum := res.Trend[i] + res.Seasonal[i] + res.Residual[i]
		if math.Abs(sum-ys[i]) > 1e-9 {
			t.Fatalf("additive identity broken at %d: %v != %v", i, sum, ys[i])
		}
	}
}

func TestSTLSeparatesComponents(t *testing.T) {
	period := 50
	n := 6 * period
	ys := seasonalFixture(n, period)

	res, err := STL(ys, period, nil)
	if err != nil {
		t.Fatal(err)
	}

	// seasonal component is centered
	sum := 0.0
	for _, v := range res.Seasonal {
		sum += v
	}
	if math.Abs(sum/float64(n)) > 0.5 {
		t.Errorf("seasonal component not centered, mean = %v", sum/float64(n))
	}

	// seasonal repeats with the period
	for i := period; i < n; i++ {
		if math.Abs(res.Seasonal[i]-res.Seasonal[i-period]) > 2.0 {
			t.Fatalf("seasonal not periodic at %d: %v vs %v", i, res.Seasonal[i], res.Seasonal[i-period])
		}
	}

	// residual stays small against the seasonal amplitude of 10, away from
	// the edges where the trend fit has less support
	var rms float64
	count := 0
	for i := period; i < n-period; i++ {
		rms += res.Residual[i] * res.Residual[i]
		count++
	}
	rms = math.Sqrt(rms / float64(count))
	if rms > 2.5 {
		t.Errorf("residual RMS too large: %v", rms)
	}
}

func TestSTLRobustHandlesOutlier(t *testing.T) {
	period := 50
	ys := seasonalFixture(6*period, period)
	ys[123] += 500 // single massive outlier

	res, err := STL(ys, period, &STLOptions{Robust: true})
	if err != nil {
		t.Fatal(err)
	}

	// the outlier must land in the residual, not distort the seasonal
	maxSeasonal := 0.0
	for _, v := range res.Seasonal {
		if math.Abs(v) > maxSeasonal {
			maxSeasonal = math.Abs(v)
		}
	}
	if maxSeasonal > 30 {
		t.Errorf("outlier leaked into seasonal component: max |seasonal| = %v", maxSeasonal)
	}
	if math.Abs(res.Residual[123]) < 100 {
		t.Errorf("outlier not absorbed by residual: %v", res.Residual[123])
	}
}

func TestSTLTooShort(t *testing.T) {
	if _, err := STL(make([]float64, 99), 50, nil); err == nil {
		t.Error("expected error for series shorter than two periods")
	}
	if _, err := STL(make([]float64, 100), 1, nil); err == nil {
		t.Error("expected error for period < 2")
	}
}

func TestRollingMean(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := RollingMean(values, 3)

	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Error("expected NaN before the first full window")
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if math.Abs(out[i+2]-w) > 1e-12 {
			t.Errorf("rolling mean at %d = %v, want %v", i+2, out[i+2], w)
		}
	}
}

func TestMedian(t *testing.T) {
	if m := median([]float64{3, 1, 2}); m != 2 {
		t.Errorf("median = %v, want 2", m)
	}
	if m := median([]float64{4, 1, 2, 3}); m != 2.5 {
		t.Errorf("median = %v, want 2.5", m)
	}
	if m := median([]float64{math.NaN(), 5}); m != 5 {
		t.Errorf("median with NaN = %v, want 5", m)
	}
}
