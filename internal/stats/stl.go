package stats

import (
	"fmt"
	"math"
)

// STLResult represents the result of an STL decomposition. The additive model
// holds at every index: Trend[i] + Seasonal[i] + Residual[i] == input[i].
type STLResult struct {
	Trend    []float64
	Seasonal []float64
	Residual []float64
	Period   int
}

// STLOptions tunes the STL fit.
type STLOptions struct {
	Robust           bool    // apply biweight robustness iterations
	RobustIterations int     // default 2
	InnerIterations  int     // default 2
	SeasonalSpan     float64 // LOESS span for cycle-subseries smoothing, default 0.75
	TrendSpan        float64 // LOESS span for trend smoothing, default 1.5*period/n capped to (0,1]
}

func (o *STLOptions) withDefaults(n, period int) STLOptions {
	opts := STLOptions{}
	if o != nil {
		opts = *o
	}
	if opts.RobustIterations <= 0 {
		opts.RobustIterations = 2
	}
	if opts.InnerIterations <= 0 {
		opts.InnerIterations = 2
	}
	if opts.SeasonalSpan <= 0 || opts.SeasonalSpan > 1 {
		opts.SeasonalSpan = 0.75
	}
	if opts.TrendSpan <= 0 || opts.TrendSpan > 1 {
		opts.TrendSpan = 1.5 * float64(period) / float64(n)
		if opts.TrendSpan > 1 {
			opts.TrendSpan = 1
		}
		if opts.TrendSpan < 0.05 {
			opts.TrendSpan = 0.05
		}
	}
	return opts
}

// STL performs seasonal-trend decomposition using LOESS. The seasonal
// component is estimated by LOESS smoothing of each cycle-subseries (all
// observations sharing the same phase within the period), the trend by LOESS
// over the deseasonalized series. With Robust set, residual-based biweight
// weights damp outliers in both fits.
func STL(values []float64, period int, options *STLOptions) (*STLResult, error) {
	n := len(values)
	if period < 2 {
		return nil, fmt.Errorf("stats: STL period must be >= 2, got %d", period)
	}
	if n < 2*period {
		return nil, fmt.Errorf("stats: STL needs at least %d observations for period %d, got %d",
			2*period, period, n)
	}

	opts := options.withDefaults(n, period)

	trend := make([]float64, n)
	seasonal := make([]float64, n)
	residual := make([]float64, n)
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}

	outer := 1
	if opts.Robust {
		outer += opts.RobustIterations
	}

	detrended := make([]float64, n)
	deseasonalized := make([]float64, n)

	for iter := 0; iter < outer; iter++ {
		for inner := 0; inner < opts.InnerIterations; inner++ {
			// Step 1: detrend
			for i := 0; i < n; i++ {
				detrended[i] = values[i] - trend[i]
			}

			// Step 2: smooth each cycle-subseries to get the raw seasonal
			if err := smoothSubseries(detrended, seasonal, weights, period, opts.SeasonalSpan); err != nil {
				return nil, err
			}

			// Step 3: center the seasonal so it averages to zero over a cycle
			centerSeasonal(seasonal, period)

			// Step 4: trend from the deseasonalized series
			for i := 0; i < n; i++ {
				deseasonalized[i] = values[i] - seasonal[i]
			}
			smoothed, err := Loess(deseasonalized, opts.TrendSpan, weights)
			if err != nil {
				return nil, err
			}
			copy(trend, smoothed)
		}

		for i := 0; i < n; i++ {
			residual[i] = values[i] - trend[i] - seasonal[i]
		}

		if opts.Robust && iter < outer-1 {
			updateRobustnessWeights(residual, weights)
		}
	}

	return &STLResult{
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Period:   period,
	}, nil
}

// smoothSubseries LOESS-smooths every cycle-subseries of detrended and writes
// the smoothed values back into seasonal at the original positions.
func smoothSubseries(detrended, seasonal, weights []float64, period int, span float64) error {
	n := len(detrended)
	for phase := 0; phase < period; phase++ {
		count := (n - phase + period - 1) / period
		if count == 0 {
			continue
		}
		sub := make([]float64, 0, count)
		subWeights := make([]float64, 0, count)
		for i := phase; i < n; i += period {
			sub = append(sub, detrended[i])
			subWeights = append(subWeights, weights[i])
		}
		if len(sub) < 3 {
			// too short to smooth, use the weighted mean
			var sw, swy float64
			for j, v := range sub {
				sw += subWeights[j]
				swy += subWeights[j] * v
			}
			mean := 0.0
			if sw > 0 {
				mean = swy / sw
			}
			for j := range sub {
				seasonal[phase+j*period] = mean
			}
			continue
		}
		smoothed, err := Loess(sub, span, subWeights)
		if err != nil {
			return err
		}
		for j, v := range smoothed {
			seasonal[phase+j*period] = v
		}
	}
	return nil
}

func centerSeasonal(seasonal []float64, period int) {
	sum := 0.0
	count := 0
	for _, v := range seasonal {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return
	}
	mean := sum / float64(count)
	for i := range seasonal {
		seasonal[i] -= mean
	}
}

// updateRobustnessWeights assigns biweight weights from the residuals so that
// outliers contribute less to the next round of fits.
func updateRobustnessWeights(residual, weights []float64) {
	abs := make([]float64, len(residual))
	for i, r := range residual {
		abs[i] = math.Abs(r)
	}
	h := 6 * median(abs)
	if h <= 0 {
		return
	}
	for i := range weights {
		u := math.Abs(residual[i]) / h
		if u < 1 {
			weights[i] = (1 - u*u) * (1 - u*u)
		} else {
			weights[i] = 0
		}
	}
}
