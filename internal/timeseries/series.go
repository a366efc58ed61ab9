// Package timeseries provides the daily price series container used by the
// seasonality model: a timestamp/value pair series with calendar
// regularization, forward filling and period resampling.
package timeseries

import (
	"errors"
	"math"
	"time"
)

// Frequency selects the calendar grid for Regularize and ResampleMean.
type Frequency int

const (
	Daily Frequency = iota
	BusinessDaily
	Weekly
	Monthly
	Quarterly
)

// Series represents a time series with parallel timestamps and values.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a series from explicit timestamps and values.
func New(name string, timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, errors.New("timeseries: timestamps and values must have the same length")
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       name,
	}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(len(s.Values))
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, v := range s.Values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(s.Values)-1)
}

// Std calculates the sample standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the minimum value in the series.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	min := s.Values[0]
	for _, v := range s.Values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the maximum value in the series.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	max := s.Values[0]
	for _, v := range s.Values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)
	values := make([]float64, len(s.Values))
	copy(values, s.Values)
	return &Series{Timestamps: timestamps, Values: values, Name: s.Name}
}

// Slice returns a copy of the sub-series over the index range [start, end).
// Out of range bounds are clamped; an empty range yields an empty series.
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}, Name: s.Name}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) >= end {
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// CropTime returns the sub-series with from <= timestamp <= to.
func (s *Series) CropTime(from, to time.Time) *Series {
	var timestamps []time.Time
	var values []float64
	for i, t := range s.Timestamps {
		if t.Before(from) || t.After(to) {
			continue
		}
		timestamps = append(timestamps, t)
		values = append(values, s.Values[i])
	}
	return &Series{Timestamps: timestamps, Values: values, Name: s.Name}
}

// Regularize projects the series onto a gap-free daily or business-daily grid
// between its first and last observation, forward filling values for grid
// days without an observation. Observations are matched by calendar date.
func (s *Series) Regularize(freq Frequency) (*Series, error) {
	if freq != Daily && freq != BusinessDaily {
		return nil, errors.New("timeseries: Regularize supports Daily and BusinessDaily only")
	}
	if s.Len() == 0 {
		return nil, errors.New("timeseries: cannot regularize an empty series")
	}

	byDate := make(map[string]float64, s.Len())
	for i, t := range s.Timestamps {
		byDate[t.Format("2006-01-02")] = s.Values[i]
	}

	first := dateOnly(s.Timestamps[0])
	last := dateOnly(s.Timestamps[s.Len()-1])

	var timestamps []time.Time
	var values []float64
	lastValue := math.NaN()
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if freq == BusinessDaily && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			continue
		}
		if v, ok := byDate[d.Format("2006-01-02")]; ok {
			lastValue = v
		}
		if math.IsNaN(lastValue) {
			// no observation yet to fill from
			continue
		}
		timestamps = append(timestamps, d)
		values = append(values, lastValue)
	}

	return &Series{Timestamps: timestamps, Values: values, Name: s.Name}, nil
}

// DropLeapDays removes every Feb 29 observation so that all years carry the
// same number of calendar days.
func (s *Series) DropLeapDays() *Series {
	var timestamps []time.Time
	var values []float64
	for i, t := range s.Timestamps {
		if t.Month() == time.February && t.Day() == 29 {
			continue
		}
		timestamps = append(timestamps, t)
		values = append(values, s.Values[i])
	}
	return &Series{Timestamps: timestamps, Values: values, Name: s.Name}
}

// ResampleMean aggregates the series to the mean value per week, month or
// quarter. The resulting timestamp of each bucket is the last observation
// time that fell into it.
func (s *Series) ResampleMean(freq Frequency) (*Series, error) {
	if freq != Weekly && freq != Monthly && freq != Quarterly {
		return nil, errors.New("timeseries: ResampleMean supports Weekly, Monthly and Quarterly only")
	}

	type bucket struct {
		sum   float64
		count int
		last  time.Time
	}

	buckets := make(map[int]*bucket)
	var order []int
	for i, t := range s.Timestamps {
		key := bucketKey(t, freq)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		b.sum += s.Values[i]
		b.count++
		b.last = t
	}

	timestamps := make([]time.Time, 0, len(order))
	values := make([]float64, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		timestamps = append(timestamps, b.last)
		values = append(values, b.sum/float64(b.count))
	}

	return &Series{Timestamps: timestamps, Values: values, Name: s.Name}, nil
}

func bucketKey(t time.Time, freq Frequency) int {
	switch freq {
	case Weekly:
		year, week := t.ISOWeek()
		return year*100 + week
	case Monthly:
		return t.Year()*100 + int(t.Month())
	default: // Quarterly
		return t.Year()*10 + (int(t.Month())-1)/3 + 1
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
