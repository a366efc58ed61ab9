package seasonality

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/jwaldner/finsea/internal/timeseries"
)

// WideFrame holds one observation per (year, calendar label). It is the Go
// counterpart of the wide-form dataframes of the analysis: the same calendar
// position of several years side by side, ready for cross-year aggregation.
type WideFrame struct {
	Labels []string // calendar labels in calendar order
	Years  []int    // years in ascending order

	cells     map[int]map[string]float64
	labelSeen map[string]bool
}

// NewWideFrame creates an empty frame.
func NewWideFrame() *WideFrame {
	return &WideFrame{
		cells:     make(map[int]map[string]float64),
		labelSeen: make(map[string]bool),
	}
}

// Set stores the value for a (year, label) cell.
func (f *WideFrame) Set(year int, label string, v float64) {
	row, ok := f.cells[year]
	if !ok {
		row = make(map[string]float64)
		f.cells[year] = row
		f.Years = append(f.Years, year)
		sort.Ints(f.Years)
	}
	if !f.labelSeen[label] {
		f.labelSeen[label] = true
		f.Labels = append(f.Labels, label)
	}
	row[label] = v
}

// Value returns the cell for (year, label) and whether it exists.
func (f *WideFrame) Value(year int, label string) (float64, bool) {
	row, ok := f.cells[year]
	if !ok {
		return 0, false
	}
	v, ok := row[label]
	return v, ok
}

// Column returns the values of one label across all years that carry it.
func (f *WideFrame) Column(label string) []float64 {
	var out []float64
	for _, year := range f.Years {
		if v, ok := f.cells[year][label]; ok {
			out = append(out, v)
		}
	}
	return out
}

// LabelStats aggregates one calendar label across years.
type LabelStats struct {
	Label string  `json:"label"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Lower float64 `json:"lower"` // lower confidence bound
	Upper float64 `json:"upper"` // upper confidence bound
	N     int     `json:"n"`
}

// Aggregate computes per-label statistics across years. confidence selects
// the quantile band width, e.g. 0.95 yields the 2.5% and 97.5% empirical
// quantiles. With a single year of data the band collapses onto the value.
func (f *WideFrame) Aggregate(confidence float64) []LabelStats {
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}
	alpha := (1 - confidence) / 2

	out := make([]LabelStats, 0, len(f.Labels))
	for _, label := range f.Labels {
		column := f.Column(label)
		if len(column) == 0 {
			continue
		}
		sorted := make([]float64, len(column))
		copy(sorted, column)
		sort.Float64s(sorted)

		out = append(out, LabelStats{
			Label: label,
			Mean:  stat.Mean(column, nil),
			Min:   sorted[0],
			Max:   sorted[len(sorted)-1],
			Lower: stat.Quantile(alpha, stat.Empirical, sorted, nil),
			Upper: stat.Quantile(1-alpha, stat.Empirical, sorted, nil),
			N:     len(column),
		})
	}
	return out
}

// labelRank orders calendar labels within a frame.
type labelRank func(label string) int

// sortLabels fixes the label order by rank, falling back to string order for
// equal ranks.
func (f *WideFrame) sortLabels(rank labelRank) {
	sort.SliceStable(f.Labels, func(i, j int) bool {
		ri, rj := rank(f.Labels[i]), rank(f.Labels[j])
		if ri != rj {
			return ri < rj
		}
		return f.Labels[i] < f.Labels[j]
	})
}

// wideForm crops a series to [start, end], optionally drops leap days, and
// distributes the observations into a frame keyed by year and calendar label.
func wideForm(s *timeseries.Series, start, end time.Time, label func(time.Time) string, rank labelRank, dropLeap bool) *WideFrame {
	cropped := s.CropTime(start, end)
	if dropLeap {
		cropped = cropped.DropLeapDays()
	}

	frame := NewWideFrame()
	for i, t := range cropped.Timestamps {
		if math.IsNaN(cropped.Values[i]) {
			continue
		}
		frame.Set(t.Year(), label(t), cropped.Values[i])
	}
	frame.sortLabels(rank)
	return frame
}

func dayLabel(t time.Time) string     { return t.Format("01-02") }
func monthLabel(t time.Time) string   { return t.Format("Jan") }
func weekdayLabel(t time.Time) string { return t.Format("Mon") }

func quarterLabel(t time.Time) string {
	return [4]string{"Q1", "Q2", "Q3", "Q4"}[(int(t.Month())-1)/3]
}

func weekLabel(t time.Time) string {
	_, week := t.ISOWeek()
	return twoDigits(week)
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

func lexicalRank(string) int { return 0 }

func monthRank(label string) int {
	for i, m := range [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"} {
		if m == label {
			return i
		}
	}
	return 12
}

func weekdayRank(label string) int {
	for i, d := range [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		if d == label {
			return i
		}
	}
	return 7
}
