package views

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jwaldner/finsea/internal/logger"
	"github.com/jwaldner/finsea/internal/seasonality"
	"github.com/jwaldner/finsea/internal/stats"
	"github.com/jwaldner/finsea/internal/timeseries"
)

// Chart page names. Render writes one PNG per enabled page.
const (
	PageOverallPrices   = "overall_prices"
	PageOverallTrend    = "overall_trend"
	PageOverallResidual = "overall_residual"
	PageAnnualPrices    = "annual_prices"
	PageAnnualSeasonal  = "annual_seasonal"
	PageAnnualResidual  = "annual_residual"
	PageMonthly         = "monthly"
	PageQuarterly       = "quarterly"
	PageWeekly          = "weekly"
	PageWeekday         = "weekday"
)

// Pages lists all chart pages in render order.
var Pages = []string{
	PageOverallPrices,
	PageOverallTrend,
	PageOverallResidual,
	PageAnnualPrices,
	PageAnnualSeasonal,
	PageAnnualResidual,
	PageMonthly,
	PageQuarterly,
	PageWeekly,
	PageWeekday,
}

// Rolling windows of the overall prices page, in days.
const (
	rollingNarrow = 50
	rollingWide   = 200
)

// pixelsPerMM converts the configured page size into raster dimensions.
const pixelsPerMM = 4

// ChartOptions configures the chart view.
type ChartOptions struct {
	PageWidthMM     int
	PageHeightMM    int
	ConfidenceLevel float64
	Disabled        map[string]bool // pages to skip
}

func (o *ChartOptions) withDefaults() ChartOptions {
	opts := ChartOptions{}
	if o != nil {
		opts = *o
	}
	if opts.PageWidthMM <= 0 {
		opts.PageWidthMM = 210
	}
	if opts.PageHeightMM <= 0 {
		opts.PageHeightMM = 297
	}
	if opts.ConfidenceLevel <= 0 || opts.ConfidenceLevel >= 1 {
		opts.ConfidenceLevel = 0.95
	}
	return opts
}

// ChartView renders the analysis as PNG chart pages named
// <prefix>_<page>.png.
type ChartView struct {
	prefix string
	opts   ChartOptions
}

// NewChartView creates a chart view. An empty prefix falls back to the
// symbol at render time.
func NewChartView(prefix string, opts *ChartOptions) *ChartView {
	return &ChartView{prefix: prefix, opts: opts.withDefaults()}
}

// Render writes every enabled page.
func (v *ChartView) Render(res *seasonality.Result) error {
	prefix := v.prefix
	if prefix == "" {
		prefix = res.Symbol
	}
	for _, page := range Pages {
		if v.opts.Disabled[page] {
			continue
		}
		path := fmt.Sprintf("%s_%s.png", prefix, page)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		err = v.RenderPage(res, page, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("rendering page %s: %w", page, err)
		}
		logger.Info.Printf("wrote %s", path)
	}
	return nil
}

// RenderPage renders a single page as PNG to w.
func (v *ChartView) RenderPage(res *seasonality.Result, page string, w io.Writer) error {
	width := v.opts.PageWidthMM * pixelsPerMM
	height := v.opts.PageHeightMM * pixelsPerMM / 3

	switch page {
	case PageOverallPrices:
		cropped := res.Prices.CropTime(res.RangeStart, res.Prices.Timestamps[res.Prices.Len()-1])
		narrow, _ := timeseries.New("", cropped.Timestamps, stats.RollingMean(cropped.Values, rollingNarrow))
		wide, _ := timeseries.New("", cropped.Timestamps, stats.RollingMean(cropped.Values, rollingWide))
		graph := v.timeChart(
			fmt.Sprintf("%s: daily closing prices of last %d years", res.Info.Name, res.Years),
			res.Info.Currency, width, height,
			lineSeries("Daily closing price", cropped, chart.ColorBlue),
			lineSeries(fmt.Sprintf("%d days rolling average", rollingNarrow), narrow, chart.ColorGreen),
			lineSeries(fmt.Sprintf("%d days rolling average", rollingWide), wide, chart.ColorRed),
		)
		return graph.Render(chart.PNG, w)

	case PageOverallTrend:
		cropped := res.Prices.CropTime(res.RangeStart, res.Prices.Timestamps[res.Prices.Len()-1])
		graph := v.timeChart(
			fmt.Sprintf("%s: fit of closing prices to trend, last %d years", res.Info.Name, res.Years),
			res.Info.Currency, width, height,
			lineSeries("Daily closing price", cropped, chart.ColorAlternateGray),
			lineSeries("Trend", res.Trend, chart.ColorBlue),
		)
		return graph.Render(chart.PNG, w)

	case PageOverallResidual:
		graph := v.timeChart(
			fmt.Sprintf("%s: residual of trend, last %d years", res.Info.Name, res.Years),
			res.Info.Currency, width, height,
			lineSeries("Residual", res.Residual, chart.ColorBlue),
		)
		return graph.Render(chart.PNG, w)

	case PageAnnualPrices:
		return v.renderAnnual(res, res.AnnualPrices, res.AnnualPricesRolling,
			"annual closing prices", width, height, w)

	case PageAnnualSeasonal:
		return v.renderAnnual(res, res.AnnualSeasonal, nil,
			"annual seasonal price changes", width, height, w)

	case PageAnnualResidual:
		return v.renderAnnual(res, res.AnnualResidual, nil,
			"annual non-seasonal price changes", width, height, w)

	case PageMonthly:
		return v.renderBars(res, res.MonthlySeasonal, "monthly seasonal price changes", width, height, w)
	case PageQuarterly:
		return v.renderBars(res, res.QuarterlySeasonal, "quarterly seasonal price changes", width, height, w)
	case PageWeekly:
		return v.renderBars(res, res.WeeklySeasonal, "weekly seasonal price changes", width, height, w)
	case PageWeekday:
		return v.renderBars(res, res.WeekdaySeasonal, "weekdaily seasonal price changes", width, height, w)

	default:
		return fmt.Errorf("unknown chart page: %s", page)
	}
}

func (v *ChartView) timeChart(title, unit string, width, height int, series ...chart.Series) chart.Chart {
	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
		},
		YAxis: chart.YAxis{
			Name: unit,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

// renderAnnual draws the cross-year mean of a daily frame with its
// confidence band, mapped onto one reference year, plus a marker at today's
// calendar position.
func (v *ChartView) renderAnnual(res *seasonality.Result, frame, rolling *seasonality.WideFrame, subtitle string, width, height int, w io.Writer) error {
	refYear := res.RangeEnd.Year()
	aggs := frame.Aggregate(v.opts.ConfidenceLevel)

	xs := make([]time.Time, 0, len(aggs))
	mean := make([]float64, 0, len(aggs))
	lower := make([]float64, 0, len(aggs))
	upper := make([]float64, 0, len(aggs))
	for _, agg := range aggs {
		t, err := time.Parse("2006-01-02", fmt.Sprintf("%d-%s", refYear, agg.Label))
		if err != nil {
			continue
		}
		xs = append(xs, t)
		mean = append(mean, agg.Mean)
		lower = append(lower, agg.Lower)
		upper = append(upper, agg.Upper)
	}
	if len(xs) < 2 {
		return fmt.Errorf("not enough aggregated days to chart")
	}

	bandColor := drawing.Color{R: 120, G: 160, B: 220, A: 255}
	confidencePct := int(v.opts.ConfidenceLevel * 100)
	series := []chart.Series{
		chart.TimeSeries{
			Name:    "Daily mean",
			XValues: xs,
			YValues: mean,
			Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 1.5},
		},
		chart.TimeSeries{
			Name:    fmt.Sprintf("%d%% band lower", confidencePct),
			XValues: xs,
			YValues: lower,
			Style:   chart.Style{StrokeColor: bandColor, StrokeWidth: 1.0},
		},
		chart.TimeSeries{
			Name:    fmt.Sprintf("%d%% band upper", confidencePct),
			XValues: xs,
			YValues: upper,
			Style:   chart.Style{StrokeColor: bandColor, StrokeWidth: 1.0},
		},
	}

	if rolling != nil {
		rollAggs := rolling.Aggregate(v.opts.ConfidenceLevel)
		rollXs := make([]time.Time, 0, len(rollAggs))
		rollMean := make([]float64, 0, len(rollAggs))
		for _, agg := range rollAggs {
			t, err := time.Parse("2006-01-02", fmt.Sprintf("%d-%s", refYear, agg.Label))
			if err != nil {
				continue
			}
			rollXs = append(rollXs, t)
			rollMean = append(rollMean, agg.Mean)
		}
		if len(rollXs) >= 2 {
			series = append(series, chart.TimeSeries{
				Name:    "Rolling average",
				XValues: rollXs,
				YValues: rollMean,
				Style:   chart.Style{StrokeColor: chart.ColorGreen, StrokeWidth: 1.0},
			})
		}
	}

	// dashed vertical marker at today's calendar position
	now := time.Now().UTC()
	if !(now.Month() == time.February && now.Day() == 29) {
		today := time.Date(refYear, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		lo, hi := minMax(lower, upper)
		series = append(series, chart.TimeSeries{
			Name:    "today",
			XValues: []time.Time{today, today},
			YValues: []float64{lo, hi},
			Style: chart.Style{
				StrokeColor:     chart.ColorRed,
				StrokeWidth:     1.0,
				StrokeDashArray: []float64{4.0, 4.0},
			},
		})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s: %s, %d years", res.Info.Name, subtitle, res.Years),
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan"),
		},
		YAxis: chart.YAxis{
			Name: res.Info.Currency,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// renderBars draws the per-label mean of a coarse calendar frame.
func (v *ChartView) renderBars(res *seasonality.Result, frame *seasonality.WideFrame, subtitle string, width, height int, w io.Writer) error {
	aggs := frame.Aggregate(v.opts.ConfidenceLevel)
	if len(aggs) == 0 {
		return fmt.Errorf("no aggregated labels to chart")
	}

	bars := make([]chart.Value, 0, len(aggs))
	for _, agg := range aggs {
		bars = append(bars, chart.Value{Label: agg.Label, Value: agg.Mean})
	}

	barWidth := width / (2 * len(bars))
	if barWidth < 4 {
		barWidth = 4
	}
	if barWidth > 60 {
		barWidth = 60
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("%s: %s, %d years", res.Info.Name, subtitle, res.Years),
		Width:    width,
		Height:   height,
		BarWidth: barWidth,
		Bars:     bars,
	}
	return graph.Render(chart.PNG, w)
}

// lineSeries converts a series into a chart line, skipping NaN values.
func lineSeries(name string, s *timeseries.Series, color drawing.Color) chart.TimeSeries {
	xs := make([]time.Time, 0, s.Len())
	ys := make([]float64, 0, s.Len())
	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		xs = append(xs, s.Timestamps[i])
		ys = append(ys, v)
	}
	return chart.TimeSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style:   chart.Style{StrokeColor: color, StrokeWidth: 1.0},
	}
}

func minMax(lower, upper []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range lower {
		if v < lo {
			lo = v
		}
	}
	for _, v := range upper {
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
