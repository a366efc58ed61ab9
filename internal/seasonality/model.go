// Package seasonality implements the analysis model: it turns the daily price
// history of one symbol into trend, seasonal and residual components and
// aligns them by calendar period across years.
package seasonality

import (
	"context"
	"fmt"
	"time"

	"github.com/jwaldner/finsea/internal/logger"
	"github.com/jwaldner/finsea/internal/providers"
	"github.com/jwaldner/finsea/internal/stats"
	"github.com/jwaldner/finsea/internal/timeseries"
)

// Period of the annual seasonal cycle in days. The price history is
// regularized onto a gap-free calendar-daily grid before decomposition so
// that one period spans exactly one year.
const annualPeriod = 365

// DefaultYears is the default number of complete years analyzed backwards.
const DefaultYears = 5

// DefaultAnnualRollingDays is the default window of the rolling average
// companion of the annual price frame.
const DefaultAnnualRollingDays = 30

// Options tunes the analysis.
type Options struct {
	Robust            bool // robust STL with biweight outlier damping
	AnnualRollingDays int
}

// Model analyzes a financial symbol for seasonality, trend and residual
// behavior over a range of complete calendar years.
type Model struct {
	provider providers.HistoryProvider
	symbol   string
	years    int
	opts     Options
}

// NewModel creates a model for symbol analyzing at most years complete
// calendar years backwards from today.
func NewModel(provider providers.HistoryProvider, symbol string, years int, opts *Options) *Model {
	if years < 1 {
		years = DefaultYears
	}
	o := Options{}
	if opts != nil {
		o = *opts
	}
	if o.AnnualRollingDays <= 0 {
		o.AnnualRollingDays = DefaultAnnualRollingDays
	}
	return &Model{
		provider: provider,
		symbol:   symbol,
		years:    years,
		opts:     o,
	}
}

// Result carries everything the analysis computed.
type Result struct {
	Symbol     string
	Info       providers.SymbolInfo
	Years      int // actual number of complete years analyzed
	RangeStart time.Time
	RangeEnd   time.Time

	// Overall daily data. Prices spans the full downloaded history, the
	// decomposed components span the analysis range up to today.
	Prices   *timeseries.Series
	Trend    *timeseries.Series
	Seasonal *timeseries.Series
	Residual *timeseries.Series

	// Annual wide-form frames: one value per (year, calendar day).
	AnnualPrices        *WideFrame
	AnnualPricesRolling *WideFrame
	AnnualSeasonal      *WideFrame
	AnnualResidual      *WideFrame

	// Seasonal component grouped by coarser calendar periods.
	MonthlySeasonal   *WideFrame
	QuarterlySeasonal *WideFrame
	WeeklySeasonal    *WideFrame
	WeekdaySeasonal   *WideFrame
}

// Calc downloads the history and fills a Result.
func (m *Model) Calc(ctx context.Context) (*Result, error) {
	now := time.Now().UTC()
	downloadStart := now.AddDate(-(m.years + 3), 0, 0)

	hist, err := m.provider.GetDailyHistory(ctx, m.symbol, downloadStart, now)
	if err != nil {
		return nil, err
	}

	info := providers.SymbolInfo{Symbol: m.symbol, Name: m.symbol}
	if si, err := m.provider.GetSymbolInfo(ctx, m.symbol); err == nil {
		info = *si
	} else {
		logger.Warn.Printf("symbol info unavailable for %s, using symbol as name: %v", m.symbol, err)
	}

	raw, err := barsToSeries(m.symbol, hist.Bars)
	if err != nil {
		return nil, err
	}

	prices, err := raw.Regularize(timeseries.Daily)
	if err != nil {
		return nil, fmt.Errorf("regularizing %s history: %w", m.symbol, err)
	}

	rangeStart, rangeEnd, years, err := analysisRange(prices, m.years)
	if err != nil {
		return nil, err
	}
	logger.Info.Printf("analyzing %s over %d complete years (%s .. %s)",
		m.symbol, years, rangeStart.Format("2006-01-02"), rangeEnd.Format("2006-01-02"))

	// Decompose from the range start through today so the current partial
	// year contributes to the fit but not to the annual alignment.
	decompInput := prices.CropTime(rangeStart, now)
	stl, err := stats.STL(decompInput.Values, annualPeriod, &stats.STLOptions{Robust: m.opts.Robust})
	if err != nil {
		return nil, fmt.Errorf("decomposing %s: %w", m.symbol, err)
	}

	trend, _ := timeseries.New("trend", decompInput.Timestamps, stl.Trend)
	seasonal, _ := timeseries.New("seasonal", decompInput.Timestamps, stl.Seasonal)
	residual, _ := timeseries.New("residual", decompInput.Timestamps, stl.Residual)

	rolling, _ := timeseries.New("rolling", prices.Timestamps,
		stats.RollingMean(prices.Values, m.opts.AnnualRollingDays))

	monthlySeasonal, err := seasonal.ResampleMean(timeseries.Monthly)
	if err != nil {
		return nil, err
	}
	quarterlySeasonal, err := seasonal.ResampleMean(timeseries.Quarterly)
	if err != nil {
		return nil, err
	}
	weeklySeasonal, err := seasonal.ResampleMean(timeseries.Weekly)
	if err != nil {
		return nil, err
	}

	return &Result{
		Symbol:     m.symbol,
		Info:       info,
		Years:      years,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,

		Prices:   prices,
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,

		AnnualPrices:        wideForm(prices, rangeStart, rangeEnd, dayLabel, lexicalRank, true),
		AnnualPricesRolling: wideForm(rolling, rangeStart, rangeEnd, dayLabel, lexicalRank, true),
		AnnualSeasonal:      wideForm(seasonal, rangeStart, rangeEnd, dayLabel, lexicalRank, true),
		AnnualResidual:      wideForm(residual, rangeStart, rangeEnd, dayLabel, lexicalRank, true),

		MonthlySeasonal:   wideForm(monthlySeasonal, rangeStart, rangeEnd, monthLabel, monthRank, false),
		QuarterlySeasonal: wideForm(quarterlySeasonal, rangeStart, rangeEnd, quarterLabel, lexicalRank, false),
		WeeklySeasonal:    wideForm(weeklySeasonal, rangeStart, rangeEnd, weekLabel, lexicalRank, false),
		WeekdaySeasonal:   wideForm(filterWeekdays(seasonal), rangeStart, rangeEnd, weekdayLabel, weekdayRank, false),
	}, nil
}

// analysisRange selects the last complete calendar years of the series: at
// most maxYears, fewer when the history is shorter, never including the
// first (usually partial) year of the history or the current year.
func analysisRange(s *timeseries.Series, maxYears int) (start, end time.Time, years int, err error) {
	if s.Len() == 0 {
		return time.Time{}, time.Time{}, 0, fmt.Errorf("empty price history")
	}

	minYear := s.Timestamps[0].Year()
	maxYear := s.Timestamps[s.Len()-1].Year()

	firstYear := maxYear - maxYears
	if (maxYear-1)-(minYear+1) < maxYears {
		firstYear = minYear + 1
	}
	lastYear := maxYear - 1

	years = lastYear - firstYear + 1
	if years < 2 {
		return time.Time{}, time.Time{}, 0,
			fmt.Errorf("history of %d..%d leaves %d complete years, need at least 2", minYear, maxYear, years)
	}

	start = time.Date(firstYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(lastYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	return start, end, years, nil
}

func barsToSeries(symbol string, bars []providers.Bar) (*timeseries.Series, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no history bars for %s", symbol)
	}
	timestamps := make([]time.Time, len(bars))
	values := make([]float64, len(bars))
	for i, bar := range bars {
		timestamps[i] = bar.Timestamp
		values[i] = bar.Close
	}
	return timeseries.New("Close", timestamps, values)
}

// filterWeekdays drops Saturday and Sunday observations so the weekday frame
// only carries trading days.
func filterWeekdays(s *timeseries.Series) *timeseries.Series {
	var timestamps []time.Time
	var values []float64
	for i, t := range s.Timestamps {
		if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			continue
		}
		timestamps = append(timestamps, t)
		values = append(values, s.Values[i])
	}
	return &timeseries.Series{Timestamps: timestamps, Values: values, Name: s.Name}
}
