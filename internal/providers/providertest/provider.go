// Package providertest provides a synthetic in-memory history provider for
// tests: several years of daily bars with a known trend and annual cycle.
package providertest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jwaldner/finsea/internal/providers"
)

// FakeProvider serves deterministic daily history for any symbol. Values
// follow a linear trend plus a sine wave over the day of year, so the
// seasonal structure is known in advance.
type FakeProvider struct {
	YearsOfHistory    int     // how far back the generated history reaches
	SeasonalAmplitude float64 // default 10
	DailyDrift        float64 // default 0.02
	FailHistory       error   // when set, GetDailyHistory fails with it
	FailInfo          error   // when set, GetSymbolInfo fails with it

	HistoryCalls int
	InfoCalls    int
}

// GetDailyHistory generates weekday bars between start and end, bounded by
// the configured history depth.
func (f *FakeProvider) GetDailyHistory(ctx context.Context, symbol string, start, end time.Time) (*providers.HistoryResult, error) {
	f.HistoryCalls++
	if f.FailHistory != nil {
		return nil, f.FailHistory
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	amplitude := f.SeasonalAmplitude
	if amplitude == 0 {
		amplitude = 10
	}
	drift := f.DailyDrift
	if drift == 0 {
		drift = 0.02
	}

	earliest := time.Now().UTC().AddDate(-f.YearsOfHistory, 0, 0)
	if start.Before(earliest) {
		start = earliest
	}

	var bars []providers.Bar
	i := 0
	for d := dateOnly(start); !d.After(dateOnly(end)); d = d.AddDate(0, 0, 1) {
		i++
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		doy := float64(d.YearDay())
		value := 100 + drift*float64(i) + amplitude*math.Sin(2*math.Pi*doy/365)
		bars = append(bars, providers.Bar{
			Timestamp: d,
			Open:      value,
			High:      value,
			Low:       value,
			Close:     value,
			Volume:    1000,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars generated for %s", symbol)
	}

	return &providers.HistoryResult{
		Symbol:  symbol,
		Bars:    bars,
		Metrics: providers.PerformanceMetrics{RequestCount: 1},
	}, nil
}

// GetSymbolInfo returns fixed metadata.
func (f *FakeProvider) GetSymbolInfo(ctx context.Context, symbol string) (*providers.SymbolInfo, error) {
	f.InfoCalls++
	if f.FailInfo != nil {
		return nil, f.FailInfo
	}
	return &providers.SymbolInfo{
		Symbol:   symbol,
		Name:     "Fake " + symbol,
		Currency: "USD",
	}, nil
}

// GetProviderName returns "fake".
func (f *FakeProvider) GetProviderName() string {
	return "fake"
}

// Close is a no-op.
func (f *FakeProvider) Close() error {
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
