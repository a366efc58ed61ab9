package seasonality

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jwaldner/finsea/internal/providers/providertest"
	"github.com/jwaldner/finsea/internal/timeseries"
)

func calcResult(t *testing.T, provider *providertest.FakeProvider, years int, opts *Options) *Result {
	t.Helper()
	m := NewModel(provider, "FAKE", years, opts)
	res, err := m.Calc(context.Background())
	if err != nil {
		t.Fatalf("Calc: %v", err)
	}
	return res
}

func TestCalcRangeAndFrames(t *testing.T) {
	provider := &providertest.FakeProvider{YearsOfHistory: 9}
	res := calcResult(t, provider, 5, nil)

	currentYear := time.Now().UTC().Year()
	if res.Years != 5 {
		t.Errorf("Years = %d, want 5", res.Years)
	}
	if res.RangeEnd.Year() != currentYear-1 {
		t.Errorf("RangeEnd year = %d, want %d", res.RangeEnd.Year(), currentYear-1)
	}
	if res.RangeStart.Year() != currentYear-5 {
		t.Errorf("RangeStart year = %d, want %d", res.RangeStart.Year(), currentYear-5)
	}

	if len(res.AnnualPrices.Labels) != 365 {
		t.Errorf("annual frame has %d day labels, want 365", len(res.AnnualPrices.Labels))
	}
	for _, label := range res.AnnualPrices.Labels {
		if label == "02-29" {
			t.Error("annual frame carries a Feb 29 label")
		}
	}
	if len(res.AnnualPrices.Years) != 5 {
		t.Errorf("annual frame has %d years, want 5", len(res.AnnualPrices.Years))
	}

	if got := res.MonthlySeasonal.Labels; len(got) != 12 || got[0] != "Jan" || got[11] != "Dec" {
		t.Errorf("monthly labels = %v", got)
	}
	if got := res.QuarterlySeasonal.Labels; len(got) != 4 || got[0] != "Q1" || got[3] != "Q4" {
		t.Errorf("quarterly labels = %v", got)
	}
	if got := res.WeekdaySeasonal.Labels; len(got) != 5 || got[0] != "Mon" || got[4] != "Fri" {
		t.Errorf("weekday labels = %v", got)
	}
}

func TestCalcSeasonalIsCentered(t *testing.T) {
	provider := &providertest.FakeProvider{YearsOfHistory: 9}
	res := calcResult(t, provider, 5, nil)

	mean := res.Seasonal.Mean()
	if math.Abs(mean) > 1.0 {
		t.Errorf("seasonal component mean = %v, want near zero", mean)
	}

	// The fixture has an annual sine with amplitude 10, so the seasonal
	// component has to carry real structure.
	if res.Seasonal.Max()-res.Seasonal.Min() < 5 {
		t.Errorf("seasonal range %v..%v too flat for a 10-point cycle",
			res.Seasonal.Min(), res.Seasonal.Max())
	}
}

func TestCalcAggregatesBracketMean(t *testing.T) {
	provider := &providertest.FakeProvider{YearsOfHistory: 9}
	res := calcResult(t, provider, 5, nil)

	for _, agg := range res.MonthlySeasonal.Aggregate(0.95) {
		if agg.Mean < agg.Min || agg.Mean > agg.Max {
			t.Errorf("%s: mean %v outside [%v, %v]", agg.Label, agg.Mean, agg.Min, agg.Max)
		}
		if agg.N != 5 {
			t.Errorf("%s: N = %d, want 5", agg.Label, agg.N)
		}
	}
}

func TestCalcShortHistoryShrinksRange(t *testing.T) {
	provider := &providertest.FakeProvider{YearsOfHistory: 4}
	res := calcResult(t, provider, 10, nil)

	if res.Years >= 10 {
		t.Errorf("Years = %d, expected fewer than requested for 4y history", res.Years)
	}
	if res.Years < 2 {
		t.Errorf("Years = %d, want at least 2", res.Years)
	}
}

func TestCalcTooShortHistory(t *testing.T) {
	provider := &providertest.FakeProvider{YearsOfHistory: 1}
	m := NewModel(provider, "FAKE", 5, nil)
	if _, err := m.Calc(context.Background()); err == nil {
		t.Fatal("expected error for a one year history")
	}
}

func TestCalcHistoryErrorPropagates(t *testing.T) {
	wantErr := errors.New("feed down")
	provider := &providertest.FakeProvider{YearsOfHistory: 9, FailHistory: wantErr}
	m := NewModel(provider, "FAKE", 5, nil)
	if _, err := m.Calc(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("Calc error = %v, want %v", err, wantErr)
	}
}

func TestCalcInfoFallback(t *testing.T) {
	provider := &providertest.FakeProvider{
		YearsOfHistory: 9,
		FailInfo:       errors.New("quote unavailable"),
	}
	res := calcResult(t, provider, 5, nil)
	if res.Info.Name != "FAKE" {
		t.Errorf("Info.Name = %q, want symbol fallback", res.Info.Name)
	}
}

func TestCalcInfoUsed(t *testing.T) {
	provider := &providertest.FakeProvider{YearsOfHistory: 9}
	res := calcResult(t, provider, 5, nil)
	if !strings.HasPrefix(res.Info.Name, "Fake ") {
		t.Errorf("Info.Name = %q, want provider metadata", res.Info.Name)
	}
	if res.Info.Currency != "USD" {
		t.Errorf("Info.Currency = %q, want USD", res.Info.Currency)
	}
}

func TestAnalysisRangeErrors(t *testing.T) {
	if _, _, _, err := analysisRange(&timeseries.Series{}, 5); err == nil {
		t.Error("expected error for empty series")
	}
}
