package main

import (
	"flag"
	"io"
	"testing"

	"github.com/jwaldner/finsea/internal/config"
	"github.com/jwaldner/finsea/internal/views"
)

func parseArgs(t *testing.T, args []string) *cliFlags {
	t.Helper()
	fs := flag.NewFlagSet("finsea", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg := &config.Config{
		Analysis: config.AnalysisConfig{DefaultSymbol: "^GDAXI", DefaultYears: 5},
		Chart:    config.ChartConfig{PageWidthMM: 210, PageHeightMM: 297},
	}
	flags := registerFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parsing %v: %v", args, err)
	}
	return flags
}

func TestFlagDefaults(t *testing.T) {
	flags := parseArgs(t, nil)
	if flags.symbol != "^GDAXI" || flags.years != 5 {
		t.Errorf("defaults = %s/%d, want ^GDAXI/5", flags.symbol, flags.years)
	}
	if flags.view != "console" {
		t.Errorf("default view = %s, want console", flags.view)
	}
}

func TestFlagLongNames(t *testing.T) {
	flags := parseArgs(t, []string{"-symbol", "AAPL", "-years", "3", "-view", "chart", "-file", "out"})
	if flags.symbol != "AAPL" || flags.years != 3 || flags.view != "chart" || flags.file != "out" {
		t.Errorf("parsed = %+v", flags)
	}
}

func TestFlagShortAliases(t *testing.T) {
	flags := parseArgs(t, []string{"-s", "AAPL", "-y", "3", "-v", "chart", "-f", "out"})
	if flags.symbol != "AAPL" {
		t.Errorf("-s: symbol = %s, want AAPL", flags.symbol)
	}
	if flags.years != 3 {
		t.Errorf("-y: years = %d, want 3", flags.years)
	}
	if flags.view != "chart" {
		t.Errorf("-v: view = %s, want chart", flags.view)
	}
	if flags.file != "out" {
		t.Errorf("-f: file = %s, want out", flags.file)
	}
}

func TestFlagPageDisables(t *testing.T) {
	flags := parseArgs(t, []string{"-no-weekly", "-no-annual-prices"})
	disabled := flags.disabledPages()
	if !disabled[views.PageWeekly] || !disabled[views.PageAnnualPrices] {
		t.Errorf("disabled = %v", disabled)
	}
	if disabled[views.PageMonthly] {
		t.Error("monthly page disabled without its flag")
	}
}
