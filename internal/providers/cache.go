package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jwaldner/finsea/internal/config"
	"github.com/jwaldner/finsea/internal/logger"
	"github.com/jwaldner/finsea/internal/timeseries"
)

// CachedProvider wraps a history provider with a local CSV cache. History is
// cached per symbol and calendar day, so the first request of a day downloads
// and every later one is served from disk. The cache file always holds the
// full available history of the symbol and requests are cropped to their
// range, so a later same-day request for a wider range still hits. Only
// closing prices survive the round trip through the cache file.
type CachedProvider struct {
	provider HistoryProvider
	dir      string
}

// fullHistoryStart is the download start of cache misses.
var fullHistoryStart = time.Unix(0, 0).UTC()

// NewCachedProvider creates a caching wrapper storing files under dir.
func NewCachedProvider(provider HistoryProvider, dir string) *CachedProvider {
	return &CachedProvider{provider: provider, dir: dir}
}

// GetDailyHistory serves history from the cache file when present, otherwise
// fetches through the underlying provider and writes the cache file.
func (cp *CachedProvider) GetDailyHistory(ctx context.Context, symbol string, start, end time.Time) (*HistoryResult, error) {
	if err := os.MkdirAll(cp.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", cp.dir, err)
	}

	path := cp.cachePath(symbol)
	if _, err := os.Stat(path); err == nil {
		started := time.Now()
		series, err := timeseries.LoadCSV(path, nil)
		if err == nil {
			bars := make([]Bar, series.Len())
			for i, t := range series.Timestamps {
				v := series.Values[i]
				bars[i] = Bar{Timestamp: t, Open: v, High: v, Low: v, Close: v}
			}
			logger.Debug.Printf("cache hit for %s: %s (%d bars)", symbol, path, len(bars))
			return &HistoryResult{
				Symbol: symbol,
				Bars:   cropBars(bars, start, end),
				Metrics: PerformanceMetrics{
					RequestDuration: time.Since(started),
					ParseTime:       time.Since(started),
					CacheHit:        true,
				},
			}, nil
		}
		// unreadable cache file, fall through to a fresh download
		logger.Warn.Printf("ignoring unreadable cache file %s: %v", path, err)
	}

	result, err := cp.provider.GetDailyHistory(ctx, symbol, fullHistoryStart, end)
	if err != nil {
		return nil, err
	}

	if err := cp.store(path, result); err != nil {
		logger.Warn.Printf("could not write cache file %s: %v", path, err)
	}

	result.Bars = cropBars(result.Bars, start, end)
	return result, nil
}

// cropBars drops bars outside [start, end].
func cropBars(bars []Bar, start, end time.Time) []Bar {
	out := make([]Bar, 0, len(bars))
	for _, bar := range bars {
		if bar.Timestamp.Before(start) || bar.Timestamp.After(end) {
			continue
		}
		out = append(out, bar)
	}
	return out
}

// GetSymbolInfo passes through to the underlying provider.
func (cp *CachedProvider) GetSymbolInfo(ctx context.Context, symbol string) (*SymbolInfo, error) {
	return cp.provider.GetSymbolInfo(ctx, symbol)
}

// GetProviderName returns the underlying provider name.
func (cp *CachedProvider) GetProviderName() string {
	return cp.provider.GetProviderName()
}

// Close cleans up the underlying provider.
func (cp *CachedProvider) Close() error {
	return cp.provider.Close()
}

func (cp *CachedProvider) cachePath(symbol string) string {
	name := fmt.Sprintf("%s_%s.csv", config.SanitizeSymbol(symbol), time.Now().Format("2006-01-02"))
	return filepath.Join(cp.dir, name)
}

func (cp *CachedProvider) store(path string, result *HistoryResult) error {
	timestamps := make([]time.Time, len(result.Bars))
	values := make([]float64, len(result.Bars))
	for i, bar := range result.Bars {
		timestamps[i] = bar.Timestamp
		values[i] = bar.Close
	}
	series, err := timeseries.New("Close", timestamps, values)
	if err != nil {
		return err
	}
	return series.SaveCSV(path)
}
