// Package yahoo implements the history provider backed by the public Yahoo
// Finance endpoints via piquette/finance-go.
package yahoo

import (
	"context"
	"fmt"
	"sync"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"github.com/jwaldner/finsea/internal/logger"
	"github.com/jwaldner/finsea/internal/providers"
)

const (
	// DefaultRequestDelay keeps us well below Yahoo's unofficial rate limits
	DefaultRequestDelay = 2500 * time.Millisecond

	// DefaultMaxRetries for transient request failures
	DefaultMaxRetries = 2

	// DefaultRequestTimeout bounds a single request against the endpoint
	DefaultRequestTimeout = 30 * time.Second
)

// Provider fetches daily bars and symbol metadata from Yahoo Finance. All
// requests go through a fixed inter-request delay.
type Provider struct {
	requestDelay   time.Duration
	requestTimeout time.Duration
	maxRetries     int

	mu          sync.Mutex
	lastRequest time.Time
}

// NewProvider creates a Yahoo Finance provider. Non-positive arguments
// select the defaults.
func NewProvider(requestDelay, requestTimeout time.Duration, maxRetries int) *Provider {
	if requestDelay <= 0 {
		requestDelay = DefaultRequestDelay
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Provider{
		requestDelay:   requestDelay,
		requestTimeout: requestTimeout,
		maxRetries:     maxRetries,
	}
}

// GetDailyHistory fetches daily bars for symbol between start and end.
func (p *Provider) GetDailyHistory(ctx context.Context, symbol string, start, end time.Time) (*providers.HistoryResult, error) {
	started := time.Now()
	metrics := providers.PerformanceMetrics{}

	var bars []providers.Bar
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.RetryAttempts++
			logger.Warn.Printf("retrying daily history for %s (attempt %d/%d): %v",
				symbol, attempt, p.maxRetries, lastErr)
		}
		if err := p.throttle(ctx); err != nil {
			return nil, err
		}

		networkStart := time.Now()
		bars, lastErr = p.fetchBars(ctx, symbol, start, end)
		metrics.NetworkTime += time.Since(networkStart)
		metrics.RequestCount++

		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("yahoo daily history for %s: %w", symbol, lastErr)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo returned no daily bars for %s", symbol)
	}

	metrics.RequestDuration = time.Since(started)
	return &providers.HistoryResult{
		Symbol:  symbol,
		Bars:    bars,
		Metrics: metrics,
	}, nil
}

func (p *Provider) fetchBars(ctx context.Context, symbol string, start, end time.Time) ([]providers.Bar, error) {
	ctx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	params := &chart.Params{
		Params:   finance.Params{Context: &ctx},
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)

	var bars []providers.Bar
	for iter.Next() {
		bar := iter.Bar()
		bars = append(bars, providers.Bar{
			Timestamp: time.Unix(int64(bar.Timestamp), 0).UTC(),
			Open:      bar.Open.InexactFloat64(),
			High:      bar.High.InexactFloat64(),
			Low:       bar.Low.InexactFloat64(),
			Close:     bar.Close.InexactFloat64(),
			Volume:    int64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}

// GetSymbolInfo fetches the quote metadata used for chart titles.
func (p *Provider) GetSymbolInfo(ctx context.Context, symbol string) (*providers.SymbolInfo, error) {
	if err := p.throttle(ctx); err != nil {
		return nil, err
	}

	q, err := quote.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("yahoo quote for %s: %w", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("yahoo quote for %s: no data", symbol)
	}

	name := q.ShortName
	if name == "" {
		name = symbol
	}
	return &providers.SymbolInfo{
		Symbol:   symbol,
		Name:     name,
		Currency: q.CurrencyID,
	}, nil
}

// GetProviderName returns "yahoo".
func (p *Provider) GetProviderName() string {
	return "yahoo"
}

// Close is a no-op; the provider holds no persistent connections.
func (p *Provider) Close() error {
	return nil
}

// throttle enforces the fixed inter-request delay, honoring ctx cancellation.
func (p *Provider) throttle(ctx context.Context) error {
	p.mu.Lock()
	wait := p.requestDelay - time.Since(p.lastRequest)
	p.lastRequest = time.Now().Add(wait)
	p.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
