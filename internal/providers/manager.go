package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/jwaldner/finsea/internal/logger"
)

// SlowRequestThreshold is the duration above which a request is logged as slow
const SlowRequestThreshold = 5 * time.Second

// ProviderManager wraps a history provider with logging and error context.
// It implements HistoryProvider itself so it can be stacked with other
// wrappers such as the CSV cache.
type ProviderManager struct {
	provider HistoryProvider
}

// NewProviderManager creates a new provider manager
func NewProviderManager(provider HistoryProvider) *ProviderManager {
	return &ProviderManager{
		provider: provider,
	}
}

// GetDailyHistory is a convenience wrapper that adds logging
func (pm *ProviderManager) GetDailyHistory(ctx context.Context, symbol string, start, end time.Time) (*HistoryResult, error) {
	result, err := pm.provider.GetDailyHistory(ctx, symbol, start, end)

	if err != nil {
		return nil, fmt.Errorf("provider %s failed to get daily history for %s: %w",
			pm.provider.GetProviderName(), symbol, err)
	}

	// Log performance if request was slow
	if result.Metrics.RequestDuration > SlowRequestThreshold {
		logger.Warn.Printf("SLOW REQUEST: %s daily history for %s took %v (network: %v, parse: %v)",
			pm.provider.GetProviderName(),
			symbol,
			result.Metrics.RequestDuration,
			result.Metrics.NetworkTime,
			result.Metrics.ParseTime)
	}

	logger.Debug.Printf("history %s: %d bars, cache_hit=%v, retries=%d",
		symbol, len(result.Bars), result.Metrics.CacheHit, result.Metrics.RetryAttempts)

	return result, nil
}

// GetSymbolInfo is a convenience wrapper that adds error context
func (pm *ProviderManager) GetSymbolInfo(ctx context.Context, symbol string) (*SymbolInfo, error) {
	info, err := pm.provider.GetSymbolInfo(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("provider %s failed to get symbol info for %s: %w",
			pm.provider.GetProviderName(), symbol, err)
	}
	return info, nil
}

// GetProviderName returns the underlying provider name
func (pm *ProviderManager) GetProviderName() string {
	return pm.provider.GetProviderName()
}

// Close cleans up the provider
func (pm *ProviderManager) Close() error {
	return pm.provider.Close()
}
