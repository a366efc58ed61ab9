package providers

import (
	"context"
	"time"
)

// PerformanceMetrics tracks timing and performance data for provider operations
type PerformanceMetrics struct {
	RequestDuration time.Duration `json:"request_duration"`
	NetworkTime     time.Duration `json:"network_time"` // Actual HTTP request time
	ParseTime       time.Duration `json:"parse_time"`   // Response decoding time
	CacheHit        bool          `json:"cache_hit"`
	RequestCount    int           `json:"request_count"` // Number of API calls made
	RetryAttempts   int           `json:"retry_attempts"`
}

// Bar represents one daily price bar
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume,omitempty"`
}

// SymbolInfo carries static information about a symbol used in titles and labels
type SymbolInfo struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// HistoryResult contains daily history bars with performance metrics
type HistoryResult struct {
	Symbol  string             `json:"symbol"`
	Bars    []Bar              `json:"bars"`
	Metrics PerformanceMetrics `json:"metrics"`
}

// HistoryProvider defines the interface for daily market history providers
type HistoryProvider interface {
	// GetDailyHistory fetches daily bars for a symbol between start and end
	GetDailyHistory(ctx context.Context, symbol string, start, end time.Time) (*HistoryResult, error)

	// GetSymbolInfo fetches static symbol information (name, currency)
	GetSymbolInfo(ctx context.Context, symbol string) (*SymbolInfo, error)

	// GetProviderName returns the name of the provider (e.g., "yahoo")
	GetProviderName() string

	// Close cleans up any resources (connections, rate limiters, etc.)
	Close() error
}
