package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// ProviderConfig represents market data provider configuration
type ProviderConfig struct {
	Name           string `yaml:"name"`             // currently "yahoo"
	RequestDelayMS int    `yaml:"request_delay_ms"` // min delay between requests
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

// AnalysisConfig represents seasonality analysis defaults
type AnalysisConfig struct {
	DefaultSymbol     string `yaml:"default_symbol"`
	DefaultYears      int    `yaml:"default_years"`
	Robust            bool   `yaml:"robust"`
	AnnualRollingDays int    `yaml:"annual_rolling_days"`
}

// ChartConfig represents chart rendering defaults
type ChartConfig struct {
	PageWidthMM     int     `yaml:"page_width_mm"`
	PageHeightMM    int     `yaml:"page_height_mm"`
	ConfidenceLevel float64 `yaml:"confidence_level"`
}

type Config struct {
	// Server settings
	Port string

	// Download cache settings
	CacheDir string

	// Analysis defaults
	Analysis AnalysisConfig `yaml:"analysis"`
	// Provider settings
	Provider ProviderConfig `yaml:"provider"`
	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
	// Chart settings
	Chart ChartConfig `yaml:"chart"`
}

type YAMLConfig struct {
	Port     string         `yaml:"port"`
	CacheDir string         `yaml:"cache_dir"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Provider ProviderConfig `yaml:"provider"`
	Logging  LoggingConfig  `yaml:"logging"`
	Chart    ChartConfig    `yaml:"chart"`
}

func Load() *Config {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		CacheDir: getEnv("CACHE_DIR", ".downloads"),

		Analysis: AnalysisConfig{
			DefaultSymbol:     getEnv("DEFAULT_SYMBOL", "^GDAXI"),
			DefaultYears:      getEnvInt("DEFAULT_YEARS", 5),
			Robust:            getEnvBool("ROBUST_STL", false),
			AnnualRollingDays: getEnvInt("ANNUAL_ROLLING_DAYS", 30),
		},

		Provider: ProviderConfig{
			Name:           getEnv("PROVIDER", "yahoo"),
			RequestDelayMS: getEnvInt("PROVIDER_REQUEST_DELAY_MS", 2500),
			TimeoutSeconds: getEnvInt("PROVIDER_TIMEOUT_SECONDS", 30),
			MaxRetries:     getEnvInt("PROVIDER_MAX_RETRIES", 2),
		},

		Logging: LoggingConfig{
			LogLevel: getEnv("LOG_LEVEL", "info"),
			LogFile:  getEnv("LOG_FILE", "finsea.log"),
		},

		Chart: ChartConfig{
			PageWidthMM:     getEnvInt("CHART_PAGE_WIDTH_MM", 210),
			PageHeightMM:    getEnvInt("CHART_PAGE_HEIGHT_MM", 297),
			ConfidenceLevel: 0.95,
		},
	}

	// Overlay values from YAML file when present
	if yamlCfg := loadYAMLConfig(); yamlCfg != nil {
		if yamlCfg.Port != "" {
			cfg.Port = yamlCfg.Port
		}
		if yamlCfg.CacheDir != "" {
			cfg.CacheDir = yamlCfg.CacheDir
		}

		if yamlCfg.Analysis.DefaultSymbol != "" {
			cfg.Analysis.DefaultSymbol = yamlCfg.Analysis.DefaultSymbol
		}
		if yamlCfg.Analysis.DefaultYears > 0 {
			cfg.Analysis.DefaultYears = yamlCfg.Analysis.DefaultYears
		}
		if yamlCfg.Analysis.AnnualRollingDays > 0 {
			cfg.Analysis.AnnualRollingDays = yamlCfg.Analysis.AnnualRollingDays
		}
		if yamlCfg.Analysis.Robust {
			cfg.Analysis.Robust = true
		}

		if yamlCfg.Provider.Name != "" {
			cfg.Provider.Name = yamlCfg.Provider.Name
		}
		if yamlCfg.Provider.RequestDelayMS > 0 {
			cfg.Provider.RequestDelayMS = yamlCfg.Provider.RequestDelayMS
		}
		if yamlCfg.Provider.TimeoutSeconds > 0 {
			cfg.Provider.TimeoutSeconds = yamlCfg.Provider.TimeoutSeconds
		}
		if yamlCfg.Provider.MaxRetries > 0 {
			cfg.Provider.MaxRetries = yamlCfg.Provider.MaxRetries
		}

		if yamlCfg.Logging.LogLevel != "" {
			cfg.Logging.LogLevel = yamlCfg.Logging.LogLevel
		}
		if yamlCfg.Logging.LogFile != "" {
			cfg.Logging.LogFile = yamlCfg.Logging.LogFile
		}

		if yamlCfg.Chart.PageWidthMM > 0 {
			cfg.Chart.PageWidthMM = yamlCfg.Chart.PageWidthMM
		}
		if yamlCfg.Chart.PageHeightMM > 0 {
			cfg.Chart.PageHeightMM = yamlCfg.Chart.PageHeightMM
		}
		if yamlCfg.Chart.ConfidenceLevel > 0 && yamlCfg.Chart.ConfidenceLevel < 1 {
			cfg.Chart.ConfidenceLevel = yamlCfg.Chart.ConfidenceLevel
		}
	}

	return cfg
}

func loadYAMLConfig() *YAMLConfig {
	data, err := os.ReadFile("config.yaml")
	if err != nil {
		// Could not read config.yaml - silently return nil
		return nil
	}

	var yamlCfg YAMLConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		// Could not parse config.yaml - silently return nil
		return nil
	}

	return &yamlCfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// SanitizeSymbol converts a ticker symbol into a string safe for filenames
// (Yahoo symbols may carry ^, = and . characters).
func SanitizeSymbol(symbol string) string {
	replacer := strings.NewReplacer("^", "", "=", "_", "/", "_", "\\", "_")
	return replacer.Replace(symbol)
}
