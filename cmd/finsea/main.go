package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/jwaldner/finsea/internal/config"
	"github.com/jwaldner/finsea/internal/logger"
	"github.com/jwaldner/finsea/internal/providers"
	"github.com/jwaldner/finsea/internal/providers/yahoo"
	"github.com/jwaldner/finsea/internal/seasonality"
	"github.com/jwaldner/finsea/internal/views"
)

// cliFlags holds the parsed command line.
type cliFlags struct {
	symbol     string
	years      int
	view       string
	file       string
	robust     bool
	pageWidth  int
	pageHeight int

	disables map[string]*bool
}

// registerFlags wires the command line surface onto fs. The main options
// carry a one-letter alias next to the long name.
func registerFlags(fs *flag.FlagSet, cfg *config.Config) *cliFlags {
	f := &cliFlags{}

	fs.StringVar(&f.symbol, "symbol", cfg.Analysis.DefaultSymbol, "ticker symbol to analyze")
	fs.StringVar(&f.symbol, "s", cfg.Analysis.DefaultSymbol, "shorthand for -symbol")
	fs.IntVar(&f.years, "years", cfg.Analysis.DefaultYears, "maximum number of complete years to analyze backwards")
	fs.IntVar(&f.years, "y", cfg.Analysis.DefaultYears, "shorthand for -years")
	fs.StringVar(&f.view, "view", "console", "view to render the results (console or chart)")
	fs.StringVar(&f.view, "v", "console", "shorthand for -view")
	fs.StringVar(&f.file, "file", "", "output file for console view, file prefix for chart view")
	fs.StringVar(&f.file, "f", "", "shorthand for -file")

	fs.BoolVar(&f.robust, "robust", cfg.Analysis.Robust, "use robust STL decomposition")
	fs.IntVar(&f.pageWidth, "page-width", cfg.Chart.PageWidthMM, "chart page width in mm")
	fs.IntVar(&f.pageHeight, "page-height", cfg.Chart.PageHeightMM, "chart page height in mm")

	f.disables = map[string]*bool{
		views.PageOverallPrices:   fs.Bool("no-overall-prices", false, "disable overall daily prices page"),
		views.PageOverallTrend:    fs.Bool("no-overall-trend", false, "disable overall daily trend page"),
		views.PageOverallResidual: fs.Bool("no-overall-residual", false, "disable overall daily residual page"),
		views.PageAnnualPrices:    fs.Bool("no-annual-prices", false, "disable annual daily prices page"),
		views.PageAnnualSeasonal:  fs.Bool("no-annual-seasonal", false, "disable annual daily seasonal page"),
		views.PageAnnualResidual:  fs.Bool("no-annual-residual", false, "disable annual daily residual page"),
		views.PageMonthly:         fs.Bool("no-monthly", false, "disable monthly seasonal page"),
		views.PageQuarterly:       fs.Bool("no-quarterly", false, "disable quarterly seasonal page"),
		views.PageWeekly:          fs.Bool("no-weekly", false, "disable weekly seasonal page"),
		views.PageWeekday:         fs.Bool("no-weekday", false, "disable weekdaily seasonal page"),
	}
	return f
}

func (f *cliFlags) disabledPages() map[string]bool {
	disabled := make(map[string]bool, len(f.disables))
	for page, d := range f.disables {
		disabled[page] = *d
	}
	return disabled
}

func main() {
	// .env is optional; config.yaml values override environment defaults
	_ = godotenv.Load()
	cfg := config.Load()

	flags := registerFlags(flag.CommandLine, cfg)
	flag.Parse()

	if err := logger.InitWithConfig(cfg.Logging.LogLevel, cfg.Logging.LogFile); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logger.Always.Printf("finsea analyzing %s over %d years", flags.symbol, flags.years)

	if cfg.Provider.Name != "yahoo" {
		log.Fatalf("Unsupported provider: %s", cfg.Provider.Name)
	}
	base := yahoo.NewProvider(
		time.Duration(cfg.Provider.RequestDelayMS)*time.Millisecond,
		time.Duration(cfg.Provider.TimeoutSeconds)*time.Second,
		cfg.Provider.MaxRetries,
	)
	provider := providers.NewProviderManager(providers.NewCachedProvider(base, cfg.CacheDir))
	defer provider.Close()

	renderer, err := views.New(flags.view, &views.Options{
		OutputPath: flags.file,
		Chart: views.ChartOptions{
			PageWidthMM:     flags.pageWidth,
			PageHeightMM:    flags.pageHeight,
			ConfidenceLevel: cfg.Chart.ConfidenceLevel,
			Disabled:        flags.disabledPages(),
		},
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	model := seasonality.NewModel(provider, flags.symbol, flags.years, &seasonality.Options{
		Robust:            flags.robust,
		AnnualRollingDays: cfg.Analysis.AnnualRollingDays,
	})

	result, err := model.Calc(context.Background())
	if err != nil {
		logger.Error.Printf("analysis of %s failed: %v", flags.symbol, err)
		log.Fatalf("Analysis failed: %v", err)
	}

	if err := renderer.Render(result); err != nil {
		logger.Error.Printf("rendering failed: %v", err)
		log.Fatalf("Rendering failed: %v", err)
	}
}
