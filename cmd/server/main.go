package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/jwaldner/finsea/internal/config"
	"github.com/jwaldner/finsea/internal/handlers"
	"github.com/jwaldner/finsea/internal/logger"
	"github.com/jwaldner/finsea/internal/providers"
	"github.com/jwaldner/finsea/internal/providers/yahoo"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Initialize proper logging with config level and file path
	if err := logger.InitWithConfig(cfg.Logging.LogLevel, cfg.Logging.LogFile); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logger.Always.Printf("finsea seasonality server starting - Port: %s", cfg.Port)

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

	analysisHandler := handlers.NewAnalysisHandler(cfg, provider)

	// Setup router
	r := mux.NewRouter()
	r.HandleFunc("/api/analyze", analysisHandler.AnalyzeHandler).Methods("GET")
	r.HandleFunc("/api/chart", analysisHandler.ChartHandler).Methods("GET")
	r.HandleFunc("/api/health", analysisHandler.HealthHandler).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // the first analysis of a day downloads history
	}

	logger.Info.Printf("listening on :%s (provider: %s)", cfg.Port, provider.GetProviderName())
	log.Printf("finsea server listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
