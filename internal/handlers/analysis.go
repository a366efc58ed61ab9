// Package handlers implements the HTTP endpoints of the server mode.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jwaldner/finsea/internal/config"
	"github.com/jwaldner/finsea/internal/logger"
	"github.com/jwaldner/finsea/internal/providers"
	"github.com/jwaldner/finsea/internal/seasonality"
	"github.com/jwaldner/finsea/internal/views"
)

// AnalysisHandler serves seasonality analysis results and chart pages.
type AnalysisHandler struct {
	cfg      *config.Config
	provider providers.HistoryProvider
}

// NewAnalysisHandler creates the handler with its provider stack.
func NewAnalysisHandler(cfg *config.Config, provider providers.HistoryProvider) *AnalysisHandler {
	return &AnalysisHandler{cfg: cfg, provider: provider}
}

// ResponseMetadata describes one served analysis.
type ResponseMetadata struct {
	Symbol         string  `json:"symbol"`
	Years          int     `json:"years"`
	Provider       string  `json:"provider"`
	Timestamp      string  `json:"timestamp"`
	ProcessingTime float64 `json:"processing_time"` // seconds
}

// AnalysisData is the JSON payload of one analysis.
type AnalysisData struct {
	Name       string `json:"name"`
	Currency   string `json:"currency"`
	RangeStart string `json:"range_start"`
	RangeEnd   string `json:"range_end"`

	AnnualPrices      []seasonality.LabelStats `json:"annual_prices"`
	AnnualSeasonal    []seasonality.LabelStats `json:"annual_seasonal"`
	AnnualResidual    []seasonality.LabelStats `json:"annual_residual"`
	MonthlySeasonal   []seasonality.LabelStats `json:"monthly_seasonal"`
	QuarterlySeasonal []seasonality.LabelStats `json:"quarterly_seasonal"`
	WeeklySeasonal    []seasonality.LabelStats `json:"weekly_seasonal"`
	WeekdaySeasonal   []seasonality.LabelStats `json:"weekday_seasonal"`
}

// AnalysisResponse is the JSON envelope of the analyze endpoint.
type AnalysisResponse struct {
	Success bool             `json:"success"`
	Error   string           `json:"error,omitempty"`
	Data    *AnalysisData    `json:"data,omitempty"`
	Meta    ResponseMetadata `json:"meta"`
}

// AnalyzeHandler runs the analysis for ?symbol=&years= and returns JSON.
func (h *AnalysisHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	symbol, years, err := h.requestParams(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	logger.Info.Printf("analyze request: symbol=%s years=%d", symbol, years)

	res, err := h.calc(r, symbol, years)
	if err != nil {
		logger.Error.Printf("analysis of %s failed: %v", symbol, err)
		h.writeError(w, http.StatusBadGateway, err)
		return
	}

	confidence := h.cfg.Chart.ConfidenceLevel
	response := AnalysisResponse{
		Success: true,
		Data: &AnalysisData{
			Name:       res.Info.Name,
			Currency:   res.Info.Currency,
			RangeStart: res.RangeStart.Format("2006-01-02"),
			RangeEnd:   res.RangeEnd.Format("2006-01-02"),

			AnnualPrices:      res.AnnualPrices.Aggregate(confidence),
			AnnualSeasonal:    res.AnnualSeasonal.Aggregate(confidence),
			AnnualResidual:    res.AnnualResidual.Aggregate(confidence),
			MonthlySeasonal:   res.MonthlySeasonal.Aggregate(confidence),
			QuarterlySeasonal: res.QuarterlySeasonal.Aggregate(confidence),
			WeeklySeasonal:    res.WeeklySeasonal.Aggregate(confidence),
			WeekdaySeasonal:   res.WeekdaySeasonal.Aggregate(confidence),
		},
		Meta: h.meta(symbol, res.Years, started),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ChartHandler renders one chart page for ?symbol=&years=&page= as PNG.
func (h *AnalysisHandler) ChartHandler(w http.ResponseWriter, r *http.Request) {
	symbol, years, err := h.requestParams(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	page := r.URL.Query().Get("page")
	if page == "" {
		page = views.PageAnnualSeasonal
	}
	if !validPage(page) {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown chart page: %q", page))
		return
	}

	res, err := h.calc(r, symbol, years)
	if err != nil {
		logger.Error.Printf("analysis of %s failed: %v", symbol, err)
		h.writeError(w, http.StatusBadGateway, err)
		return
	}

	view := views.NewChartView("", &views.ChartOptions{
		PageWidthMM:     h.cfg.Chart.PageWidthMM,
		PageHeightMM:    h.cfg.Chart.PageHeightMM,
		ConfidenceLevel: h.cfg.Chart.ConfidenceLevel,
	})

	w.Header().Set("Content-Type", "image/png")
	if err := view.RenderPage(res, page, w); err != nil {
		logger.Error.Printf("chart page %s for %s failed: %v", page, symbol, err)
	}
}

// HealthHandler reports liveness.
func (h *AnalysisHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"provider":  h.provider.GetProviderName(),
		"timestamp": time.Now().Unix(),
	})
}

func validPage(page string) bool {
	for _, p := range views.Pages {
		if p == page {
			return true
		}
	}
	return false
}

func (h *AnalysisHandler) calc(r *http.Request, symbol string, years int) (*seasonality.Result, error) {
	model := seasonality.NewModel(h.provider, symbol, years, &seasonality.Options{
		Robust:            h.cfg.Analysis.Robust,
		AnnualRollingDays: h.cfg.Analysis.AnnualRollingDays,
	})
	return model.Calc(r.Context())
}

func (h *AnalysisHandler) requestParams(r *http.Request) (string, int, error) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		symbol = h.cfg.Analysis.DefaultSymbol
	}
	if symbol == "" {
		return "", 0, fmt.Errorf("missing symbol parameter")
	}

	years := h.cfg.Analysis.DefaultYears
	if raw := r.URL.Query().Get("years"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return "", 0, fmt.Errorf("invalid years parameter: %q", raw)
		}
		years = parsed
	}
	return symbol, years, nil
}

func (h *AnalysisHandler) meta(symbol string, years int, started time.Time) ResponseMetadata {
	return ResponseMetadata{
		Symbol:         symbol,
		Years:          years,
		Provider:       h.provider.GetProviderName(),
		Timestamp:      time.Now().Format(time.RFC3339),
		ProcessingTime: time.Since(started).Seconds(),
	}
}

func (h *AnalysisHandler) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(AnalysisResponse{
		Success: false,
		Error:   err.Error(),
		Meta: ResponseMetadata{
			Timestamp: time.Now().Format(time.RFC3339),
		},
	})
}
