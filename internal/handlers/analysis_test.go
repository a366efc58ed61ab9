package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwaldner/finsea/internal/config"
	"github.com/jwaldner/finsea/internal/providers/providertest"
)

func testConfig() *config.Config {
	return &config.Config{
		Analysis: config.AnalysisConfig{
			DefaultSymbol:     "FAKE",
			DefaultYears:      4,
			AnnualRollingDays: 30,
		},
		Chart: config.ChartConfig{
			PageWidthMM:     210,
			PageHeightMM:    297,
			ConfidenceLevel: 0.95,
		},
	}
}

func TestAnalyzeHandler(t *testing.T) {
	fake := &providertest.FakeProvider{YearsOfHistory: 7}
	h := NewAnalysisHandler(testConfig(), fake)

	req := httptest.NewRequest(http.MethodGet, "/api/analyze?symbol=FAKE&years=3", nil)
	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp AnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("Success = false, error = %s", resp.Error)
	}
	if resp.Data == nil {
		t.Fatal("no data in response")
	}
	if resp.Data.Name != "Fake FAKE" {
		t.Errorf("Name = %q", resp.Data.Name)
	}
	if len(resp.Data.MonthlySeasonal) != 12 {
		t.Errorf("MonthlySeasonal has %d entries, want 12", len(resp.Data.MonthlySeasonal))
	}
	if len(resp.Data.QuarterlySeasonal) != 4 {
		t.Errorf("QuarterlySeasonal has %d entries, want 4", len(resp.Data.QuarterlySeasonal))
	}
	if resp.Meta.Symbol != "FAKE" || resp.Meta.Years != 3 {
		t.Errorf("meta = %+v", resp.Meta)
	}
	if resp.Meta.Provider != "fake" {
		t.Errorf("Provider = %q", resp.Meta.Provider)
	}
}

func TestAnalyzeHandlerDefaults(t *testing.T) {
	fake := &providertest.FakeProvider{YearsOfHistory: 7}
	h := NewAnalysisHandler(testConfig(), fake)

	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp AnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Meta.Symbol != "FAKE" || resp.Meta.Years != 4 {
		t.Errorf("defaults not applied: meta = %+v", resp.Meta)
	}
}

func TestAnalyzeHandlerBadYears(t *testing.T) {
	fake := &providertest.FakeProvider{YearsOfHistory: 7}
	h := NewAnalysisHandler(testConfig(), fake)

	for _, years := range []string{"zero", "0", "-3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/analyze?years="+years, nil)
		rec := httptest.NewRecorder()
		h.AnalyzeHandler(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("years=%s: status = %d, want 400", years, rec.Code)
		}
		var resp AnalysisResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Success || resp.Error == "" {
			t.Errorf("years=%s: expected error envelope, got %+v", years, resp)
		}
	}
	if fake.HistoryCalls != 0 {
		t.Errorf("bad parameters should not reach the provider, HistoryCalls = %d", fake.HistoryCalls)
	}
}

func TestAnalyzeHandlerMissingSymbol(t *testing.T) {
	cfg := testConfig()
	cfg.Analysis.DefaultSymbol = ""
	h := NewAnalysisHandler(cfg, &providertest.FakeProvider{YearsOfHistory: 7})

	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeHandlerProviderFailure(t *testing.T) {
	fake := &providertest.FakeProvider{
		YearsOfHistory: 7,
		FailHistory:    errors.New("feed down"),
	}
	h := NewAnalysisHandler(testConfig(), fake)

	req := httptest.NewRequest(http.MethodGet, "/api/analyze?symbol=FAKE", nil)
	rec := httptest.NewRecorder()
	h.AnalyzeHandler(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestChartHandler(t *testing.T) {
	fake := &providertest.FakeProvider{YearsOfHistory: 7}
	h := NewAnalysisHandler(testConfig(), fake)

	req := httptest.NewRequest(http.MethodGet, "/api/chart?symbol=FAKE&years=3&page=monthly", nil)
	rec := httptest.NewRecorder()
	h.ChartHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("chart response is not a PNG")
	}
}

func TestChartHandlerUnknownPage(t *testing.T) {
	fake := &providertest.FakeProvider{YearsOfHistory: 7}
	h := NewAnalysisHandler(testConfig(), fake)

	req := httptest.NewRequest(http.MethodGet, "/api/chart?symbol=FAKE&page=volume", nil)
	rec := httptest.NewRecorder()
	h.ChartHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want a JSON error envelope", ct)
	}
	var resp AnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("expected error envelope, got %+v", resp)
	}
	if fake.HistoryCalls != 0 {
		t.Errorf("unknown page should not trigger an analysis, HistoryCalls = %d", fake.HistoryCalls)
	}
}

func TestHealthHandler(t *testing.T) {
	fake := &providertest.FakeProvider{YearsOfHistory: 7}
	h := NewAnalysisHandler(testConfig(), fake)

	rec := httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["provider"] != "fake" {
		t.Errorf("unexpected health body: %v", body)
	}
}
