package views

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderPageProducesPNG(t *testing.T) {
	res := fixtureResult(t)
	v := NewChartView("", nil)

	for _, page := range Pages {
		var buf bytes.Buffer
		if err := v.RenderPage(res, page, &buf); err != nil {
			t.Errorf("page %s: %v", page, err)
			continue
		}
		if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
			t.Errorf("page %s: output is not a PNG (%d bytes)", page, buf.Len())
		}
	}
}

func TestRenderPageUnknown(t *testing.T) {
	res := fixtureResult(t)
	v := NewChartView("", nil)
	if err := v.RenderPage(res, "volume", &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestRenderWritesEnabledPages(t *testing.T) {
	res := fixtureResult(t)
	dir := t.TempDir()

	disabled := make(map[string]bool)
	for _, page := range Pages {
		if page != PageAnnualSeasonal && page != PageMonthly {
			disabled[page] = true
		}
	}
	v := NewChartView(filepath.Join(dir, "FAKE"), &ChartOptions{Disabled: disabled})

	if err := v.Render(res); err != nil {
		t.Fatalf("Render: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected 2 chart files, got %v", names)
	}
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(data, pngMagic) {
			t.Errorf("%s is not a PNG file", e.Name())
		}
	}
}

func TestChartOptionsDefaults(t *testing.T) {
	opts := (&ChartOptions{}).withDefaults()
	if opts.PageWidthMM != 210 || opts.PageHeightMM != 297 {
		t.Errorf("page size defaults = %dx%d, want 210x297", opts.PageWidthMM, opts.PageHeightMM)
	}
	if opts.ConfidenceLevel != 0.95 {
		t.Errorf("confidence default = %v, want 0.95", opts.ConfidenceLevel)
	}

	opts = (&ChartOptions{ConfidenceLevel: 1.5}).withDefaults()
	if opts.ConfidenceLevel != 0.95 {
		t.Errorf("out of range confidence should fall back, got %v", opts.ConfidenceLevel)
	}
}
