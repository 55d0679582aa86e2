package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dropwatch/models"
)

func sampleObservations() []models.PriceObservation {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return []models.PriceObservation{
		{ProductKey: "https://www.amazon.in/dp/B0CHX1W1XY", Site: models.SiteAmazon, Name: "iPhone 15", Price: 52999, CheckedAt: base},
		{ProductKey: "https://www.amazon.in/dp/B0CHX1W1XY", Site: models.SiteAmazon, Name: "iPhone 15", Price: 47999, CheckedAt: base.Add(24 * time.Hour)},
		{ProductKey: "GRNDF8ZGDAGBVFZU", Site: models.SiteFlipkart, Name: "Pixel 8a", Price: 39999, CheckedAt: base},
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prices.csv")
	if err := WriteCSV(path, sampleObservations()); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	if len(rows) != 4 {
		t.Fatalf("row count = %d, want header + 3", len(rows))
	}
	wantHeader := []string{"url", "site", "product_name", "price", "checked_at"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Fatalf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][3] != "52999" || rows[2][3] != "47999" {
		t.Fatalf("price columns wrong: %v %v", rows[1], rows[2])
	}
	if rows[1][4] != "2026-08-01T10:00:00Z" {
		t.Fatalf("timestamp = %q, want RFC3339 UTC", rows[1][4])
	}
}

func TestWriteCSVReplacesExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prices.csv")
	if err := os.WriteFile(path, []byte("stale contents"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteCSV(path, sampleObservations()); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "stale") {
		t.Fatal("old file contents survived the rewrite")
	}
}

func TestWriteChartsSkipsSinglePointSeries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	written, err := WriteCharts(dir, sampleObservations())
	if err != nil {
		t.Fatalf("WriteCharts returned error: %v", err)
	}
	if written != 1 {
		t.Fatalf("charts written = %d, want 1 (single-point series skipped)", written)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".png") {
		t.Fatalf("unexpected dir contents: %v", entries)
	}
}

func TestChartFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://www.amazon.in/dp/B0CHX1W1XY", "https_www.amazon.in_dp_B0CHX1W1XY.png"},
		{"GRNDF8ZGDAGBVFZU", "GRNDF8ZGDAGBVFZU.png"},
		{"///", "product.png"},
	}

	for _, tt := range tests {
		if got := ChartFilename(tt.in); got != tt.want {
			t.Errorf("ChartFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
