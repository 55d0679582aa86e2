package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"dropwatch/models"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ChartFilename maps a product key to a stable PNG filename inside the
// graphs directory.
func ChartFilename(productKey string) string {
	slug := unsafeFilenameChars.ReplaceAllString(productKey, "_")
	slug = strings.Trim(slug, "_")
	if len(slug) > 120 {
		slug = slug[len(slug)-120:]
	}
	if slug == "" {
		slug = "product"
	}
	return slug + ".png"
}

// WriteCharts renders one price-over-time PNG per product into dir. Products
// with fewer than two observations are skipped, since a single point draws
// nothing useful. Returns the number of charts written.
func WriteCharts(dir string, observations []models.PriceObservation) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create graphs dir: %w", err)
	}

	byProduct := map[string][]models.PriceObservation{}
	for _, o := range observations {
		byProduct[o.ProductKey] = append(byProduct[o.ProductKey], o)
	}

	written := 0
	for key, series := range byProduct {
		if len(series) < 2 {
			continue
		}
		path := filepath.Join(dir, ChartFilename(key))
		if err := writeChart(path, series); err != nil {
			return written, fmt.Errorf("chart for %s: %w", key, err)
		}
		written++
	}
	return written, nil
}

func writeChart(path string, series []models.PriceObservation) error {
	xs := make([]time.Time, len(series))
	ys := make([]float64, len(series))
	for i, o := range series {
		xs[i] = o.CheckedAt
		ys[i] = float64(o.Price)
	}

	title := series[0].Name
	if title == "" {
		title = series[0].ProductKey
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 420,
		XAxis: chart.XAxis{
			Name:           "checked at",
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{Name: "price"},
		Series: []chart.Series{
			chart.TimeSeries{XValues: xs, YValues: ys},
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
