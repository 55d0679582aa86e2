package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"dropwatch/models"
)

// WriteCSV renders the full observation log as a flat CSV, one row per
// observation, oldest first. The file at path is replaced atomically enough
// for a single-writer process: written to a temp file, then renamed.
func WriteCSV(path string, observations []models.PriceObservation) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}

	if err := writeRows(f, observations); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close csv: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace csv: %w", err)
	}
	return nil
}

// Write streams the CSV to any writer, used by the download endpoint.
func Write(w io.Writer, observations []models.PriceObservation) error {
	return writeRows(w, observations)
}

func writeRows(w io.Writer, observations []models.PriceObservation) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"url", "site", "product_name", "price", "checked_at"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, o := range observations {
		row := []string{
			o.ProductKey,
			string(o.Site),
			o.Name,
			strconv.Itoa(o.Price),
			o.CheckedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
