// Package export writes datasets as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/ahmethakanbesel/yahoojp-history/internal/history"
)

const dateFormat = "2006-01-02"

// WriteCSV writes ds to w with a header row. Missing values are empty cells.
func WriteCSV(w io.Writer, ds *history.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, 0, 7)
	for _, r := range ds.Records {
		row = append(row[:0],
			r.Date.Format(dateFormat),
			formatNumber(r.Open),
			formatNumber(r.High),
			formatNumber(r.Low),
			formatNumber(r.Close),
			formatNumber(r.Volume),
		)
		if !ds.Adjusted {
			row = append(row, formatNumber(r.AdjClose))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %s: %w", r.Date.Format(dateFormat), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes ds as CSV to path, creating parent directories. The file
// is written next to path and renamed into place so readers never see a
// partial file.
func WriteFile(path string, ds *history.Dataset) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := WriteCSV(tmp, ds); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

func formatNumber(v float64) string {
	if history.IsMissing(v) {
		return ""
	}
	return decimal.NewFromFloat(v).String()
}
