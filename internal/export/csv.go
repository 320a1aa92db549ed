// Package export serialises trajectory rows.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// NaN is written for undefined values.
const NaN = "NaN"

// CSVWriter streams trajectory rows as CSV with a fixed header.
type CSVWriter struct {
	w      *csv.Writer
	header bool
	rows   int
}

// NewCSVWriter wraps w. The header is written before the first row.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// WriteHeader writes the column names if they have not been written yet.
func (c *CSVWriter) WriteHeader() error {
	if c.header {
		return nil
	}
	c.header = true
	return c.w.Write(trajectory.Columns())
}

// WriteRow writes one row: the frame index as an integer, every other
// field with five decimals, NaN for undefined.
func (c *CSVWriter) WriteRow(r trajectory.Row) error {
	if err := c.WriteHeader(); err != nil {
		return err
	}
	rec := r.Record()
	out := make([]string, len(rec))
	out[0] = strconv.Itoa(r.Frame)
	for i := 1; i < len(rec); i++ {
		out[i] = FormatFloat(rec[i])
	}
	c.rows++
	return c.w.Write(out)
}

// Rows returns the number of rows written.
func (c *CSVWriter) Rows() int { return c.rows }

// Flush flushes buffered output and reports any write error.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// FormatFloat renders v with five decimals, or NaN.
func FormatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NaN
	}
	return fmt.Sprintf("%.5f", v)
}

// WriteCSVFile writes all rows to path, creating parent directories.
func WriteCSVFile(path string, rows []trajectory.Row) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close csv: %w", cerr)
		}
	}()

	w := NewCSVWriter(f)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := w.WriteRow(r); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.Frame, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
