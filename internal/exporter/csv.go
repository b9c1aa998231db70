package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Kalmbyy/retail-dashboard/internal/files"
	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

// FilteredViewHeader is the header row of the filtered view download
var FilteredViewHeader = []string{"Year", "Brand", "Retail"}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	files *files.Manager
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(manager *files.Manager) *CSVWriter {
	return &CSVWriter{files: manager}
}

// ExportFilteredView writes the filtered view as Year,Brand,Retail and returns
// the resolved path. Relative paths land in the reports directory.
func (w *CSVWriter) ExportFilteredView(filePath string, view []domain.ViewRow) (string, error) {
	return w.files.WriteWith(filePath, func(out io.Writer) error {
		return WriteFilteredView(out, view)
	})
}

// WriteFilteredView streams the filtered view to out
func WriteFilteredView(out io.Writer, view []domain.ViewRow) error {
	sw, err := NewStreamWriter(out, FilteredViewHeader)
	if err != nil {
		return err
	}
	for i, row := range view {
		if err := sw.WriteRow(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return sw.Flush()
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter creates a streaming CSV writer and writes headers when given
func NewStreamWriter(out io.Writer, headers []string) (*StreamWriter, error) {
	writer := csv.NewWriter(out)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// WriteRow writes one filtered view row
func (s *StreamWriter) WriteRow(row domain.ViewRow) error {
	return s.WriteRecord([]string{formatYear(row.Year), row.Brand, formatQuantity(row.Retail)})
}

// Flush writes buffered data and reports any write error
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}
