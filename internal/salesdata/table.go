package salesdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawTable is the untyped content of one source file.
// Every row has exactly len(Columns) cells.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// newRawTable uses the first record as header and pads or truncates the rest to its width
func newRawTable(records [][]string) (*RawTable, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	header := records[0]
	table := &RawTable{
		Columns: append([]string(nil), header...),
		Rows:    make([][]string, 0, len(records)-1),
	}

	for _, record := range records[1:] {
		row := make([]string, len(header))
		copy(row, record)
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// ReadCSV parses a header-first CSV stream. Ragged rows are accepted.
func ReadCSV(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return newRawTable(records)
}

// ReadXLSX parses the first sheet of a workbook, using its first row as header
func ReadXLSX(r io.Reader) (*RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyTable
	}

	// Raw values keep number formats such as #,##0 from altering quantities
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return newRawTable(rows)
}

// LoadTable reads path with the reader matching its extension
func LoadTable(path string) (*RawTable, error) {
	var read func(io.Reader) (*RawTable, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		read = ReadCSV
	case ".xlsx":
		read = ReadXLSX
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	table, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return table, nil
}
