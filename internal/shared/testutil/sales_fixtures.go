package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Sale is one fixture row. Retail is kept as text so malformed quantities can be expressed.
type Sale struct {
	Brand  string
	Retail string
}

// SalesTable builds a two-column table with the given headers followed by rows
func SalesTable(brandHeader, retailHeader string, sales []Sale) [][]string {
	table := [][]string{{brandHeader, retailHeader}}
	for _, s := range sales {
		table = append(table, []string{s.Brand, s.Retail})
	}
	return table
}

// WriteCSV writes rows as a CSV file under dir and returns its path
func WriteCSV(t *testing.T, dir, name string, rows [][]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	return path
}

// WriteRaw writes content verbatim, for fixtures csv.Writer cannot produce
func WriteRaw(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// WriteXLSX writes rows into the first sheet of a new workbook under dir
func WriteXLSX(t *testing.T, dir, name string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// TwoYearFolder writes the canonical 2020/2021 Toyota/Honda fixture into dir
func TwoYearFolder(t *testing.T, dir string) {
	t.Helper()

	WriteCSV(t, dir, "2020_data.csv", SalesTable("Brand", "Retail", []Sale{
		{Brand: "Toyota", Retail: "100"},
		{Brand: "Honda", Retail: "50"},
	}))
	WriteCSV(t, dir, "2021_data.csv", SalesTable("Brand", "Retail", []Sale{
		{Brand: "Toyota", Retail: "150"},
		{Brand: "Honda", Retail: "50"},
	}))
}

// WriteNumericXLSX writes a Brand/Retail sheet whose retail cells are numbers
// rendered with the built-in number format numFmt (3 is "#,##0").
func WriteNumericXLSX(t *testing.T, dir, name string, brands []string, retail []float64, numFmt int) string {
	t.Helper()
	require.Len(t, retail, len(brands))

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Brand"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Retail"))

	style, err := f.NewStyle(&excelize.Style{NumFmt: numFmt})
	require.NoError(t, err)

	for i, brand := range brands {
		row := i + 2
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("A%d", row), brand))
		require.NoError(t, f.SetCellFloat(sheet, fmt.Sprintf("B%d", row), retail[i], -1, 64))
	}
	require.NoError(t, f.SetCellStyle(sheet, "B2", fmt.Sprintf("B%d", len(brands)+1), style))

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}
