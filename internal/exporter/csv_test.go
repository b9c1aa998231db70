package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalmbyy/retail-dashboard/internal/config"
	"github.com/Kalmbyy/retail-dashboard/internal/files"
	"github.com/Kalmbyy/retail-dashboard/internal/shared/testutil"
	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

func sampleView() []domain.ViewRow {
	return []domain.ViewRow{
		{Year: 2020, Brand: "Toyota", Retail: 1000, Share: domain.Float(66.67)},
		{Year: 2020, Brand: "Honda", Retail: 500, Share: domain.Float(33.33)},
		{Year: 2021, Brand: "Mercedes, Benz", Retail: 12.5},
	}
}

func setupTestWriter(t *testing.T) (*CSVWriter, *config.Paths) {
	t.Helper()
	base := t.TempDir()
	paths := &config.Paths{
		BaseDir:    base,
		DataDir:    filepath.Join(base, "data"),
		ReportsDir: filepath.Join(base, "reports"),
		LogsDir:    filepath.Join(base, "logs"),
	}
	logger, _ := testutil.NewTestLogger(t)
	return NewCSVWriter(files.NewManager(paths, logger)), paths
}

func TestWriteFilteredView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFilteredView(&buf, sampleView()))

	assert.Equal(t,
		"Year,Brand,Retail\n"+
			"2020,Toyota,1000\n"+
			"2020,Honda,500\n"+
			"2021,\"Mercedes, Benz\",12.5\n",
		buf.String())
}

func TestWriteFilteredViewEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFilteredView(&buf, nil))
	assert.Equal(t, "Year,Brand,Retail\n", buf.String())
}

func TestWriteFilteredViewRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFilteredView(&buf, sampleView()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, FilteredViewHeader, records[0])
	assert.Equal(t, []string{"2021", "Mercedes, Benz", "12.5"}, records[3])
}

func TestStreamWriterWithoutHeader(t *testing.T) {
	var buf bytes.Buffer
	sw, err := NewStreamWriter(&buf, nil)
	require.NoError(t, err)

	for _, row := range sampleView()[:2] {
		require.NoError(t, sw.WriteRow(row))
	}
	require.NoError(t, sw.Flush())
	assert.Equal(t, "2020,Toyota,1000\n2020,Honda,500\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestStreamWriterReportsWriteErrors(t *testing.T) {
	err := WriteFilteredView(failingWriter{}, sampleView())
	assert.ErrorContains(t, err, "disk full")
}

func TestCSVWriterExportFilteredView(t *testing.T) {
	w, paths := setupTestWriter(t)

	path, err := w.ExportFilteredView(config.FilteredCSVName, sampleView())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.ReportsDir, config.FilteredCSVName), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("Year,Brand,Retail\n")))
}

func TestCSVWriterExportFilteredViewAbsolutePath(t *testing.T) {
	w, _ := setupTestWriter(t)
	target := filepath.Join(t.TempDir(), "nested", "out.csv")

	path, err := w.ExportFilteredView(target, sampleView()[:1])
	require.NoError(t, err)
	assert.Equal(t, target, path)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "Year,Brand,Retail\n2020,Toyota,1000\n", string(content))
}
