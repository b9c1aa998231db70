package salesdata

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalmbyy/retail-dashboard/internal/infrastructure"
	"github.com/Kalmbyy/retail-dashboard/internal/shared/testutil"
	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

func TestMergeFolder(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCSV(t, dir, "2020_data.csv", testutil.SalesTable("Brand", "Retail", []testutil.Sale{
		{Brand: "Toyota", Retail: "1000"},
		{Brand: "Honda", Retail: "500"},
	}))
	testutil.WriteCSV(t, dir, "2021_data.csv", testutil.SalesTable(" Brand ", "Retail  Units", []testutil.Sale{
		{Brand: "Honda", Retail: "400"},
		{Brand: "Toyota", Retail: "1200"},
	}))
	testutil.WriteCSV(t, dir, "2019_data.csv", testutil.SalesTable("Brand", "Retail", []testutil.Sale{
		{Brand: "Toyota", Retail: "n/a"},
		{Brand: "Honda", Retail: ""},
	}))

	logger, logs := testutil.NewTestLogger(t)
	dataset, err := NewMerger(logger, WithMetrics(infrastructure.NoopPipelineMetrics())).MergeFolder(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"2020_data.csv", "2021_data.csv"}, dataset.UsedFiles)
	assert.Equal(t, []domain.YearlyRecord{
		{Year: 2020, Brand: "Toyota", Quantity: 1000},
		{Year: 2020, Brand: "Honda", Quantity: 500},
		{Year: 2021, Brand: "Toyota", Quantity: 1200},
		{Year: 2021, Brand: "Honda", Quantity: 400},
	}, dataset.Records)

	skipped := logs.FindRecords("Skipping source file")
	require.Len(t, skipped, 1)
	assert.Equal(t, "2019_data.csv", skipped[0].Attrs["file"])
	assert.Equal(t, SkipNoValidRecords, skipped[0].Attrs["reason"])
	testutil.AssertLogAttr(t, logs, "files_used", int64(2))
}

func TestMergeFolderSkipReasons(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCSV(t, dir, "sales.csv", testutil.SalesTable("Brand", "Retail", []testutil.Sale{{Brand: "Kia", Retail: "5"}}))
	testutil.WriteCSV(t, dir, "narrow.csv", [][]string{{"Brand 2020"}, {"Kia"}})
	testutil.WriteRaw(t, dir, "empty.csv", "")
	testutil.WriteXLSX(t, dir, "book.xlsx", testutil.SalesTable("Merek", "Retail 2022", []testutil.Sale{{Brand: "Wuling", Retail: "7"}}))

	logger, logs := testutil.NewTestLogger(t)
	dataset, err := NewMerger(logger).MergeFolder(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"book.xlsx"}, dataset.UsedFiles)
	assert.Equal(t, []domain.YearlyRecord{{Year: 2022, Brand: "Wuling", Quantity: 7}}, dataset.Records)

	reasons := map[string]string{}
	for _, r := range logs.FindRecords("Skipping source file") {
		reasons[r.Attrs["file"].(string)] = r.Attrs["reason"].(string)
	}
	assert.Equal(t, map[string]string{
		"empty.csv":  SkipUnreadable,
		"narrow.csv": SkipTooFewColumns,
		"sales.csv":  SkipNoYear,
	}, reasons)
}

func TestMergeFolderEmpty(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	dataset, err := NewMerger(logger).MergeFolder(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.True(t, dataset.Empty())
	assert.Empty(t, dataset.UsedFiles)
	assert.NotNil(t, dataset.Records)
}

func TestMergeFolderMissingDir(t *testing.T) {
	_, err := NewMerger(slog.Default()).MergeFolder(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestMergeFolderCancelled(t *testing.T) {
	dir := t.TempDir()
	testutil.TwoYearFolder(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMerger(slog.Default()).MergeFolder(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMergeFolderSameYearKeepsDuplicates(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCSV(t, dir, "2020_data.csv", testutil.SalesTable("Brand", "Retail", []testutil.Sale{{Brand: "Toyota", Retail: "10"}}))
	testutil.WriteCSV(t, dir, "2020_extra_data.csv", testutil.SalesTable("Brand", "Retail", []testutil.Sale{{Brand: "Toyota", Retail: "10"}}))

	dataset, err := NewMerger(slog.Default()).MergeFolder(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, dataset.Records, 2)
}

func TestMergeFolderUsesCache(t *testing.T) {
	dir := t.TempDir()
	testutil.TwoYearFolder(t, dir)

	loader := NewCachedLoader(nil)
	merger := NewMerger(slog.Default(), WithLoader(loader))

	first, err := merger.MergeFolder(context.Background(), dir)
	require.NoError(t, err)
	second, err := merger.MergeFolder(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, CacheStats{Hits: 2, Misses: 2, Entries: 2}, loader.Stats())
}

func TestSortRecords(t *testing.T) {
	records := []domain.YearlyRecord{
		{Year: 2021, Brand: "B", Quantity: 5},
		{Year: 2020, Brand: "C", Quantity: 5},
		{Year: 2021, Brand: "A", Quantity: 5},
		{Year: 2021, Brand: "D", Quantity: 9},
	}
	SortRecords(records)

	assert.Equal(t, []domain.YearlyRecord{
		{Year: 2020, Brand: "C", Quantity: 5},
		{Year: 2021, Brand: "D", Quantity: 9},
		{Year: 2021, Brand: "A", Quantity: 5},
		{Year: 2021, Brand: "B", Quantity: 5},
	}, records)
}
