// Package shared holds code used across packages that belongs to no single layer.
//
// The testutil subpackage provides a capturing slog handler and builders for
// yearly sales fixtures (CSV and XLSX) used by the pipeline and HTTP tests:
//
//	logger, logs := testutil.NewTestLogger(t)
//	dir := t.TempDir()
//	testutil.WriteCSV(t, dir, "2021_data.csv", testutil.SalesTable("Brand", "Retail", []testutil.Sale{
//	    {Brand: "Toyota", Retail: "150"},
//	}))
//
// Nothing here is imported by production code.
package shared
