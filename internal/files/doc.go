// Package files locates yearly sales sources and writes generated artifacts.
//
// Discovery finds the input files of a data folder. Files following the
// "<year>_data.<ext>" convention are preferred; when a folder has none, every
// CSV and XLSX file is used instead. Results are always ordered by file name so
// that merges are reproducible.
//
// Manager writes exports below the configured reports directory, replacing
// files atomically.
//
//	discovery := files.NewDiscovery("")
//	sources, err := discovery.FindYearlyFiles("data", config.YearlyFilePattern)
package files
