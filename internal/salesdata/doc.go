// Package salesdata turns a folder of yearly brand sales files into one
// long-format dataset of (Year, Brand, Quantity) records.
//
// The pipeline for a single file is:
//
//	RawTable  ->  CleanColumns  ->  ResolveYear  ->  ResolveColumns  ->  Normalize
//
// Column and year detection are heuristics over messy headers: header names are
// whitespace-collapsed, the brand column is the first whose name contains
// "brand" (else the first column) and the quantity column the first containing
// "retail" (else the second column). The year comes from the first "20xx" token
// of the file name, falling back to the column headers.
//
// Merger applies the pipeline to every file Discovery finds and concatenates
// the results. Files that cannot contribute are skipped and logged, never
// fatal; a folder with no usable file yields an empty Dataset.
//
// CachedLoader memoizes parsed tables by path, revalidating on size and
// modification time, so repeated merges only re-read files that changed.
package salesdata
