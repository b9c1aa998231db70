// Package http implements the HTTP handlers of the retail dashboard.
// Handlers stay thin: they decode the filter, call the dashboard service and
// turn service errors into RFC 7807 problem responses.
//
// # Routes
//
//	GET  /api/health, /api/health/live, /api/health/ready, /api/version
//	GET  /api/dataset            unified records with provenance
//	GET  /api/dataset/files      files that contributed records
//	POST /api/dataset/reload     re-merge the data directory
//	POST /api/view               filtered view rows
//	POST /api/summary            KPI summary
//	POST /api/charts             ranking, treemap, line series and heatmap
//	POST /api/export/csv         Year,Brand,Retail attachment
//	POST /api/export/report      static HTML report (?format=pdf when Chrome is available)
//
// Every POST takes an optional FilterRequest body; an empty body selects the defaults.
//
// # Error Handling
//
// Service errors map onto problem responses:
//
//	ErrInvalidFilter       400 VALIDATION_FAILED with per-field messages
//	ErrKPIYearNotSelected  400 VALIDATION_FAILED on kpi_year
//	ErrEmptyDataset        409 EMPTY_DATASET
//	ErrReloadInProgress    409 RELOAD_IN_PROGRESS
//	ErrEmptySelection      422 EMPTY_SELECTION
//	ErrExportFailed        500 EXPORT_FAILED listing the failed charts
package http
