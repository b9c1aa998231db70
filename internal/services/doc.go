// Package services implements the business logic layer of the retail dashboard.
// It sits between the HTTP handlers (and the batch CLI) and the sales pipeline,
// keeping filter rules and error semantics in one testable place.
//
// # Available Services
//
//   - DashboardService: owns the unified dataset snapshot, reloads it from the data
//     directory and answers view, summary, chart and export queries
//   - HealthService: liveness, readiness and version information
//
// # Dataset Lifecycle
//
// The dataset is rebuilt wholesale by Reload and swapped in under a write lock;
// queries take the current snapshot under a read lock and never observe a partial merge.
// Only one reload runs at a time, a second caller gets ErrReloadInProgress.
//
//	svc := services.NewDashboardService(dataDir, merger, settings, logger, services.WithHub(hub))
//	if _, err := svc.Reload(ctx); errors.Is(err, services.ErrEmptyDataset) {
//	    // prompt for a different data directory
//	}
//	view, err := svc.View(ctx, domain.FilterRequest{Years: []int{2021}})
//
// # Error Handling
//
// Services return sentinel errors that handlers map to problem responses:
//
//   - ErrEmptyDataset: no file produced records
//   - ErrEmptySelection: the filter selected no rows
//   - ErrInvalidFilter: the request failed validation (wraps validator errors)
//   - ErrKPIYearNotSelected: the KPI year is outside the selected years
//   - ErrExportFailed: one or more charts or the serialization failed
//   - ErrReloadInProgress: a reload is already running
package services
