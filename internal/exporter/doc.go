// Package exporter serializes the filtered sales view for download.
//
// This package contains three main components:
//
// CSVWriter: writes the FilteredView as Year,Brand,Retail (UTF-8, no index column),
// either streamed to an io.Writer or atomically to a file through files.Manager.
//
// ReportBuilder: builds the ranking, treemap, trend and heatmap figures concurrently.
// A chart that fails or panics is reported in a single *ExportError while the other
// charts are still returned. Report.WriteHTML renders a self-contained page.
//
// PDFRenderer: prints a rendered report to PDF through headless Chrome.
//
// Example usage:
//
//	builder := exporter.NewReportBuilder(logger)
//	report, err := builder.Build(ctx, exporter.ReportInput{Summary: summary, Charts: charts})
//	var exportErr *exporter.ExportError
//	if errors.As(err, &exportErr) {
//		logger.Warn("some charts failed", slog.Any("charts", exportErr.Charts()))
//	}
//	err = report.WriteHTML(w)
package exporter
