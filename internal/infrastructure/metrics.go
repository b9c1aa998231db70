package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// BusinessMetrics holds the HTTP request metrics
type BusinessMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter
}

// CreateBusinessMetrics registers the HTTP metrics on meter
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		HTTPActiveRequests:  httpActiveRequests,
	}, nil
}

// PipelineMetrics instruments the load, view and export stages of the sales pipeline
type PipelineMetrics struct {
	FilesLoaded    metric.Int64Counter
	FilesSkipped   metric.Int64Counter
	RecordsDropped metric.Int64Counter
	CacheHits      metric.Int64Counter
	CacheMisses    metric.Int64Counter
	MergeDuration  metric.Float64Histogram
	ViewsBuilt     metric.Int64Counter
	ExportsTotal   metric.Int64Counter
	ExportFailures metric.Int64Counter
}

// CreatePipelineMetrics registers the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	if m.FilesLoaded, err = meter.Int64Counter(
		"sales_files_loaded_total",
		metric.WithDescription("Source files that contributed records to the dataset"),
	); err != nil {
		return nil, err
	}
	if m.FilesSkipped, err = meter.Int64Counter(
		"sales_files_skipped_total",
		metric.WithDescription("Source files skipped during a merge, by reason"),
	); err != nil {
		return nil, err
	}
	if m.RecordsDropped, err = meter.Int64Counter(
		"sales_records_dropped_total",
		metric.WithDescription("Rows dropped for a missing brand or invalid quantity"),
	); err != nil {
		return nil, err
	}
	if m.CacheHits, err = meter.Int64Counter(
		"sales_table_cache_hits_total",
		metric.WithDescription("Parsed table cache hits"),
	); err != nil {
		return nil, err
	}
	if m.CacheMisses, err = meter.Int64Counter(
		"sales_table_cache_misses_total",
		metric.WithDescription("Parsed table cache misses"),
	); err != nil {
		return nil, err
	}
	if m.MergeDuration, err = meter.Float64Histogram(
		"sales_merge_duration_seconds",
		metric.WithDescription("Time spent merging a data folder"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.ViewsBuilt, err = meter.Int64Counter(
		"sales_views_built_total",
		metric.WithDescription("Filtered views built"),
	); err != nil {
		return nil, err
	}
	if m.ExportsTotal, err = meter.Int64Counter(
		"sales_exports_total",
		metric.WithDescription("Export requests by kind"),
	); err != nil {
		return nil, err
	}
	if m.ExportFailures, err = meter.Int64Counter(
		"sales_export_failures_total",
		metric.WithDescription("Failed exports by kind"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// NoopPipelineMetrics returns instruments that discard every measurement
func NoopPipelineMetrics() *PipelineMetrics {
	m, _ := CreatePipelineMetrics(noop.NewMeterProvider().Meter(MeterName))
	return m
}

// RecordFileSkipped counts a skipped source file
func (m *PipelineMetrics) RecordFileSkipped(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.FilesSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordMerge records the outcome of a folder merge
func (m *PipelineMetrics) RecordMerge(ctx context.Context, filesUsed, dropped int, duration time.Duration) {
	if m == nil {
		return
	}
	m.FilesLoaded.Add(ctx, int64(filesUsed))
	m.RecordsDropped.Add(ctx, int64(dropped))
	m.MergeDuration.Record(ctx, duration.Seconds())
}

// RecordCache counts a cache lookup
func (m *PipelineMetrics) RecordCache(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Add(ctx, 1)
		return
	}
	m.CacheMisses.Add(ctx, 1)
}

// RecordView counts a built view
func (m *PipelineMetrics) RecordView(ctx context.Context, mode string, rows int) {
	if m == nil {
		return
	}
	m.ViewsBuilt.Add(ctx, 1, metric.WithAttributes(
		attribute.String("brand_mode", mode),
		attribute.Bool("empty", rows == 0),
	))
}

// RecordExport counts an export attempt and its failure
func (m *PipelineMetrics) RecordExport(ctx context.Context, kind string, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	m.ExportsTotal.Add(ctx, 1, attrs)
	if err != nil {
		m.ExportFailures.Add(ctx, 1, attrs)
	}
}
