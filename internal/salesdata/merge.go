package salesdata

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kalmbyy/retail-dashboard/internal/config"
	"github.com/Kalmbyy/retail-dashboard/internal/files"
	"github.com/Kalmbyy/retail-dashboard/internal/infrastructure"
	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

// Dataset is the unified long-format table and the files it came from
type Dataset struct {
	Records   []domain.YearlyRecord
	UsedFiles []string
}

// Empty reports whether the dataset holds no records
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Records) == 0
}

// SortRecords orders records by year ascending, quantity descending, then brand
func SortRecords(records []domain.YearlyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Brand < b.Brand
	})
}

// Merger builds a Dataset from a folder of yearly files
type Merger struct {
	discovery *files.Discovery
	loader    TableLoader
	pattern   string
	logger    *slog.Logger
	metrics   *infrastructure.PipelineMetrics
	tracer    trace.Tracer
}

// MergerOption configures a Merger
type MergerOption func(*Merger)

// WithLoader replaces the table loader
func WithLoader(loader TableLoader) MergerOption {
	return func(m *Merger) { m.loader = loader }
}

// WithPattern replaces the yearly file name pattern
func WithPattern(pattern string) MergerOption {
	return func(m *Merger) {
		if pattern != "" {
			m.pattern = pattern
		}
	}
}

// WithMetrics records merge outcomes on metrics
func WithMetrics(metrics *infrastructure.PipelineMetrics) MergerOption {
	return func(m *Merger) { m.metrics = metrics }
}

// WithTracer replaces the global tracer
func WithTracer(tracer trace.Tracer) MergerOption {
	return func(m *Merger) {
		if tracer != nil {
			m.tracer = tracer
		}
	}
}

// NewMerger creates a merger reading files directly
func NewMerger(logger *slog.Logger, opts ...MergerOption) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Merger{
		discovery: files.NewDiscovery(""),
		loader:    DirectLoader,
		pattern:   config.YearlyFilePattern,
		logger:    logger.With(slog.String("component", "merger")),
		tracer:    otel.Tracer(infrastructure.MeterName),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MergeFolder discovers, normalizes and concatenates every yearly file in dir.
// Files that cannot contribute records are skipped with a warning. An error is
// returned only when dir cannot be listed or ctx is done.
func (m *Merger) MergeFolder(ctx context.Context, dir string) (*Dataset, error) {
	ctx, span := m.tracer.Start(ctx, "salesdata.MergeFolder",
		trace.WithAttributes(attribute.String("folder", dir)))
	defer span.End()

	start := time.Now()

	sources, err := m.discovery.FindYearlyFiles(dir, m.pattern)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to discover source files: %w", err)
	}

	dataset := &Dataset{
		Records:   []domain.YearlyRecord{},
		UsedFiles: []string{},
	}
	dropped := 0

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := m.mergeFile(ctx, source)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			reason := SkipReason(err)
			m.logger.WarnContext(ctx, "Skipping source file",
				slog.String("file", source.Name),
				slog.String("reason", reason),
				slog.String("error", err.Error()))
			m.metrics.RecordFileSkipped(ctx, reason)
			dropped += result.Dropped
			continue
		}

		dataset.Records = append(dataset.Records, result.Records...)
		dataset.UsedFiles = append(dataset.UsedFiles, source.Name)
		dropped += result.Dropped
	}

	SortRecords(dataset.Records)

	duration := time.Since(start)
	m.metrics.RecordMerge(ctx, len(dataset.UsedFiles), dropped, duration)
	span.SetAttributes(
		attribute.Int("files.candidates", len(sources)),
		attribute.Int("files.used", len(dataset.UsedFiles)),
		attribute.Int("records", len(dataset.Records)),
	)

	m.logger.InfoContext(ctx, "Merged sales folder",
		slog.String("folder", dir),
		slog.Int("candidates", len(sources)),
		slog.Int("files_used", len(dataset.UsedFiles)),
		slog.Int("records", len(dataset.Records)),
		slog.Int("rows_dropped", dropped),
		slog.Duration("duration", duration))

	return dataset, nil
}

// mergeFile runs load, year resolution and normalization for one file
func (m *Merger) mergeFile(ctx context.Context, source files.FileInfo) (NormalizeResult, error) {
	table, err := m.loader.Load(ctx, source.Path)
	if err != nil {
		return NormalizeResult{}, err
	}

	year, err := ResolveYear(source.Name, CleanColumns(table.Columns))
	if err != nil {
		return NormalizeResult{}, err
	}

	result, err := Normalize(table, year)
	if err != nil {
		return NormalizeResult{}, fmt.Errorf("%s: %w", source.Name, err)
	}
	if len(result.Records) == 0 {
		return result, fmt.Errorf("%s: %w", source.Name, ErrNoValidRecords)
	}

	return result, nil
}
