package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Kalmbyy/retail-dashboard/internal/analytics"
	apierrors "github.com/Kalmbyy/retail-dashboard/internal/errors"
	"github.com/Kalmbyy/retail-dashboard/internal/exporter"
	"github.com/Kalmbyy/retail-dashboard/internal/infrastructure"
	"github.com/Kalmbyy/retail-dashboard/internal/salesdata"
	"github.com/Kalmbyy/retail-dashboard/internal/validation"
	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

// EventDatasetReloaded is broadcast after every successful reload
const EventDatasetReloaded = "dataset:reloaded"

// WebSocketHub is the subset of the websocket hub the service needs
type WebSocketHub interface {
	Broadcast(messageType string, data interface{})
}

// DatasetMerger builds the unified dataset from a folder
type DatasetMerger interface {
	MergeFolder(ctx context.Context, dir string) (*salesdata.Dataset, error)
}

// ViewResult is the filtered view plus the resolved selection it was built for
type ViewResult struct {
	Years       []int              `json:"years"`
	BrandMode   domain.BrandMode   `json:"brand_mode"`
	KPIYear     int                `json:"kpi_year"`
	Metric      domain.ValueMetric `json:"metric"`
	MetricLabel string             `json:"metric_label"`
	Rows        []domain.ViewRow   `json:"rows"`
}

// DatasetReloadedEvent is the payload of EventDatasetReloaded
type DatasetReloadedEvent struct {
	UsedFiles  []string  `json:"used_files"`
	Records    int       `json:"records"`
	Years      []int     `json:"years"`
	Brands     int       `json:"brands"`
	ReloadedAt time.Time `json:"reloaded_at"`
}

// snapshot is an immutable view of one merge; it is replaced wholesale on reload
type snapshot struct {
	info     domain.DatasetInfo
	yoy      analytics.YoYTable
	loadedAt time.Time
}

// DashboardService owns the current dataset and answers every dashboard query
type DashboardService struct {
	dataDir  string
	merger   DatasetMerger
	settings analytics.Settings
	reports  *exporter.ReportBuilder
	validate *validator.Validate
	hub      WebSocketHub
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *infrastructure.PipelineMetrics

	mu        sync.RWMutex
	snap      *snapshot
	reloading atomic.Bool
}

// DashboardOption configures a DashboardService
type DashboardOption func(*DashboardService)

// WithHub sets the hub notified after reloads
func WithHub(hub WebSocketHub) DashboardOption {
	return func(s *DashboardService) {
		s.hub = hub
	}
}

// WithTracer sets the tracer used for service spans
func WithTracer(tracer trace.Tracer) DashboardOption {
	return func(s *DashboardService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics sets the pipeline metrics
func WithMetrics(m *infrastructure.PipelineMetrics) DashboardOption {
	return func(s *DashboardService) {
		s.metrics = m
	}
}

// WithReportBuilder replaces the report builder
func WithReportBuilder(b *exporter.ReportBuilder) DashboardOption {
	return func(s *DashboardService) {
		if b != nil {
			s.reports = b
		}
	}
}

// NewDashboardService creates a dashboard service reading from dataDir
func NewDashboardService(dataDir string, merger DatasetMerger, settings analytics.Settings, logger *slog.Logger, opts ...DashboardOption) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "dashboard_service"))

	s := &DashboardService{
		dataDir:  dataDir,
		merger:   merger,
		settings: settings,
		validate: validation.NewStructValidator(),
		logger:   logger,
		tracer:   noop.NewTracerProvider().Tracer(infrastructure.ServiceName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reports == nil {
		s.reports = exporter.NewReportBuilder(logger,
			exporter.WithReportTracer(s.tracer),
			exporter.WithReportMetrics(s.metrics))
	}

	logger.Info("DashboardService initialized",
		slog.String("data_dir", dataDir),
		slog.Int("default_top_n", settings.TopN),
		slog.Float64("min_base_units", settings.MinBaseUnits))
	return s
}

// Reload re-merges the data directory and swaps in the new dataset.
// A concurrent call fails fast with ErrReloadInProgress. When no file yields records the
// empty dataset is still installed and ErrEmptyDataset is returned alongside its info.
func (s *DashboardService) Reload(ctx context.Context) (domain.DatasetInfo, error) {
	if !s.reloading.CompareAndSwap(false, true) {
		return domain.DatasetInfo{}, ErrReloadInProgress
	}
	defer s.reloading.Store(false)

	ctx, span := s.tracer.Start(ctx, "dashboard.reload",
		trace.WithAttributes(attribute.String("data_dir", s.dataDir)))
	defer span.End()

	start := time.Now()
	dataset, err := s.merger.MergeFolder(ctx, s.dataDir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "merge failed")
		s.logger.ErrorContext(ctx, "Dataset reload failed",
			slog.String("data_dir", s.dataDir),
			slog.String("error", err.Error()))
		return domain.DatasetInfo{}, apierrors.NewStorageError("failed to read data directory", err).
			WithContext("data_dir", s.dataDir)
	}

	snap := &snapshot{
		info:     analytics.Describe(dataset.Records, dataset.UsedFiles),
		yoy:      analytics.DeriveYoY(dataset.Records),
		loadedAt: time.Now(),
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	span.SetAttributes(
		attribute.Int("dataset.records", len(snap.info.Records)),
		attribute.Int("dataset.files", len(snap.info.UsedFiles)))

	s.logger.InfoContext(ctx, "Dataset reloaded",
		slog.Int("records", len(snap.info.Records)),
		slog.Int("files_used", len(snap.info.UsedFiles)),
		slog.Any("years", snap.info.Years),
		slog.Duration("duration", time.Since(start)))

	if s.hub != nil {
		s.hub.Broadcast(EventDatasetReloaded, DatasetReloadedEvent{
			UsedFiles:  snap.info.UsedFiles,
			Records:    len(snap.info.Records),
			Years:      snap.info.Years,
			Brands:     len(snap.info.Brands),
			ReloadedAt: snap.loadedAt,
		})
	}

	if dataset.Empty() {
		s.logger.WarnContext(ctx, "No usable sales files found",
			slog.String("data_dir", s.dataDir))
		return snap.info, fmt.Errorf("%w in %s", ErrEmptyDataset, s.dataDir)
	}
	return snap.info, nil
}

// Loaded reports whether a non-empty dataset is installed
func (s *DashboardService) Loaded() bool {
	_, err := s.current()
	return err == nil
}

// LoadedAt returns when the current dataset was installed
func (s *DashboardService) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return time.Time{}
	}
	return s.snap.loadedAt
}

// Dataset returns the unified dataset
func (s *DashboardService) Dataset(ctx context.Context) (domain.DatasetInfo, error) {
	snap, err := s.current()
	if err != nil {
		return domain.DatasetInfo{}, err
	}
	return snap.info, nil
}

// UsedFiles returns the files that contributed records
func (s *DashboardService) UsedFiles(ctx context.Context) ([]string, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	return snap.info.UsedFiles, nil
}

// View returns the filtered view for req
func (s *DashboardService) View(ctx context.Context, req domain.FilterRequest) (*ViewResult, error) {
	q, err := s.query(ctx, "dashboard.view", req)
	if err != nil {
		return nil, err
	}
	return &ViewResult{
		Years:       q.sel.Years,
		BrandMode:   q.sel.Mode,
		KPIYear:     q.sel.KPIYear,
		Metric:      q.sel.Metric,
		MetricLabel: q.sel.Metric.Label(),
		Rows:        q.view,
	}, nil
}

// Summary returns the KPI summary for req
func (s *DashboardService) Summary(ctx context.Context, req domain.FilterRequest) (domain.KPISummary, error) {
	q, err := s.query(ctx, "dashboard.summary", req)
	if err != nil {
		return domain.KPISummary{}, err
	}
	return q.summary(s.settings), nil
}

// Charts returns every chart slice for req
func (s *DashboardService) Charts(ctx context.Context, req domain.FilterRequest) (domain.ChartData, error) {
	q, err := s.query(ctx, "dashboard.charts", req)
	if err != nil {
		return domain.ChartData{}, err
	}
	return q.charts(s.settings), nil
}

// ExportCSV streams the filtered view as Year,Brand,Retail and returns the row count
func (s *DashboardService) ExportCSV(ctx context.Context, req domain.FilterRequest, w io.Writer) (int, error) {
	q, err := s.query(ctx, "dashboard.export_csv", req)
	if err != nil {
		return 0, err
	}
	err = exporter.WriteFilteredView(w, q.view)
	s.metrics.RecordExport(ctx, "csv", err)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return len(q.view), nil
}

// BuildReport builds the static report for req.
// When some charts fail the partial report is returned together with an error
// matching ErrExportFailed and *exporter.ExportError.
func (s *DashboardService) BuildReport(ctx context.Context, req domain.FilterRequest) (*exporter.Report, error) {
	q, err := s.query(ctx, "dashboard.report", req)
	if err != nil {
		return nil, err
	}

	report, err := s.reports.Build(ctx, exporter.ReportInput{
		Years:     q.sel.Years,
		BrandMode: q.sel.Mode,
		Summary:   q.summary(s.settings),
		Charts:    q.charts(s.settings),
		UsedFiles: q.snap.info.UsedFiles,
	})
	if err != nil {
		var exportErr *exporter.ExportError
		if errors.As(err, &exportErr) {
			return report, fmt.Errorf("%w: %w", ErrExportFailed, err)
		}
		return nil, err
	}
	return report, nil
}

// ExportReport renders the static report as HTML into w.
// Nothing is written when any chart fails.
func (s *DashboardService) ExportReport(ctx context.Context, req domain.FilterRequest, w io.Writer) error {
	report, err := s.BuildReport(ctx, req)
	if err != nil {
		return err
	}
	err = report.WriteHTML(w)
	s.metrics.RecordExport(ctx, "html", err)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}

func (s *DashboardService) current() (*snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil || len(s.snap.info.Records) == 0 {
		return nil, ErrEmptyDataset
	}
	return s.snap, nil
}

// query is one filter evaluation over a fixed snapshot
type query struct {
	snap *snapshot
	sel  analytics.Selection
	view []domain.ViewRow
}

func (q *query) summary(settings analytics.Settings) domain.KPISummary {
	return analytics.Summarize(q.snap.info.Records, q.view, q.snap.yoy, q.sel.KPIYear, settings.MinBaseUnits)
}

func (q *query) charts(settings analytics.Settings) domain.ChartData {
	return analytics.BuildCharts(q.snap.info.Records, q.view, q.sel, settings)
}

func (s *DashboardService) query(ctx context.Context, op string, req domain.FilterRequest) (*query, error) {
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		span.SetStatus(codes.Error, "invalid filter")
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	snap, err := s.current()
	if err != nil {
		return nil, err
	}

	sel, err := analytics.NewSelection(req, snap.info.Years, s.settings)
	if err != nil {
		return nil, err
	}

	view := analytics.ApplyFilters(snap.info.Records, sel, snap.yoy)
	s.metrics.RecordView(ctx, string(sel.Mode), len(view))
	span.SetAttributes(
		attribute.IntSlice("filter.years", sel.Years),
		attribute.String("filter.mode", string(sel.Mode)),
		attribute.Int("view.rows", len(view)))

	if len(view) == 0 {
		s.logger.DebugContext(ctx, "Filter selected no rows",
			slog.String("mode", string(sel.Mode)),
			slog.Any("years", sel.Years),
			slog.Int("brands", len(sel.Brands)))
		return nil, ErrEmptySelection
	}

	return &query{snap: snap, sel: sel, view: view}, nil
}
