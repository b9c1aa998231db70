package exporter

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/Kalmbyy/retail-dashboard/internal/infrastructure"
	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

//go:embed templates/report.html.tmpl
var reportTemplateText string

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"units":   formatUnits,
	"pct":     formatPercent,
	"join":    strings.Join,
	"years":   joinYears,
	"float":   domain.Float,
	"isoTime": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}).Parse(reportTemplateText))

// ReportInput carries everything the static report shows
type ReportInput struct {
	Title     string
	Years     []int
	BrandMode domain.BrandMode
	Summary   domain.KPISummary
	Charts    domain.ChartData
	UsedFiles []string
}

// Report is a rendered set of figures plus the KPI block
type Report struct {
	ID          string
	Title       string
	GeneratedAt time.Time
	Years       []int
	BrandMode   domain.BrandMode
	Metric      domain.ValueMetric
	Summary     domain.KPISummary
	UsedFiles   []string
	Figures     []Figure
}

// ExportError lists the charts that could not be built
type ExportError struct {
	Failures map[ChartKind]error
}

func (e *ExportError) Error() string {
	kinds := e.Charts()
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s: %v", k, e.Failures[ChartKind(k)]))
	}
	return fmt.Sprintf("export failed for %d chart(s): %s", len(kinds), strings.Join(parts, "; "))
}

// Unwrap exposes the individual chart errors to errors.Is and errors.As
func (e *ExportError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, k := range e.Charts() {
		errs = append(errs, e.Failures[ChartKind(k)])
	}
	return errs
}

// Charts returns the failed chart names in ascending order
func (e *ExportError) Charts() []string {
	kinds := make([]string, 0, len(e.Failures))
	for k := range e.Failures {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	return kinds
}

// ReportBuilder builds report figures concurrently
type ReportBuilder struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
	figures []NamedFigure
	now     func() time.Time
}

// ReportOption configures a ReportBuilder
type ReportOption func(*ReportBuilder)

// WithReportTracer sets the tracer used for report spans
func WithReportTracer(tracer trace.Tracer) ReportOption {
	return func(b *ReportBuilder) {
		if tracer != nil {
			b.tracer = tracer
		}
	}
}

// WithReportMetrics sets the pipeline metrics
func WithReportMetrics(m *infrastructure.PipelineMetrics) ReportOption {
	return func(b *ReportBuilder) {
		b.metrics = m
	}
}

// WithFigures replaces the figure builders
func WithFigures(figures ...NamedFigure) ReportOption {
	return func(b *ReportBuilder) {
		b.figures = figures
	}
}

// NewReportBuilder creates a builder for the four dashboard charts
func NewReportBuilder(logger *slog.Logger, opts ...ReportOption) *ReportBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	b := &ReportBuilder{
		logger:  logger.With(slog.String("component", "report_builder")),
		tracer:  noop.NewTracerProvider().Tracer(infrastructure.ServiceName),
		figures: DefaultFigures(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build renders every figure. A failing or panicking figure does not stop the others:
// the returned Report holds the successful figures and the error is an *ExportError
// naming the failed ones. Build only returns a nil Report when ctx is done.
func (b *ReportBuilder) Build(ctx context.Context, in ReportInput) (*Report, error) {
	ctx, span := b.tracer.Start(ctx, "report.build",
		trace.WithAttributes(attribute.Int("report.figures", len(b.figures))))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]*Figure, len(b.figures))
	var mu sync.Mutex
	failures := make(map[ChartKind]error)

	var g errgroup.Group
	g.SetLimit(4)
	for i, nf := range b.figures {
		i, nf := i, nf
		g.Go(func() error {
			fig, err := b.buildOne(ctx, nf, in)
			b.metrics.RecordExport(ctx, string(nf.Kind), err)
			if err != nil {
				b.logger.ErrorContext(ctx, "Chart export failed",
					slog.String("chart", string(nf.Kind)),
					slog.String("error", err.Error()))
				mu.Lock()
				failures[nf.Kind] = err
				mu.Unlock()
				return nil
			}
			results[i] = &fig
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := in.Title
	if title == "" {
		title = "Retail Brand Dashboard"
	}
	report := &Report{
		ID:          uuid.NewString(),
		Title:       title,
		GeneratedAt: b.now(),
		Years:       in.Years,
		BrandMode:   in.BrandMode,
		Metric:      in.Charts.Metric,
		Summary:     in.Summary,
		UsedFiles:   in.UsedFiles,
		Figures:     make([]Figure, 0, len(results)),
	}
	for _, fig := range results {
		if fig != nil {
			report.Figures = append(report.Figures, *fig)
		}
	}

	b.logger.InfoContext(ctx, "Report built",
		slog.String("report_id", report.ID),
		slog.Int("figures", len(report.Figures)),
		slog.Int("failed", len(failures)))

	if len(failures) > 0 {
		err := &ExportError{Failures: failures}
		span.RecordError(err)
		span.SetStatus(codes.Error, "chart export failed")
		return report, err
	}
	return report, nil
}

func (b *ReportBuilder) buildOne(ctx context.Context, nf NamedFigure, in ReportInput) (fig Figure, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "Chart builder panicked",
				slog.String("chart", string(nf.Kind)),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("chart %s panicked: %v", nf.Kind, r)
		}
	}()

	if nf.Build == nil {
		return Figure{}, errors.New("no builder registered")
	}
	fig, err = nf.Build(ctx, in)
	if err != nil {
		return Figure{}, err
	}
	if fig.Kind == "" {
		fig.Kind = nf.Kind
	}
	return fig, nil
}

// WriteHTML renders the report as a self-contained page
func (r *Report) WriteHTML(w io.Writer) error {
	if err := reportTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func joinYears(years []int) string {
	parts := make([]string, 0, len(years))
	for _, y := range years {
		parts = append(parts, formatYear(y))
	}
	return strings.Join(parts, ", ")
}
