package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Kalmbyy/retail-dashboard/internal/analytics"
	"github.com/Kalmbyy/retail-dashboard/internal/config"
	apierrors "github.com/Kalmbyy/retail-dashboard/internal/errors"
	"github.com/Kalmbyy/retail-dashboard/internal/exporter"
	"github.com/Kalmbyy/retail-dashboard/internal/files"
	"github.com/Kalmbyy/retail-dashboard/internal/infrastructure"
	"github.com/Kalmbyy/retail-dashboard/internal/salesdata"
	"github.com/Kalmbyy/retail-dashboard/internal/services"
	"github.com/Kalmbyy/retail-dashboard/internal/validation"
	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// options are the parsed command line flags
type options struct {
	in      string
	out     string
	years   string
	yearsOn bool
	mode    string
	top     int
	brands  string
	metric  string
	kpi     int
	heatmap string
	pdf     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("salesreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.in, "in", "", "folder holding the yearly sales files (defaults to the configured data dir)")
	fs.StringVar(&opts.out, "out", "", "output folder (defaults to the configured reports dir)")
	fs.StringVar(&opts.years, "years", "", "comma separated years, e.g. 2020,2021 (default: every year)")
	fs.StringVar(&opts.mode, "mode", "", "brand mode: top or manual")
	fs.IntVar(&opts.top, "top", 0, "number of brands per year in top mode")
	fs.StringVar(&opts.brands, "brands", "", "comma separated brands for manual mode")
	fs.StringVar(&opts.metric, "metric", "", "value metric: retail, share, yoy_growth or yoy_change")
	fs.IntVar(&opts.kpi, "kpi", 0, "KPI year (default: latest selected year)")
	fs.StringVar(&opts.heatmap, "heatmap", "", "heatmap scale: log, normalized or none")
	fs.BoolVar(&opts.pdf, "pdf", false, "also print the report to PDF with headless Chrome")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "years" {
			opts.yearsOn = true
		}
	})
	return opts, nil
}

// filterRequest maps the flags onto a FilterRequest. An explicitly empty -years
// selects nothing; an absent one selects every year.
func (o options) filterRequest() (domain.FilterRequest, error) {
	req := domain.FilterRequest{
		BrandMode:    domain.BrandMode(o.mode),
		TopN:         o.top,
		Metric:       domain.ValueMetric(o.metric),
		KPIYear:      o.kpi,
		HeatmapScale: domain.HeatmapScale(o.heatmap),
	}

	if o.yearsOn {
		req.Years = []int{}
		for _, part := range splitList(o.years) {
			year, err := strconv.Atoi(part)
			if err != nil {
				return domain.FilterRequest{}, fmt.Errorf("invalid year %q", part)
			}
			req.Years = append(req.Years, year)
		}
	}

	if brands := splitList(o.brands); len(brands) > 0 {
		req.Brands = brands
	}
	return req, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitUsage
	}

	logger := infrastructure.NewLoggerWithWriter(stderr, &slog.HandlerOptions{Level: slog.LevelInfo})

	start := time.Now()
	if err := generate(ctx, opts, logger); err != nil {
		return fail(logger, err)
	}

	logger.Info("Report complete",
		slog.String("out", opts.out),
		slog.Duration("duration", time.Since(start)))
	return exitOK
}

// generate loads the input folder and writes every requested output.
// Failures are returned as *apierrors.AppError.
func generate(ctx context.Context, opts options, logger *slog.Logger) error {
	req, err := opts.filterRequest()
	if err != nil {
		return apierrors.NewParsingError("invalid -years value", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return apierrors.NewConfigError("failed to load configuration", err)
	}
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return apierrors.NewConfigError("failed to resolve paths", err)
	}
	if opts.in == "" {
		opts.in = paths.DataDir
	}
	if opts.out == "" {
		opts.out = paths.ReportsDir
	}

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputDirectory(opts.in); err != nil {
		return apierrors.NewNotFoundError("input directory").WithContext("in", opts.in)
	}
	if err := validator.ValidateOutputDirectory(opts.out); err != nil {
		return apierrors.NewStorageError("output directory is not writable", err).WithContext("out", opts.out)
	}
	if _, _, err := validator.CountSourceFiles(opts.in, cfg.Dashboard.FilePattern); err != nil {
		return apierrors.NewConfigError("failed to scan input directory", err).WithContext("in", opts.in)
	}

	merger := salesdata.NewMerger(logger, salesdata.WithPattern(cfg.Dashboard.FilePattern))
	service := services.NewDashboardService(opts.in, merger, analytics.NewSettings(cfg.Dashboard), logger)
	if _, err := service.Reload(ctx); err != nil {
		return classify(err).WithContext("in", opts.in)
	}

	manager := files.NewManager(&config.Paths{ReportsDir: opts.out}, logger)

	view, err := service.View(ctx, req)
	if err != nil {
		return classify(err)
	}
	csvPath, err := exporter.NewCSVWriter(manager).ExportFilteredView(config.FilteredCSVName, view.Rows)
	if err != nil {
		return apierrors.NewStorageError("failed to write filtered view", err)
	}
	logger.Info("Filtered view exported",
		slog.String("path", csvPath),
		slog.Int("rows", len(view.Rows)))

	report, err := service.BuildReport(ctx, req)
	if err != nil {
		return classify(err)
	}

	var page bytes.Buffer
	if err := report.WriteHTML(&page); err != nil {
		return apierrors.NewExportError("failed to render report", err)
	}
	if _, err := manager.WriteFile(config.ReportHTMLName, page.Bytes()); err != nil {
		return apierrors.NewStorageError("failed to write report", err)
	}

	if !opts.pdf {
		return nil
	}
	if _, ok := exporter.FindChrome(); !ok {
		return apierrors.NewConfigError("PDF export requires Chrome or Chromium on PATH", nil)
	}
	data, err := exporter.NewPDFRenderer(logger, time.Minute).Render(ctx, page.Bytes())
	if err != nil {
		return apierrors.NewExportError("failed to print report to PDF", err)
	}
	if _, err := manager.WriteFile(config.ReportPDFName, data); err != nil {
		return apierrors.NewStorageError("failed to write PDF", err)
	}
	return nil
}

// classify maps dashboard service errors onto the application error taxonomy
func classify(err error) *apierrors.AppError {
	var appErr *apierrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, services.ErrEmptyDataset):
		return apierrors.NewEmptyDatasetError(err)
	case errors.Is(err, services.ErrEmptySelection):
		return apierrors.NewEmptySelectionError(err)
	case errors.Is(err, services.ErrKPIYearNotSelected):
		return apierrors.NewAppValidationError("kpi year must be one of the selected years")
	case errors.Is(err, services.ErrInvalidFilter):
		return apierrors.NewAppError(apierrors.ErrTypeValidation, "invalid filter", err)
	case errors.Is(err, services.ErrExportFailed):
		exportErr := apierrors.NewExportError("report export failed", err)
		var charts *exporter.ExportError
		if errors.As(err, &charts) {
			exportErr.WithContext("failed_charts", charts.Charts())
		}
		return exportErr
	default:
		return apierrors.NewAppError(apierrors.ErrTypeExport, "report generation failed", err)
	}
}

// fail logs err and picks the exit code: bad input is a usage error
func fail(logger *slog.Logger, err error) int {
	appErr := classify(err)

	attrs := []any{slog.String("error_type", string(appErr.Type))}
	if appErr.Cause != nil {
		attrs = append(attrs, slog.String("error", appErr.Cause.Error()))
	}
	for key, value := range appErr.Context {
		attrs = append(attrs, slog.Any(key, value))
	}
	logger.Error(appErr.Message, attrs...)

	switch appErr.Type {
	case apierrors.ErrTypeValidation, apierrors.ErrTypeParsing, apierrors.ErrTypeConfig, apierrors.ErrTypeNotFound:
		return exitUsage
	default:
		return exitFailure
	}
}
