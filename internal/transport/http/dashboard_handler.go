package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "github.com/Kalmbyy/retail-dashboard/internal/errors"
	"github.com/Kalmbyy/retail-dashboard/internal/exporter"
	"github.com/Kalmbyy/retail-dashboard/internal/services"
	"github.com/Kalmbyy/retail-dashboard/internal/validation"
	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

// Download names of the exported files
const (
	CSVFilename    = "filtered_retail_sales.csv"
	ReportFilename = "retail_dashboard.html"
	PDFFilename    = "retail_dashboard.pdf"
)

// maxFilterBody bounds the size of a filter request body
const maxFilterBody = 64 << 10

// DashboardHandler serves the dataset, the filtered view and the exports
type DashboardHandler struct {
	service      DashboardServiceInterface
	pdf          PDFRenderer
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a dashboard handler. pdf may be nil, in which case
// report exports are HTML only.
func NewDashboardHandler(service DashboardServiceInterface, pdf PDFRenderer, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		pdf:          pdf,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// RegisterRoutes adds the dashboard routes to r
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Route("/dataset", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/", h.GetDataset)
		r.Get("/files", h.GetUsedFiles)
		r.Post("/reload", h.Reload)
	})

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/view", h.GetView)
		r.Post("/summary", h.GetSummary)
		r.Post("/charts", h.GetCharts)
	})

	r.Route("/export", func(r chi.Router) {
		r.Post("/csv", h.ExportCSV)
		r.Post("/report", h.ExportReport)
	})
}

// GetDataset handles GET /api/dataset
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Dataset(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   info,
		"count":  len(info.Records),
	})
}

// GetUsedFiles handles GET /api/dataset/files
func (h *DashboardHandler) GetUsedFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.UsedFiles(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   files,
		"count":  len(files),
	})
}

// Reload handles POST /api/dataset/reload
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	h.logger.InfoContext(r.Context(), "reloading dataset",
		slog.String("request_id", reqID))

	info, err := h.service.Reload(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"used_files": info.UsedFiles,
			"years":      info.Years,
			"brands":     info.Brands,
			"records":    len(info.Records),
		},
	})
}

// GetView handles POST /api/view
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeFilter(w, r)
	if !ok {
		return
	}

	result, err := h.service.View(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
		"count":  len(result.Rows),
	})
}

// GetSummary handles POST /api/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeFilter(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetCharts handles POST /api/charts
func (h *DashboardHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeFilter(w, r)
	if !ok {
		return
	}

	charts, err := h.service.Charts(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   charts,
	})
}

// ExportCSV handles POST /api/export/csv
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeFilter(w, r)
	if !ok {
		return
	}

	// Buffer so a failed export still gets a problem response
	var buf bytes.Buffer
	rows, err := h.service.ExportCSV(r.Context(), req, &buf)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "exported filtered view",
		slog.Int("rows", rows),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	h.attachment(w, "text/csv; charset=utf-8", CSVFilename, buf.Bytes())
}

// ExportReport handles POST /api/export/report. With ?format=pdf the report is
// printed through the headless browser.
func (h *DashboardHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "html" && format != "pdf" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "format must be one of: html, pdf"))
		return
	}
	if format == "pdf" && h.pdf == nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(http.StatusNotImplemented,
			apierrors.CodeUnavailable, "PDF export is not available", "no Chrome executable configured"))
		return
	}

	req, ok := h.decodeFilter(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportReport(r.Context(), req, &buf); err != nil {
		h.fail(w, r, err)
		return
	}

	if format != "pdf" {
		h.attachment(w, "text/html; charset=utf-8", ReportFilename, buf.Bytes())
		return
	}

	pdf, err := h.pdf.Render(r.Context(), buf.Bytes())
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", services.ErrExportFailed, err))
		return
	}
	h.attachment(w, "application/pdf", PDFFilename, pdf)
}

// decodeFilter reads the optional JSON filter body. An empty body is the default filter.
func (h *DashboardHandler) decodeFilter(w http.ResponseWriter, r *http.Request) (domain.FilterRequest, bool) {
	var req domain.FilterRequest
	if r.Body == nil {
		return req, true
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFilterBody)
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return req, false
	}
	return req, true
}

func (h *DashboardHandler) attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.errorHandler.HandleError(w, r, toAPIError(err))
}

// toAPIError maps service errors onto API errors; unknown errors pass through
func toAPIError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidFilter):
		if fields := validation.FieldErrors(err); len(fields) > 0 {
			return apierrors.NewValidationErrors(fields)
		}
		return apierrors.InvalidRequestWithError(err)
	case errors.Is(err, services.ErrKPIYearNotSelected):
		return apierrors.ErrValidation("kpi_year", "kpi_year must be one of the selected years")
	case errors.Is(err, services.ErrEmptyDataset):
		return apierrors.ErrEmptyDataset
	case errors.Is(err, services.ErrEmptySelection):
		return apierrors.ErrEmptySelection
	case errors.Is(err, services.ErrReloadInProgress):
		return apierrors.ErrReloadInProgress
	case errors.Is(err, services.ErrExportFailed):
		var exportErr *exporter.ExportError
		failed := []string{}
		if errors.As(err, &exportErr) {
			failed = exportErr.Charts()
		}
		return apierrors.ExportFailedError(err, failed)
	default:
		return err
	}
}
