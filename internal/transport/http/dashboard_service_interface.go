package http

import (
	"context"
	"io"

	"github.com/Kalmbyy/retail-dashboard/internal/services"
	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations exposed over HTTP
type DashboardServiceInterface interface {
	Reload(ctx context.Context) (domain.DatasetInfo, error)
	Dataset(ctx context.Context) (domain.DatasetInfo, error)
	UsedFiles(ctx context.Context) ([]string, error)
	View(ctx context.Context, req domain.FilterRequest) (*services.ViewResult, error)
	Summary(ctx context.Context, req domain.FilterRequest) (domain.KPISummary, error)
	Charts(ctx context.Context, req domain.FilterRequest) (domain.ChartData, error)
	ExportCSV(ctx context.Context, req domain.FilterRequest, w io.Writer) (int, error)
	ExportReport(ctx context.Context, req domain.FilterRequest, w io.Writer) error
}

// PDFRenderer prints a rendered HTML report to PDF
type PDFRenderer interface {
	Render(ctx context.Context, html []byte) ([]byte, error)
}
