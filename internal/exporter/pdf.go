package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// chromeCandidates are the browser binaries chromedp can drive
var chromeCandidates = []string{
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
}

// FindChrome returns the first Chrome or Chromium binary on PATH
func FindChrome() (string, bool) {
	for _, name := range chromeCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

// PDFRenderer prints report pages to PDF with headless Chrome
type PDFRenderer struct {
	logger    *slog.Logger
	timeout   time.Duration
	settle    time.Duration
	execPath  string
	landscape bool
}

// NewPDFRenderer creates a renderer. A zero timeout defaults to one minute.
func NewPDFRenderer(logger *slog.Logger, timeout time.Duration) *PDFRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	path, _ := FindChrome()
	return &PDFRenderer{
		logger:    logger.With(slog.String("component", "pdf_renderer")),
		timeout:   timeout,
		settle:    2 * time.Second,
		execPath:  path,
		landscape: true,
	}
}

// Render loads html in a headless browser and returns the printed PDF
func (r *PDFRenderer) Render(ctx context.Context, html []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "retail-report-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	pagePath := filepath.Join(dir, "report.html")
	if err := os.WriteFile(pagePath, html, 0600); err != nil {
		return nil, fmt.Errorf("failed to stage report page: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.DisableGPU,
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
	target := (&url.URL{Scheme: "file", Path: pagePath}).String()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithLandscape(r.landscape).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to print report to pdf: %w", err)
	}

	r.logger.InfoContext(ctx, "Rendered PDF",
		slog.Int("size_bytes", len(pdf)),
		slog.Duration("duration", time.Since(start)))
	return pdf, nil
}
