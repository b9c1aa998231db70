package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Kalmbyy/retail-dashboard/internal/analytics"
	"github.com/Kalmbyy/retail-dashboard/internal/config"
	apierrors "github.com/Kalmbyy/retail-dashboard/internal/errors"
	"github.com/Kalmbyy/retail-dashboard/internal/exporter"
	"github.com/Kalmbyy/retail-dashboard/internal/infrastructure"
	customMiddleware "github.com/Kalmbyy/retail-dashboard/internal/middleware"
	"github.com/Kalmbyy/retail-dashboard/internal/salesdata"
	"github.com/Kalmbyy/retail-dashboard/internal/services"
	handlers "github.com/Kalmbyy/retail-dashboard/internal/transport/http"
	"github.com/Kalmbyy/retail-dashboard/internal/validation"
	ws "github.com/Kalmbyy/retail-dashboard/internal/websocket"
)

const RepoURL = "https://github.com/Kalmbyy/retail-dashboard"

// maxFilterBody bounds JSON request bodies on the API
const maxFilterBody = 64 << 10

// BuildTime is set at link time with -X; unset builds report the process start
var BuildTime string

// BuildID is a unique identifier for this build
var BuildID = generateBuildID()

func init() {
	if BuildTime == "" {
		BuildTime = time.Now().UTC().Format(time.RFC3339)
	}
}

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(config.AppVersion))
	h.Write([]byte(BuildTime))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	WebSocketHub  *ws.Hub
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dashboard *services.DashboardService
	Health    *services.HealthService
	Loader    *salesdata.CachedLoader
	// PDF is nil when no Chrome binary is installed
	PDF *exporter.PDFRenderer
}

// NewApplication loads the configuration and logger, then builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires every component from cfg. Nothing is served or loaded until Start.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	pipelineMetrics, err := infrastructure.CreatePipelineMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	wsMetrics, err := ws.NewMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}

	hub := ws.NewHub(a.Logger,
		ws.WithMetrics(wsMetrics),
		ws.WithKeepalive(a.Config.WebSocket.PingPeriod, a.Config.WebSocket.PongWait))
	hub.Start()
	a.WebSocketHub = hub

	loader := salesdata.NewCachedLoader(pipelineMetrics)
	merger := salesdata.NewMerger(a.Logger,
		salesdata.WithLoader(loader),
		salesdata.WithPattern(a.Config.Dashboard.FilePattern),
		salesdata.WithMetrics(pipelineMetrics),
		salesdata.WithTracer(a.OTelProviders.Tracer))

	dashboard := services.NewDashboardService(
		a.Paths.DataDir,
		merger,
		analytics.NewSettings(a.Config.Dashboard),
		a.Logger,
		services.WithHub(hub),
		services.WithTracer(a.OTelProviders.Tracer),
		services.WithMetrics(pipelineMetrics),
	)

	health := services.NewHealthService(
		services.BuildInfo{
			Version:   config.AppVersion,
			RepoURL:   RepoURL,
			BuildTime: BuildTime,
			BuildID:   BuildID,
		},
		a.Paths,
		dashboard,
		hub,
		a.Logger,
	)

	var pdf *exporter.PDFRenderer
	if chrome, ok := exporter.FindChrome(); ok {
		pdf = exporter.NewPDFRenderer(a.Logger, a.Config.Server.RequestTimeout)
		a.Logger.Info("PDF export enabled", slog.String("chrome", chrome))
	} else {
		a.Logger.Info("PDF export disabled - no Chrome binary found")
	}

	a.Services = &ServiceContainer{
		Dashboard: dashboard,
		Health:    health,
		Loader:    loader,
		PDF:       pdf,
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	// Only middleware that leaves the ResponseWriter alone runs before /ws
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	wsHandler := ws.NewHandler(a.WebSocketHub, a.Config.Security.AllowedOrigins, a.Logger,
		ws.WithBufferSizes(a.Config.WebSocket.ReadBufferSize, a.Config.WebSocket.WriteBufferSize))
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", wsHandler)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(errorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				errorHandler,
			).Handler)
		}

		r.Use(customMiddleware.Compress(5))

		a.setupAPIRoutes(r, errorHandler)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, errorHandler))

		handlers.NewHealthHandler(a.Services.Health, a.Logger).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			validator := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler, maxFilterBody)
			r.Use(customMiddleware.ContentTypeValidator(errorHandler, "application/json"))
			r.Use(validator.ValidateRequest)

			var pdf handlers.PDFRenderer
			if a.Services.PDF != nil {
				pdf = a.Services.PDF
			}
			handlers.NewDashboardHandler(a.Services.Dashboard, pdf, a.Logger, errorHandler).RegisterRoutes(r)
		})
	})
}

// getCORSConfig returns the CORS configuration for the API
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	origins := a.Config.Security.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{
			fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
			fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
		}
	}

	a.Logger.Info("CORS configured", slog.Any("allowed_origins", origins))
	return customMiddleware.CORSConfig{
		AllowedOrigins: origins,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start loads the dataset when configured to, then serves HTTP in the background.
// A listener failure cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	if a.Config.Dashboard.LoadOnStartup {
		a.loadInitialDataset(ctx)
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// loadInitialDataset performs the first merge. Failures leave the API up but not ready.
func (a *Application) loadInitialDataset(ctx context.Context) {
	info, err := a.Services.Dashboard.Reload(ctx)
	switch {
	case err == nil:
		a.Logger.InfoContext(ctx, "Initial dataset loaded",
			slog.Int("records", len(info.Records)),
			slog.Int("files_used", len(info.UsedFiles)))
	case errors.Is(err, services.ErrEmptyDataset):
		a.Logger.WarnContext(ctx, "Initial dataset is empty",
			slog.String("data_dir", a.Paths.DataDir))
	default:
		a.Logger.ErrorContext(ctx, "Initial dataset load failed",
			slog.String("error", err.Error()))
	}
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the listener fails
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.Info("Received interrupt signal")
	case <-ctx.Done():
		a.Logger.Warn("Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}

// performStartupHealthCheck checks the data and reports directories
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	validator := validation.NewFileValidator(a.Logger)
	var warnings []string

	if err := validator.ValidateInputDirectory(a.Paths.DataDir); err != nil {
		warnings = append(warnings, err.Error())
	} else if tabular, _, err := validator.CountSourceFiles(a.Paths.DataDir, a.Config.Dashboard.FilePattern); err != nil {
		warnings = append(warnings, err.Error())
	} else if tabular == 0 {
		warnings = append(warnings, fmt.Sprintf("no sales files in %s", a.Paths.DataDir))
	}

	if err := validator.ValidateOutputDirectory(a.Paths.ReportsDir); err != nil {
		warnings = append(warnings, err.Error())
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
