package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalmbyy/retail-dashboard/internal/config"
	"github.com/Kalmbyy/retail-dashboard/internal/shared/testutil"
)

type testApp struct {
	*Application
	logs *testutil.BufferedSlogHandler
}

func newTestApp(t *testing.T, seed func(t *testing.T, dataDir string)) testApp {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Security.RateLimit.Enabled = false
	cfg.Telemetry.TraceExporter = "none"
	cfg.Telemetry.MetricExporter = "prometheus"

	if seed != nil {
		dataDir := filepath.Join(cfg.Paths.BaseDir, cfg.Paths.DataDir)
		require.NoError(t, os.MkdirAll(dataDir, 0755))
		seed(t, dataDir)
	}

	logger, logs := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(app.WebSocketHub.Stop)

	return testApp{Application: app, logs: logs}
}

func (a testApp) do(t *testing.T, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestNew(t *testing.T) {
	app := newTestApp(t, nil)

	require.NotNil(t, app.Services)
	assert.NotNil(t, app.Services.Dashboard)
	assert.NotNil(t, app.Services.Health)
	assert.NotNil(t, app.Services.Loader)
	assert.NotNil(t, app.Router)
	assert.Equal(t, ":8080", app.Server.Addr)
	assert.DirExists(t, app.Paths.ReportsDir)
	assert.DirExists(t, app.Paths.LogsDir)
	assert.NoDirExists(t, app.Paths.DataDir, "the data directory is an input and is never created")
	assert.Len(t, BuildID, 12)
}

func TestRouter(t *testing.T) {
	app := newTestApp(t, testutil.TwoYearFolder)

	t.Run("not ready before the first load", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/health/ready", "", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	app.loadInitialDataset(context.Background())
	testutil.AssertLogContains(t, app.logs, slog.LevelInfo, "Initial dataset loaded")

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		wantStatus  int
		wantBody    string
	}{
		{"ready", http.MethodGet, "/api/health/ready", "", "", http.StatusOK, `"status":"ready"`},
		{"version", http.MethodGet, "/api/version", "", "", http.StatusOK, config.AppVersion},
		{"dataset", http.MethodGet, "/api/dataset", "", "", http.StatusOK, `"2021_data.csv"`},
		{"view", http.MethodPost, "/api/view", "application/json", `{"years":[2021]}`, http.StatusOK, `"Toyota"`},
		{"empty body view", http.MethodPost, "/api/view", "", "", http.StatusOK, `"Honda"`},
		{"wrong content type", http.MethodPost, "/api/view", "text/plain", `{}`, http.StatusUnsupportedMediaType, "Unsupported content type"},
		{"malformed json", http.MethodPost, "/api/view", "application/json", `{"years":`, http.StatusBadRequest, "invalid JSON"},
		{"invalid filter", http.MethodPost, "/api/view", "application/json", `{"brand_mode":"all"}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"empty selection", http.MethodPost, "/api/summary", "application/json", `{"years":[]}`, http.StatusUnprocessableEntity, "EMPTY_SELECTION"},
		{"csv export", http.MethodPost, "/api/export/csv", "application/json", `{"years":[2020]}`, http.StatusOK, "Year,Brand,Retail"},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK, "go_goroutines"},
		{"unknown route", http.MethodGet, "/api/nope", "", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, tt.method, tt.path, tt.contentType, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			if strings.HasPrefix(tt.path, "/api") {
				assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
				assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			}
		})
	}
}

func TestLoadInitialDataset_Empty(t *testing.T) {
	app := newTestApp(t, func(t *testing.T, dataDir string) {})

	app.loadInitialDataset(context.Background())

	testutil.AssertLogContains(t, app.logs, slog.LevelWarn, "Initial dataset is empty")
	rec := app.do(t, http.MethodPost, "/api/view", "", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMPTY_DATASET")
}

func TestPerformStartupHealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		seed    func(t *testing.T, dataDir string)
		wantErr string
	}{
		{"data present", testutil.TwoYearFolder, ""},
		{"empty data dir", func(t *testing.T, dataDir string) {}, "no sales files"},
		{"missing data dir", nil, "does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, tt.seed)
			err := app.performStartupHealthCheck(context.Background())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestGetCORSConfig(t *testing.T) {
	app := newTestApp(t, nil)

	app.Config.Security.AllowedOrigins = []string{"https://sales.example"}
	assert.Equal(t, []string{"https://sales.example"}, app.getCORSConfig().AllowedOrigins)

	app.Config.Security.AllowedOrigins = nil
	app.Config.Server.Port = 9090
	assert.Equal(t, []string{"http://localhost:9090", "http://127.0.0.1:9090"}, app.getCORSConfig().AllowedOrigins)
}
