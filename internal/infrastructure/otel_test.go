package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalmbyy/retail-dashboard/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider, "tracing is off by default")
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *OTelConfig
		wantErr bool
		check   func(*testing.T, *OTelProviders)
	}{
		{
			name: "everything disabled",
			cfg:  &OTelConfig{ServiceName: ServiceName, TraceExporter: "none", MetricExporter: "none"},
			check: func(t *testing.T, p *OTelProviders) {
				assert.Nil(t, p.TracerProvider)
				assert.Nil(t, p.MeterProvider)
				assert.Nil(t, p.PrometheusHTTP)
				assert.NotNil(t, p.Tracer)
				assert.NotNil(t, p.Meter)
			},
		},
		{
			name: "stdout tracing",
			cfg:  &OTelConfig{ServiceName: ServiceName, TraceExporter: "stdout", MetricExporter: "none", SampleRatio: 1},
			check: func(t *testing.T, p *OTelProviders) {
				assert.NotNil(t, p.TracerProvider)
			},
		},
		{
			name:    "unknown trace exporter",
			cfg:     &OTelConfig{TraceExporter: "jaeger"},
			wantErr: true,
		},
		{
			name:    "unknown metric exporter",
			cfg:     &OTelConfig{TraceExporter: "none", MetricExporter: "statsd"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.cfg, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer providers.Shutdown(context.Background())
			tt.check(t, providers)
		})
	}
}

func TestNewOTelConfig(t *testing.T) {
	cfg := NewOTelConfig(config.TelemetryConfig{
		Environment:    "production",
		TraceExporter:  "stdout",
		MetricExporter: "prometheus",
		SampleRatio:    0.25,
	})

	assert.Equal(t, ServiceName, cfg.ServiceName)
	assert.Equal(t, config.AppVersion, cfg.ServiceVersion)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 0.25, cfg.SampleRatio)
}

func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordFileSkipped(ctx, "no_year")
	metrics.RecordMerge(ctx, 2, 3, 10*time.Millisecond)
	metrics.RecordCache(ctx, true)
	metrics.RecordExport(ctx, "csv", errors.New("disk full"))

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "sales_files_skipped_total")
	assert.Contains(t, body, `reason="no_year"`)
	assert.Contains(t, body, "sales_records_dropped_total")
	assert.Contains(t, body, "sales_export_failures_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestPipelineMetricsNilSafe(t *testing.T) {
	var m *PipelineMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordFileSkipped(ctx, "unreadable")
		m.RecordMerge(ctx, 1, 0, time.Second)
		m.RecordCache(ctx, false)
		m.RecordView(ctx, "top", 0)
		m.RecordExport(ctx, "report", nil)
	})

	assert.NotNil(t, NoopPipelineMetrics())
}

func TestSpanOperations(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    ServiceName,
		TraceExporter:  "stdout",
		MetricExporter: "none",
		SampleRatio:    1,
	}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "merge")
	defer span.End()

	assert.NotEmpty(t, TraceIDFromContext(ctx))
	assert.NotPanics(t, func() {
		SetSpanAttributes(ctx, map[string]interface{}{
			"files":  2,
			"years":  []int{2020, 2021},
			"folder": "data",
			"ok":     true,
		})
		RecordError(ctx, errors.New("boom"))
	})

	assert.Empty(t, TraceIDFromContext(context.Background()))
}
