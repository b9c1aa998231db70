package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, YearlyFilePattern, cfg.Dashboard.FilePattern)
	assert.Equal(t, 10, cfg.Dashboard.DefaultTopN)
	assert.Equal(t, 8, cfg.Dashboard.LineTopK)
	assert.Equal(t, 12, cfg.Dashboard.TreemapMinRows)
	assert.Equal(t, 1000.0, cfg.Dashboard.MinBaseUnits)
	assert.NoError(t, cfg.validate())
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "retail", cfg.Dashboard.DefaultMetric)
			},
		},
		{
			name: "yaml overlays only the keys it sets",
			yaml: "server:\n  port: 9090\n  read_timeout: 5s\ndashboard:\n  default_top_n: 15\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 15, cfg.Dashboard.DefaultTopN)
				assert.Equal(t, 8, cfg.Dashboard.LineTopK)
			},
		},
		{
			name: "env wins over yaml",
			yaml: "server:\n  port: 9090\n",
			env: map[string]string{
				"SALES_SERVER_PORT":              "7070",
				"SALES_DASHBOARD_MIN_BASE_UNITS": "250",
				"SALES_PATHS_DATA_DIR":           "/srv/sales",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 250.0, cfg.Dashboard.MinBaseUnits)
				assert.Equal(t, "/srv/sales", cfg.Paths.DataDir)
			},
		},
		{
			name: "comma separated origins",
			env: map[string]string{
				"SALES_SECURITY_ALLOWED_ORIGINS": "http://a.test,http://b.test",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"SALES_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "unknown metric",
			yaml:    "dashboard:\n  default_metric: profit\n",
			wantErr: true,
		},
		{
			name:    "unknown heatmap scale",
			env:     map[string]string{"SALES_DASHBOARD_HEATMAP_SCALE": "cubic"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			configFile := ""
			if tt.yaml != "" {
				configFile = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(configFile, []byte(tt.yaml), 0644))
			}

			cfg, err := LoadFrom(configFile)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.BaseDir = base
	cfg.Paths.LogsDir = filepath.Join(base, "abs-logs")

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "reports"), paths.ReportsDir)
	assert.Equal(t, filepath.Join(base, "abs-logs"), paths.LogsDir)
	assert.Equal(t, filepath.Join(base, "reports", FilteredCSVName), paths.GetReportPath(FilteredCSVName))

	require.NoError(t, paths.EnsureDirectories())
	assert.True(t, FileExists(paths.ReportsDir))
	assert.True(t, FileExists(paths.LogsDir))
	assert.False(t, FileExists(paths.DataDir), "data directory is an input and must not be created")
}
