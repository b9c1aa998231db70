package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalmbyy/retail-dashboard/internal/config"
)

type fakeDataset struct {
	loaded   bool
	loadedAt time.Time
}

func (f fakeDataset) Loaded() bool        { return f.loaded }
func (f fakeDataset) LoadedAt() time.Time { return f.loadedAt }

func TestHealthServiceReadiness(t *testing.T) {
	dataDir := t.TempDir()

	tests := []struct {
		name       string
		paths      *config.Paths
		dataset    DatasetState
		wantStatus string
		notReady   []string
	}{
		{
			name:       "ready",
			paths:      &config.Paths{DataDir: dataDir},
			dataset:    fakeDataset{loaded: true, loadedAt: time.Now()},
			wantStatus: "ready",
		},
		{
			name:       "no dataset",
			paths:      &config.Paths{DataDir: dataDir},
			dataset:    fakeDataset{},
			wantStatus: "not_ready",
			notReady:   []string{"dataset"},
		},
		{
			name:       "missing data dir",
			paths:      &config.Paths{DataDir: filepath.Join(dataDir, "missing")},
			dataset:    fakeDataset{loaded: true, loadedAt: time.Now()},
			wantStatus: "not_ready",
			notReady:   []string{"data_dir"},
		},
		{
			name:       "nothing configured",
			wantStatus: "not_ready",
			notReady:   []string{"data_dir", "dataset"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := new(MockWebSocketHub)
			hub.On("ClientCount").Return(3)

			hs := NewHealthService(BuildInfo{Version: "1.2.3"}, tt.paths, tt.dataset, hub, nil)
			status := hs.ReadinessCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, "1.2.3", status.Version)
			for _, name := range tt.notReady {
				sh, ok := status.Services[name].(ServiceHealth)
				require.True(t, ok, name)
				assert.Equal(t, "not_ready", sh.Status, name)
			}

			ws := status.Services["websocket"].(ServiceHealth)
			assert.Contains(t, ws.Message, "3 clients")
		})
	}
}

func TestHealthServiceLivenessAndVersion(t *testing.T) {
	hs := NewHealthService(BuildInfo{Version: "dev", BuildID: "abc123"}, nil, nil, nil, nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	assert.Equal(t, "ok", hs.HealthCheck(context.Background()).Status)

	version := hs.Version()
	assert.Equal(t, "dev", version["version"])
	assert.Equal(t, "abc123", version["build_id"])
	assert.NotContains(t, version, "build_time")
}
