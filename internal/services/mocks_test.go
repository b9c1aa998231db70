package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Kalmbyy/retail-dashboard/internal/salesdata"
)

// MockWebSocketHub is a mock for WebSocketHub interface
type MockWebSocketHub struct {
	mock.Mock
}

func (m *MockWebSocketHub) Broadcast(messageType string, data interface{}) {
	m.Called(messageType, data)
}

func (m *MockWebSocketHub) ClientCount() int {
	args := m.Called()
	return args.Int(0)
}

// MockMerger is a mock for DatasetMerger
type MockMerger struct {
	mock.Mock
}

func (m *MockMerger) MergeFolder(ctx context.Context, dir string) (*salesdata.Dataset, error) {
	args := m.Called(ctx, dir)
	ds, _ := args.Get(0).(*salesdata.Dataset)
	return ds, args.Error(1)
}

// blockingMerger holds MergeFolder until release is closed
type blockingMerger struct {
	started chan struct{}
	release chan struct{}
	dataset *salesdata.Dataset
}

func (b *blockingMerger) MergeFolder(ctx context.Context, _ string) (*salesdata.Dataset, error) {
	close(b.started)
	select {
	case <-b.release:
		return b.dataset, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		return b.dataset, nil
	}
}
