package exporter

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPDFRendererDefaults(t *testing.T) {
	r := NewPDFRenderer(nil, 0)
	assert.Equal(t, time.Minute, r.timeout)
	assert.True(t, r.landscape)
	assert.NotNil(t, r.logger)
}

func TestPDFRendererRender(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if _, ok := FindChrome(); !ok {
		t.Skip("chrome is not installed")
	}

	r := NewPDFRenderer(nil, 30*time.Second)
	r.settle = 0

	pdf, err := r.Render(context.Background(), []byte("<html><body><h1>Retail</h1></body></html>"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
