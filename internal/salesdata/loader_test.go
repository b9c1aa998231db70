package salesdata

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalmbyy/retail-dashboard/internal/shared/testutil"
)

func TestCachedLoaderHitAndRevalidate(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteRaw(t, dir, "2020_data.csv", "Brand,Retail\nToyota,1\n")

	loader := NewCachedLoader(nil)
	ctx := context.Background()

	first, err := loader.Load(ctx, path)
	require.NoError(t, err)
	second, err := loader.Load(ctx, path)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, CacheStats{Hits: 1, Misses: 1, Entries: 1}, loader.Stats())

	require.NoError(t, os.WriteFile(path, []byte("Brand,Retail\nToyota,1\nHonda,2\n"), 0644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	third, err := loader.Load(ctx, path)
	require.NoError(t, err)
	assert.Len(t, third.Rows, 2)
	assert.Equal(t, int64(2), loader.Stats().Misses)

	loader.Invalidate(path)
	assert.Zero(t, loader.Stats().Entries)

	loader.Purge()
	assert.Equal(t, CacheStats{}, loader.Stats())
}

func TestCachedLoaderSharesConcurrentLoads(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteRaw(t, dir, "2021_data.csv", "Brand,Retail\nToyota,1\n")

	var reads atomic.Int32
	release := make(chan struct{})
	loader := NewCachedLoader(nil)
	loader.read = func(p string) (*RawTable, error) {
		reads.Add(1)
		<-release
		return LoadTable(p)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := loader.Load(context.Background(), path)
			assert.NoError(t, err)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), reads.Load())
}

func TestCachedLoaderErrors(t *testing.T) {
	loader := NewCachedLoader(nil)

	_, err := loader.Load(context.Background(), "/does/not/exist.csv")
	assert.Error(t, err)

	dir := t.TempDir()
	path := testutil.WriteRaw(t, dir, "2020_data.csv", "Brand,Retail\n")
	loader.read = func(string) (*RawTable, error) {
		time.Sleep(time.Second)
		return nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = loader.Load(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
