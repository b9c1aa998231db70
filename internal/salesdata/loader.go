package salesdata

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Kalmbyy/retail-dashboard/internal/infrastructure"
)

// TableLoader reads one source file into a RawTable
type TableLoader interface {
	Load(ctx context.Context, path string) (*RawTable, error)
}

// TableLoaderFunc adapts a function to TableLoader
type TableLoaderFunc func(ctx context.Context, path string) (*RawTable, error)

// Load calls f
func (f TableLoaderFunc) Load(ctx context.Context, path string) (*RawTable, error) {
	return f(ctx, path)
}

// DirectLoader reads the file on every call
var DirectLoader TableLoader = TableLoaderFunc(func(_ context.Context, path string) (*RawTable, error) {
	return LoadTable(path)
})

// CacheStats reports the memoization counters of a CachedLoader
type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

type cacheEntry struct {
	size    int64
	modTime time.Time
	table   *RawTable
}

// CachedLoader memoizes parsed tables by path.
// An entry is reused only while the file's size and modification time are unchanged.
// Concurrent loads of the same path share a single read.
// Cached tables are shared between callers and must be treated as read-only.
type CachedLoader struct {
	read    func(path string) (*RawTable, error)
	metrics *infrastructure.PipelineMetrics

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedLoader creates a loader backed by LoadTable
func NewCachedLoader(metrics *infrastructure.PipelineMetrics) *CachedLoader {
	return &CachedLoader{
		read:    LoadTable,
		metrics: metrics,
		entries: make(map[string]cacheEntry),
	}
}

// Load returns the table for path, reading it only when the cache is stale
func (l *CachedLoader) Load(ctx context.Context, path string) (*RawTable, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	l.mu.RLock()
	entry, ok := l.entries[path]
	l.mu.RUnlock()

	if ok && entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
		l.hits.Add(1)
		l.metrics.RecordCache(ctx, true)
		return entry.table, nil
	}

	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	ch := l.group.DoChan(key, func() (interface{}, error) {
		l.misses.Add(1)
		l.metrics.RecordCache(ctx, false)

		table, err := l.read(path)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.entries[path] = cacheEntry{size: info.Size(), modTime: info.ModTime(), table: table}
		l.mu.Unlock()
		return table, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*RawTable), nil
	}
}

// Invalidate drops the entry for path
func (l *CachedLoader) Invalidate(path string) {
	l.mu.Lock()
	delete(l.entries, path)
	l.mu.Unlock()
}

// Purge drops every entry and resets the counters
func (l *CachedLoader) Purge() {
	l.mu.Lock()
	l.entries = make(map[string]cacheEntry)
	l.mu.Unlock()
	l.hits.Store(0)
	l.misses.Store(0)
}

// Stats returns the current counters
func (l *CachedLoader) Stats() CacheStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return CacheStats{
		Hits:    l.hits.Load(),
		Misses:  l.misses.Load(),
		Entries: len(l.entries),
	}
}
