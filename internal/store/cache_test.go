package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedStore(t *testing.T, ttl time.Duration) (*Store, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend(true)
	return New(backend, WithCacheTTL(ttl)), backend
}

func TestCacheServesRepeatReadsWithinTTL(t *testing.T) {
	s, backend := newCachedStore(t, time.Second)
	ctx := context.Background()

	_, err := s.Create(ctx, "products", Record{"id": "P1", "name": "hoodie"})
	require.NoError(t, err)
	readsAfterWrite := backend.Reads()

	first, err := s.GetAll(ctx, "products")
	require.NoError(t, err)
	second, err := s.GetAll(ctx, "products")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Both reads were served from the snapshot taken at write time.
	assert.Equal(t, readsAfterWrite, backend.Reads())
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	s, backend := newCachedStore(t, 30*time.Millisecond)
	ctx := context.Background()

	_, err := s.Create(ctx, "products", Record{"id": "P1"})
	require.NoError(t, err)
	readsAfterWrite := backend.Reads()

	time.Sleep(50 * time.Millisecond)

	_, err = s.GetAll(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, readsAfterWrite+1, backend.Reads())
}

func TestReadAfterWriteReflectsWrite(t *testing.T) {
	s, _ := newCachedStore(t, time.Hour)
	ctx := context.Background()

	_, err := s.Create(ctx, "products", Record{"id": "P1", "stock": 5.0})
	require.NoError(t, err)
	_, err = s.Update(ctx, "products", "P1", Record{"stock": 3.0})
	require.NoError(t, err)

	got, err := s.GetByID(ctx, "products", "P1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3.0, got["stock"])
}

func TestClearCacheForcesRefetch(t *testing.T) {
	s, backend := newCachedStore(t, time.Hour)
	ctx := context.Background()

	_, err := s.GetAll(ctx, "products")
	require.NoError(t, err)
	reads := backend.Reads()

	// Fresh entry, no refetch.
	_, err = s.GetAll(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, reads, backend.Reads())

	s.ClearCache("products")
	_, err = s.GetAll(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, reads+1, backend.Reads())
}

func TestCachedSnapshot(t *testing.T) {
	s, _ := newCachedStore(t, time.Hour)
	ctx := context.Background()

	// Nothing read yet: degraded read reports empty, does not touch the backend.
	assert.Empty(t, s.CachedSnapshot("products"))

	_, err := s.Create(ctx, "products", Record{"id": "P1"})
	require.NoError(t, err)

	snapshot := s.CachedSnapshot("products")
	require.Len(t, snapshot, 1)
	assert.Equal(t, "P1", snapshot[0].ID())
}

func TestCachedSnapshotLocalModeIsEmpty(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	s := New(backend)

	_, err = s.Create(context.Background(), "products", Record{"id": "P1"})
	require.NoError(t, err)
	assert.Empty(t, s.CachedSnapshot("products"))
}

func TestFetchFailureIsNotEmpty(t *testing.T) {
	backend := NewMemoryBackend(true)
	s := New(backend)
	ctx := context.Background()

	backend.ReadErr = errors.New("connection reset")
	_, err := s.GetAll(ctx, "products")
	require.Error(t, err)

	// Once the backend recovers, reads work again.
	backend.ReadErr = nil
	all, err := s.GetAll(ctx, "products")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCacheMetricsRegister(t *testing.T) {
	backend := NewMemoryBackend(true)
	reg := prometheus.NewRegistry()
	s := New(backend, WithMetrics(reg, "shopcore"))

	_, err := s.GetAll(context.Background(), "products")
	require.NoError(t, err)
	_, err = s.GetAll(context.Background(), "products")
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["shopcore_cache_hits_total"])
	assert.True(t, names["shopcore_cache_misses_total"])
}
