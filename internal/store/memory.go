package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps collections in process memory. It backs unit tests for
// the store and for everything layered on it; the remote flag lets tests
// exercise the snapshot cache path without a real object store.
type MemoryBackend struct {
	mu      sync.Mutex
	data    map[string][]byte
	remote  bool
	reads   int
	ReadErr error // when set, Read fails with this error
}

func NewMemoryBackend(remote bool) *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte), remote: remote}
}

func (b *MemoryBackend) Read(_ context.Context, name string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.reads++
	if b.ReadErr != nil {
		return nil, false, b.ReadErr
	}
	data, ok := b.data[name]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (b *MemoryBackend) Write(_ context.Context, name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	b.data[name] = stored
	return nil
}

func (b *MemoryBackend) Remote() bool { return b.remote }

// Reads reports how many Read calls reached the backend, cache hits excluded.
func (b *MemoryBackend) Reads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads
}
