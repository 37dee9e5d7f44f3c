// Package lock provides named mutual exclusion for read-modify-write cycles.
//
// The in-process Locker covers a single server instance. When several
// instances share one backing medium, use the Redis-backed Locker so the
// check-then-write sequences in the inventory ledger exclude each other
// across processes.
package lock

import (
	"context"
	"sync"
	"time"
)

// Locker is the contract the ledger uses to guard a stock mutation.
// Acquire returns false (not an error) when the lock is currently held.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

type localEntry struct {
	value     string
	expiresAt time.Time
}

// LocalLocker implements Locker with process-local state.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]localEntry
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]localEntry)}
}

func (l *LocalLocker) AcquireLock(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.locks[key]; ok && time.Now().Before(entry.expiresAt) {
		return false, nil
	}
	l.locks[key] = localEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return true, nil
}

func (l *LocalLocker) ReleaseLock(_ context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Only the holder may release.
	if entry, ok := l.locks[key]; ok && entry.value == value {
		delete(l.locks, key)
	}
	return nil
}
