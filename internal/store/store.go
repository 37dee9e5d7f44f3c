// Package store makes a set of whole-collection JSON documents behave like a
// small document store: named collections of records with a unique id,
// CRUD and predicate queries, a short-TTL read cache in front of remote
// backends, and per-collection write serialization within the process.
//
// Every write is a read-entire-collection, mutate, write-entire-collection
// cycle. The per-collection mutex removes lost updates between goroutines of
// one process; across processes the last full-collection write still wins.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/oybekdev/shopcore/pkg/logger"
)

// Predicate filters records during Find/FindOne/Count.
type Predicate func(Record) bool

// Store provides durable CRUD over named collections. Collection names are
// free text; callers define which names exist and wrap the untyped API in
// typed Collection views.
type Store struct {
	backend Backend
	cache   *snapshotCache
	logger  logger.ZapLogger

	mu      sync.Mutex
	writeMu map[string]*sync.Mutex
}

type Option func(*Store)

// WithCacheTTL overrides the snapshot cache TTL (remote backends only).
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if s.cache != nil {
			s.cache.ttl = ttl
		}
	}
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log logger.ZapLogger) Option {
	return func(s *Store) { s.logger = log.Named("store") }
}

// WithMetrics registers snapshot cache metrics on the given registry.
func WithMetrics(reg prometheus.Registerer, prefix string) Option {
	return func(s *Store) {
		if s.cache == nil {
			return
		}
		m, err := newCacheMetrics(reg, prefix)
		if err != nil {
			s.logger.Warn("cache metrics disabled", zap.Error(err))
			return
		}
		s.cache.metrics = m
	}
}

// New builds a store over the given backend. The snapshot cache is only
// created for remote backends; local file reads are cheap enough to repeat.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  logger.NewNop(),
		writeMu: make(map[string]*sync.Mutex),
	}
	if backend.Remote() {
		s.cache = newSnapshotCache(DefaultCacheTTL)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// collectionMu returns the write mutex for a collection, creating it lazily.
func (s *Store) collectionMu(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.writeMu[name]
	if !ok {
		mu = &sync.Mutex{}
		s.writeMu[name] = mu
	}
	return mu
}

// read loads the full record list for a collection, consulting the snapshot
// cache for remote backends. A missing collection reads as empty; a fetch
// failure or corrupt payload is an error, never silently empty.
func (s *Store) read(ctx context.Context, name string) ([]Record, error) {
	if s.cache != nil {
		if recs, ok := s.cache.get(name); ok {
			return recs, nil
		}
	}

	data, found, err := s.backend.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", name, err)
	}

	var recs []Record
	if found {
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("collection %s: corrupt payload: %w", name, err)
		}
	}
	if recs == nil {
		recs = []Record{}
	}

	if s.cache != nil {
		s.cache.set(name, recs)
	}
	return recs, nil
}

// write persists the full record list and refreshes the cache entry, so
// readers in this process always observe their own writes.
func (s *Store) write(ctx context.Context, name string, recs []Record) error {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("collection %s: encode: %w", name, err)
	}
	if err := s.backend.Write(ctx, name, data); err != nil {
		return fmt.Errorf("collection %s: %w", name, err)
	}
	if s.cache != nil {
		s.cache.set(name, recs)
	}
	return nil
}

// GetAll returns every record in the collection, empty slice if it has never
// been written. Order follows the persisted array; callers re-sort as needed.
func (s *Store) GetAll(ctx context.Context, name string) ([]Record, error) {
	return s.read(ctx, name)
}

// GetByID returns the record with the given id, or nil when absent.
func (s *Store) GetByID(ctx context.Context, name, id string) (Record, error) {
	recs, err := s.read(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if rec.ID() == id {
			return rec, nil
		}
	}
	return nil, nil
}

// Create inserts the record, assigning an id when absent. When a record with
// the same id already exists, Create merges into it instead of rejecting the
// duplicate (upsert); import and reseed flows depend on that.
func (s *Store) Create(ctx context.Context, name string, rec Record) (Record, error) {
	mu := s.collectionMu(name)
	mu.Lock()
	defer mu.Unlock()

	rec = rec.clone()
	if rec.ID() == "" {
		rec["id"] = NewID()
	}

	recs, err := s.read(ctx, name)
	if err != nil {
		return nil, err
	}

	id := rec.ID()
	for i, existing := range recs {
		if existing.ID() == id {
			recs[i] = merge(existing, rec, id)
			if err := s.write(ctx, name, recs); err != nil {
				return nil, err
			}
			s.logger.Debug("record upserted", zap.String("collection", name), zap.String("id", id))
			return recs[i].clone(), nil
		}
	}

	recs = append(recs, rec)
	if err := s.write(ctx, name, recs); err != nil {
		return nil, err
	}
	s.logger.Debug("record created", zap.String("collection", name), zap.String("id", id))
	return rec.clone(), nil
}

// Update shallow-merges partial over the existing record. The id always keeps
// its original value, even when partial carries a different one. Returns nil
// when no record with the id exists; there is no implicit creation.
func (s *Store) Update(ctx context.Context, name, id string, partial Record) (Record, error) {
	mu := s.collectionMu(name)
	mu.Lock()
	defer mu.Unlock()

	recs, err := s.read(ctx, name)
	if err != nil {
		return nil, err
	}

	for i, existing := range recs {
		if existing.ID() == id {
			recs[i] = merge(existing, partial, id)
			if err := s.write(ctx, name, recs); err != nil {
				return nil, err
			}
			return recs[i].clone(), nil
		}
	}
	return nil, nil
}

// Remove deletes the record if present and reports whether a deletion
// happened. Removing an absent id leaves the collection untouched.
func (s *Store) Remove(ctx context.Context, name, id string) (bool, error) {
	mu := s.collectionMu(name)
	mu.Lock()
	defer mu.Unlock()

	recs, err := s.read(ctx, name)
	if err != nil {
		return false, err
	}

	for i, existing := range recs {
		if existing.ID() == id {
			recs = append(recs[:i], recs[i+1:]...)
			if err := s.write(ctx, name, recs); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Find returns all records matching the predicate. Every query is a full
// scan; there are no indexes.
func (s *Store) Find(ctx context.Context, name string, pred Predicate) ([]Record, error) {
	recs, err := s.read(ctx, name)
	if err != nil {
		return nil, err
	}
	out := []Record{}
	for _, rec := range recs {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FindOne returns the first matching record, or nil when none matches.
func (s *Store) FindOne(ctx context.Context, name string, pred Predicate) (Record, error) {
	recs, err := s.read(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if pred(rec) {
			return rec, nil
		}
	}
	return nil, nil
}

// Count counts matching records; a nil predicate counts everything.
func (s *Store) Count(ctx context.Context, name string, pred Predicate) (int, error) {
	recs, err := s.read(ctx, name)
	if err != nil {
		return 0, err
	}
	if pred == nil {
		return len(recs), nil
	}
	n := 0
	for _, rec := range recs {
		if pred(rec) {
			n++
		}
	}
	return n, nil
}

// ClearCache drops the cached snapshot so the next read hits the backing
// medium, e.g. after an out-of-band import by another process.
func (s *Store) ClearCache(name string) {
	if s.cache != nil {
		s.cache.invalidate(name)
	}
}

// CachedSnapshot returns the last cached record list without touching the
// backing medium, possibly empty when nothing has been read yet. It exists
// for callers that need a non-blocking degraded read; regular reads should
// use GetAll.
func (s *Store) CachedSnapshot(name string) []Record {
	if s.cache == nil {
		return []Record{}
	}
	recs, ok := s.cache.peek(name)
	if !ok {
		return []Record{}
	}
	return recs
}
