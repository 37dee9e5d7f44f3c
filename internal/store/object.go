package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/oybekdev/shopcore/pkg/retry"
)

// ObjectBackendConfig configures the remote object-storage backend.
type ObjectBackendConfig struct {
	Bucket    string
	OpTimeout time.Duration
	Retry     retry.Config
}

// ObjectBackend persists each collection as one object at db/<name>.json in a
// JetStream ObjectStore bucket, overwritten in place on every write. Every
// remote operation runs under a per-operation timeout with exponential
// backoff so a stalled fetch cannot block a request indefinitely.
type ObjectBackend struct {
	bucket    jetstream.ObjectStore
	opTimeout time.Duration
	retryCfg  retry.Config
}

// NewObjectBackend connects the backend to its bucket, creating it if needed.
func NewObjectBackend(ctx context.Context, nc *nats.Conn, cfg *ObjectBackendConfig) (*ObjectBackend, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	bucket, err := js.CreateOrUpdateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      cfg.Bucket,
		Description: "collection documents, one JSON array per collection",
	})
	if err != nil {
		return nil, fmt.Errorf("object store bucket %s: %w", cfg.Bucket, err)
	}

	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = 10 * time.Second
	}
	retryCfg := cfg.Retry
	if retryCfg.MaxAttempts == 0 {
		retryCfg = retry.DefaultConfig()
	}

	return &ObjectBackend{bucket: bucket, opTimeout: opTimeout, retryCfg: retryCfg}, nil
}

func objectKey(name string) string {
	return "db/" + name + ".json"
}

func (b *ObjectBackend) Read(ctx context.Context, name string) ([]byte, bool, error) {
	var data []byte
	found := true

	err := retry.Do(ctx, b.retryCfg, func() error {
		opCtx, cancel := context.WithTimeout(ctx, b.opTimeout)
		defer cancel()

		var err error
		data, err = b.bucket.GetBytes(opCtx, objectKey(name))
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			// Confirmed absent, not a fault.
			data, found = nil, false
			return nil
		}
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("fetch collection object %s: %w", name, err)
	}
	return data, found, nil
}

func (b *ObjectBackend) Write(ctx context.Context, name string, data []byte) error {
	meta := jetstream.ObjectMeta{
		Name:    objectKey(name),
		Headers: nats.Header{"Content-Type": []string{"application/json"}},
	}

	err := retry.Do(ctx, b.retryCfg, func() error {
		opCtx, cancel := context.WithTimeout(ctx, b.opTimeout)
		defer cancel()

		_, err := b.bucket.Put(opCtx, meta, bytes.NewReader(data))
		return err
	})
	if err != nil {
		return fmt.Errorf("put collection object %s: %w", name, err)
	}
	return nil
}

func (b *ObjectBackend) Remote() bool { return true }
