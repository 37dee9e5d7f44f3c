package store

import "context"

// Backend is the durable target for a collection: one serialized JSON array
// per collection name, overwritten whole on every write.
//
// Read distinguishes "the collection has never been written" (nil, false, nil)
// from a fetch failure (nil, false, err). Callers must not collapse the two:
// a transient network fault is not an empty collection.
type Backend interface {
	Read(ctx context.Context, name string) (data []byte, found bool, err error)
	Write(ctx context.Context, name string, data []byte) error

	// Remote reports whether reads cross a network. The store only layers
	// its snapshot cache in front of remote backends.
	Remote() bool
}
