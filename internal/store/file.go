package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend persists each collection as <dataRoot>/collections/<name>.json.
type FileBackend struct {
	dir string
}

// NewFileBackend ensures the data directory layout exists and returns a
// backend rooted at it.
func NewFileBackend(dataRoot string) (*FileBackend, error) {
	dir := filepath.Join(dataRoot, "collections")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create collections dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, name+".json")
}

func (b *FileBackend) Read(_ context.Context, name string) ([]byte, bool, error) {
	data, err := os.ReadFile(b.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read collection file %s: %w", name, err)
	}
	return data, true, nil
}

func (b *FileBackend) Write(_ context.Context, name string, data []byte) error {
	if err := os.WriteFile(b.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write collection file %s: %w", name, err)
	}
	return nil
}

func (b *FileBackend) Remote() bool { return false }
