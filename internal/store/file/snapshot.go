// Package file implements domain.SnapshotStore on the local filesystem.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alanyoungcy/scoins/internal/domain"
)

// SnapshotStore keeps the listing collection in a single file that is
// rewritten wholesale on every write.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a SnapshotStore for the file at path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Path returns the snapshot file location.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Read returns the file contents, or domain.ErrNotFound when the file does
// not exist.
func (s *SnapshotStore) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file: read %s: %w", s.path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("file: read %s: %w", s.path, err)
	}
	return data, nil
}

// Write overwrites the file in place. There is no temp-file rename, so a
// crash mid-write can leave a truncated file behind.
func (s *SnapshotStore) Write(ctx context.Context, data []byte) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("file: create dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("file: write %s: %w", s.path, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SnapshotStore = (*SnapshotStore)(nil)
