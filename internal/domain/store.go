package domain

import "context"

// SnapshotStore persists the whole listing collection as a single document.
// Read returns ErrNotFound when no document has been written yet.
type SnapshotStore interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}
