package s3blob

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/alanyoungcy/scoins/internal/domain"
)

const snapshotContentType = "application/json"

// SnapshotStore implements domain.SnapshotStore with a single object.
type SnapshotStore struct {
	reader domain.BlobReader
	writer domain.BlobWriter
	key    string
}

// NewSnapshotStore stores the listing snapshot under key in the client's
// bucket.
func NewSnapshotStore(c *Client, key string) *SnapshotStore {
	return newSnapshotStore(NewReader(c), NewWriter(c), key)
}

func newSnapshotStore(r domain.BlobReader, w domain.BlobWriter, key string) *SnapshotStore {
	return &SnapshotStore{reader: r, writer: w, key: key}
}

// Read downloads the snapshot object.
func (s *SnapshotStore) Read(ctx context.Context) ([]byte, error) {
	body, err := s.reader.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("s3blob: read %s: %w", s.key, err)
	}
	return data, nil
}

// Write replaces the snapshot object. Documents above the multipart
// threshold go through the upload manager.
func (s *SnapshotStore) Write(ctx context.Context, data []byte) error {
	if int64(len(data)) > minPartSize {
		return s.writer.PutMultipart(ctx, s.key, bytes.NewReader(data), snapshotContentType, minPartSize)
	}
	return s.writer.Put(ctx, s.key, bytes.NewReader(data), snapshotContentType)
}

// Compile-time interface checks.
var (
	_ domain.SnapshotStore = (*SnapshotStore)(nil)
	_ domain.BlobReader    = (*Reader)(nil)
	_ domain.BlobWriter    = (*Writer)(nil)
)
