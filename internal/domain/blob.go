package domain

import (
	"context"
	"io"
)

// BlobWriter uploads data to object storage.
type BlobWriter interface {
	Put(ctx context.Context, key string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, key string, data io.Reader, contentType string, partSize int64) error
}

// BlobReader retrieves data from object storage. A missing object yields
// ErrNotFound.
type BlobReader interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
