package s3blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/scoins/internal/domain"
)

type fakeBlobs struct {
	objects   map[string][]byte
	puts      int
	multipart int
	partSize  int64
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (f *fakeBlobs) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("fake: %s: %w", key, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlobs) Put(ctx context.Context, key string, data io.Reader, contentType string) error {
	f.puts++
	return f.store(key, data)
}

func (f *fakeBlobs) PutMultipart(ctx context.Context, key string, data io.Reader, contentType string, partSize int64) error {
	f.multipart++
	f.partSize = partSize
	return f.store(key, data)
}

func (f *fakeBlobs) store(key string, data io.Reader) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[key] = b
	return nil
}

func TestSnapshotStore_ReadMissingObject(t *testing.T) {
	blobs := newFakeBlobs()
	s := newSnapshotStore(blobs, blobs, "marketplace/data.json")

	_, err := s.Read(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSnapshotStore_WriteThenRead(t *testing.T) {
	blobs := newFakeBlobs()
	s := newSnapshotStore(blobs, blobs, "marketplace/data.json")

	doc := []byte(`[{"globalId":"demo_1"}]`)
	require.NoError(t, s.Write(context.Background(), doc))

	got, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, doc, got)
	assert.Equal(t, 1, blobs.puts)
	assert.Zero(t, blobs.multipart)
}

func TestSnapshotStore_LargeDocumentUsesMultipart(t *testing.T) {
	blobs := newFakeBlobs()
	s := newSnapshotStore(blobs, blobs, "big.json")

	doc := bytes.Repeat([]byte("a"), int(minPartSize)+1)
	require.NoError(t, s.Write(context.Background(), doc))

	assert.Zero(t, blobs.puts)
	assert.Equal(t, 1, blobs.multipart)
	assert.Equal(t, minPartSize, blobs.partSize)
	assert.Len(t, blobs.objects["big.json"], len(doc))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(fmt.Errorf("get: %w", &types.NoSuchKey{})))
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.False(t, isNotFound(errors.New("access denied")))
}

func TestNormaliseEndpoint(t *testing.T) {
	assert.Equal(t, "https://s3.example.com", normaliseEndpoint("https://s3.example.com", false))
	assert.Equal(t, "http://minio:9000", normaliseEndpoint("http://minio:9000", true))
	assert.Equal(t, "https://s3.example.com", normaliseEndpoint("s3.example.com", true))
	assert.Equal(t, "http://localhost:9000", normaliseEndpoint("localhost:9000", false))
}
