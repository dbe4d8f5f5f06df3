package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/scoins/internal/domain"
)

func TestSnapshotStore_ReadMissingFile(t *testing.T) {
	s := NewSnapshotStore(filepath.Join(t.TempDir(), "marketplace-data.json"))

	_, err := s.Read(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSnapshotStore_WriteCreatesDirAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "marketplace-data.json")
	s := NewSnapshotStore(path)
	assert.Equal(t, path, s.Path())

	require.NoError(t, s.Write(context.Background(), []byte(`[{"globalId":"a"},{"globalId":"b"}]`)))
	require.NoError(t, s.Write(context.Background(), []byte(`[]`)))

	got, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got), "writes replace the whole file")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestSnapshotStore_ReadDirectoryFails(t *testing.T) {
	s := NewSnapshotStore(t.TempDir())

	_, err := s.Read(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
