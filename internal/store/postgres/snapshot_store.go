package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/scoins/internal/domain"
)

// SnapshotStore implements domain.SnapshotStore as one JSONB row in
// marketplace_snapshots, keyed by name.
type SnapshotStore struct {
	pool *pgxpool.Pool
	name string
}

// NewSnapshotStore creates a SnapshotStore for the named snapshot row.
func NewSnapshotStore(pool *pgxpool.Pool, name string) *SnapshotStore {
	return &SnapshotStore{pool: pool, name: name}
}

// Read returns the stored document, or domain.ErrNotFound if the row does
// not exist yet.
func (s *SnapshotStore) Read(ctx context.Context) ([]byte, error) {
	const query = `SELECT document FROM marketplace_snapshots WHERE name = $1`

	var doc []byte
	if err := s.pool.QueryRow(ctx, query, s.name).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("postgres: snapshot %s: %w", s.name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("postgres: read snapshot %s: %w", s.name, err)
	}
	return doc, nil
}

// Write upserts the document.
func (s *SnapshotStore) Write(ctx context.Context, data []byte) error {
	const query = `
		INSERT INTO marketplace_snapshots (name, document, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (name) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`

	if _, err := s.pool.Exec(ctx, query, s.name, string(data)); err != nil {
		return fmt.Errorf("postgres: write snapshot %s: %w", s.name, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SnapshotStore = (*SnapshotStore)(nil)
