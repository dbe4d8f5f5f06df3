// Package marketplace owns the listing collection: it generates identifiers,
// validates new listings, enforces ownership on removal and keeps the
// in-memory collection synchronized with a durable snapshot.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alanyoungcy/scoins/internal/domain"
)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock used for timestamps and ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithPersistFailureHook registers a callback invoked whenever a snapshot
// write fails. The failure is still logged and swallowed.
func WithPersistFailureHook(hook func(ctx context.Context, err error)) Option {
	return func(s *Store) { s.onPersistFailure = hook }
}

// Store is the listing store. All operations serialize on a single mutex so
// that each read-modify-write-persist sequence runs to completion before the
// next one starts.
type Store struct {
	snapshots domain.SnapshotStore
	logger    *slog.Logger
	now       func() time.Time

	onPersistFailure func(ctx context.Context, err error)

	mu         sync.Mutex
	listings   []domain.Listing
	loaded     bool
	lastMillis int64
}

// NewStore creates an unloaded Store backed by the given snapshot storage.
// Call Load before serving requests.
func NewStore(snapshots domain.SnapshotStore, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		snapshots: snapshots,
		logger:    logger.With(slog.String("component", "listing_store")),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores the collection from durable storage. Any failure falls back
// to the demo listings; Load never fails.
func (s *Store) Load(ctx context.Context) []domain.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	listings, err := s.readSnapshot(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.logger.InfoContext(ctx, "no stored listings, seeding demo data")
		listings = DemoListings(s.now())
	case err != nil:
		s.logger.ErrorContext(ctx, "stored listings unreadable, seeding demo data",
			slog.String("error", err.Error()),
		)
		listings = DemoListings(s.now())
	default:
		s.logger.InfoContext(ctx, "listings loaded", slog.Int("count", len(listings)))
	}

	s.listings = listings
	s.loaded = true
	return cloneListings(s.listings)
}

func (s *Store) readSnapshot(ctx context.Context) ([]domain.Listing, error) {
	data, err := s.snapshots.Read(ctx)
	if err != nil {
		return nil, err
	}

	var listings []domain.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("%w: parse snapshot: %v", domain.ErrStorageFailure, err)
	}
	if listings == nil {
		return nil, fmt.Errorf("%w: snapshot is not a listing array", domain.ErrStorageFailure)
	}
	return listings, nil
}

// List returns a copy of the collection in insertion order.
func (s *Store) List(ctx context.Context) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return nil, domain.ErrUnavailable
	}
	return cloneListings(s.listings), nil
}

// Count returns the number of listings in the collection.
func (s *Store) Count(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listings)
}

// Create validates the candidate, assigns its id and timestamp, appends it
// and persists the collection. A failed persist leaves the new listing in
// memory.
func (s *Store) Create(ctx context.Context, candidate domain.Listing) (domain.Listing, error) {
	if err := Validate(candidate); err != nil {
		return domain.Listing{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return domain.Listing{}, domain.ErrUnavailable
	}

	millis := s.nextMillis()
	listing := candidate.Clone()
	listing.Timestamp = millis
	listing.GlobalID = GlobalID(candidate.SellerID, millis)

	s.listings = append(s.listings, listing)
	s.persist(ctx)

	s.logger.InfoContext(ctx, "listing created",
		slog.String("global_id", listing.GlobalID),
		slog.String("seller_id", listing.SellerID),
	)
	return listing.Clone(), nil
}

// Remove deletes the listing with the given id when requesterID owns it and
// returns the removed listing.
func (s *Store) Remove(ctx context.Context, id, requesterID string) (domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return domain.Listing{}, domain.ErrUnavailable
	}

	idx := -1
	for i := range s.listings {
		if s.listings[i].GlobalID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domain.Listing{}, fmt.Errorf("marketplace: listing %q: %w", id, domain.ErrNotFound)
	}

	removed := s.listings[idx]
	if requesterID == "" || removed.SellerID != requesterID {
		s.logger.WarnContext(ctx, "remove rejected, requester is not the seller",
			slog.String("global_id", id),
			slog.String("seller_id", removed.SellerID),
			slog.String("requester_id", requesterID),
		)
		return domain.Listing{}, fmt.Errorf("marketplace: listing %q: %w", id, domain.ErrForbidden)
	}

	s.listings = append(s.listings[:idx:idx], s.listings[idx+1:]...)
	s.persist(ctx)

	s.logger.InfoContext(ctx, "listing removed",
		slog.String("global_id", id),
		slog.String("seller_id", removed.SellerID),
	)
	return removed, nil
}

// persist writes the whole collection as an indented JSON array. It must be
// called with mu held.
func (s *Store) persist(ctx context.Context) bool {
	data, err := encodeSnapshot(s.listings)
	if err == nil {
		err = s.snapshots.Write(ctx, data)
	}
	if err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
		s.logger.ErrorContext(ctx, "failed to persist listings",
			slog.Int("count", len(s.listings)),
			slog.String("error", err.Error()),
		)
		if s.onPersistFailure != nil {
			s.onPersistFailure(ctx, err)
		}
		return false
	}
	return true
}

// nextMillis returns the current wall-clock time in milliseconds, clamped so
// it never goes below the previously issued value.
func (s *Store) nextMillis() int64 {
	millis := s.now().UnixMilli()
	if millis < s.lastMillis {
		millis = s.lastMillis
	}
	s.lastMillis = millis
	return millis
}

func encodeSnapshot(listings []domain.Listing) ([]byte, error) {
	if listings == nil {
		listings = []domain.Listing{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(listings); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func cloneListings(in []domain.Listing) []domain.Listing {
	out := make([]domain.Listing, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
