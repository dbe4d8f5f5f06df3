package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/scoins/internal/domain"
	"github.com/alanyoungcy/scoins/internal/notify"
)

// Bus channel and stream carrying listing events.
const (
	ListingChannel = "ch:marketplace"
	ListingStream  = "marketplace:events"
)

// ListingStore is the subset of the listing store the service relies on.
type ListingStore interface {
	List(ctx context.Context) ([]domain.Listing, error)
	Count(ctx context.Context) int
	Create(ctx context.Context, candidate domain.Listing) (domain.Listing, error)
	Remove(ctx context.Context, id, requesterID string) (domain.Listing, error)
}

// Alerter raises operator notifications.
type Alerter interface {
	Notify(ctx context.Context, event, title, message string) error
}

// ListingService fronts the listing store for the transport layer and fans
// out an event after every successful mutation.
type ListingService struct {
	store  ListingStore
	bus    domain.SignalBus
	alerts Alerter
	logger *slog.Logger
	now    func() time.Time
}

// NewListingService creates a ListingService. bus and alerts may be nil.
func NewListingService(store ListingStore, bus domain.SignalBus, alerts Alerter, logger *slog.Logger) *ListingService {
	return &ListingService{
		store:  store,
		bus:    bus,
		alerts: alerts,
		logger: logger.With(slog.String("component", "listing_service")),
		now:    time.Now,
	}
}

// List returns every listing in collection order.
func (s *ListingService) List(ctx context.Context) ([]domain.Listing, error) {
	listings, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing_service: list: %w", err)
	}
	return listings, nil
}

// Count returns the number of listings.
func (s *ListingService) Count(ctx context.Context) int {
	return s.store.Count(ctx)
}

// Create stores a new listing and announces it.
func (s *ListingService) Create(ctx context.Context, candidate domain.Listing) (domain.Listing, error) {
	listing, err := s.store.Create(ctx, candidate)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("listing_service: create: %w", err)
	}

	s.announce(ctx, domain.ListingCreated, listing)
	s.alert(ctx, notify.EventListingCreated, "New listing",
		fmt.Sprintf("%s listed %s for %g", sellerLabel(listing), listing.GlobalID, listing.Price))
	return listing, nil
}

// Remove deletes a listing owned by requesterID and announces it.
func (s *ListingService) Remove(ctx context.Context, id, requesterID string) error {
	removed, err := s.store.Remove(ctx, id, requesterID)
	if err != nil {
		return fmt.Errorf("listing_service: remove: %w", err)
	}

	s.announce(ctx, domain.ListingRemoved, removed)
	s.alert(ctx, notify.EventListingRemoved, "Listing removed",
		fmt.Sprintf("%s removed %s", sellerLabel(removed), removed.GlobalID))
	return nil
}

// StorageFailed reports a failed snapshot write to operators. It is meant
// to be registered as the store's persist failure hook.
func (s *ListingService) StorageFailed(ctx context.Context, err error) {
	s.alert(ctx, notify.EventStorageFailure, "Marketplace storage failure",
		"listings could not be persisted: "+err.Error())
}

// announce publishes the event on the bus and appends it to the event
// stream. Failures are logged only.
func (s *ListingService) announce(ctx context.Context, typ domain.ListingEventType, listing domain.Listing) {
	if s.bus == nil {
		return
	}

	payload, err := json.Marshal(domain.ListingEvent{
		Type:    typ,
		Listing: listing,
		At:      s.now().UTC(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "marshal listing event failed",
			slog.String("global_id", listing.GlobalID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.bus.Publish(ctx, ListingChannel, payload); err != nil {
		s.logger.WarnContext(ctx, "publish listing event failed",
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
	}
	if err := s.bus.StreamAppend(ctx, ListingStream, payload); err != nil {
		s.logger.WarnContext(ctx, "append listing event failed",
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *ListingService) alert(ctx context.Context, event, title, message string) {
	if s.alerts == nil {
		return
	}
	if err := s.alerts.Notify(ctx, event, title, message); err != nil {
		s.logger.WarnContext(ctx, "notification failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

func sellerLabel(l domain.Listing) string {
	if l.SellerName != "" {
		return l.SellerName
	}
	return l.SellerID
}
