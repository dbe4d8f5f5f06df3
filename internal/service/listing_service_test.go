package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/scoins/internal/domain"
	"github.com/alanyoungcy/scoins/internal/notify"
)

type MockListingStore struct {
	mock.Mock
}

func (m *MockListingStore) List(ctx context.Context) ([]domain.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *MockListingStore) Count(ctx context.Context) int {
	return m.Called(ctx).Int(0)
}

func (m *MockListingStore) Create(ctx context.Context, candidate domain.Listing) (domain.Listing, error) {
	args := m.Called(ctx, candidate)
	return args.Get(0).(domain.Listing), args.Error(1)
}

func (m *MockListingStore) Remove(ctx context.Context, id, requesterID string) (domain.Listing, error) {
	args := m.Called(ctx, id, requesterID)
	return args.Get(0).(domain.Listing), args.Error(1)
}

type MockSignalBus struct {
	mock.Mock
}

func (m *MockSignalBus) Publish(ctx context.Context, channel string, payload []byte) error {
	return m.Called(ctx, channel, payload).Error(0)
}

func (m *MockSignalBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan []byte), args.Error(1)
}

func (m *MockSignalBus) StreamAppend(ctx context.Context, stream string, payload []byte) error {
	return m.Called(ctx, stream, payload).Error(0)
}

type MockAlerter struct {
	mock.Mock
}

func (m *MockAlerter) Notify(ctx context.Context, event, title, message string) error {
	return m.Called(ctx, event, title, message).Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleListing() domain.Listing {
	return domain.Listing{
		GlobalID:   "global_u1_1700000000000",
		Item:       json.RawMessage(`{"name":"Silver SCoin"}`),
		Price:      40,
		SellerID:   "u1",
		SellerName: "Ivan",
		Timestamp:  1700000000000,
	}
}

// eventOf matches a payload carrying a listing event of the given type.
func eventOf(typ domain.ListingEventType, globalID string) any {
	return mock.MatchedBy(func(payload []byte) bool {
		var ev domain.ListingEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return false
		}
		return ev.Type == typ && ev.Listing.GlobalID == globalID && !ev.At.IsZero()
	})
}

func TestListingService_CreateAnnouncesAndAlerts(t *testing.T) {
	store := new(MockListingStore)
	bus := new(MockSignalBus)
	alerts := new(MockAlerter)
	listing := sampleListing()

	store.On("Create", mock.Anything, mock.Anything).Return(listing, nil)
	bus.On("Publish", mock.Anything, ListingChannel, eventOf(domain.ListingCreated, listing.GlobalID)).Return(nil).Once()
	bus.On("StreamAppend", mock.Anything, ListingStream, eventOf(domain.ListingCreated, listing.GlobalID)).Return(nil).Once()
	alerts.On("Notify", mock.Anything, notify.EventListingCreated, "New listing",
		"Ivan listed global_u1_1700000000000 for 40").Return(nil).Once()

	svc := NewListingService(store, bus, alerts, discardLogger())
	got, err := svc.Create(context.Background(), domain.Listing{SellerID: "u1"})

	require.NoError(t, err)
	assert.Equal(t, listing.GlobalID, got.GlobalID)
	store.AssertExpectations(t)
	bus.AssertExpectations(t)
	alerts.AssertExpectations(t)
}

func TestListingService_CreateInvalidSkipsSideEffects(t *testing.T) {
	store := new(MockListingStore)
	bus := new(MockSignalBus)
	alerts := new(MockAlerter)

	store.On("Create", mock.Anything, mock.Anything).
		Return(domain.Listing{}, fmt.Errorf("marketplace: %w: price is required", domain.ErrInvalidInput))

	svc := NewListingService(store, bus, alerts, discardLogger())
	_, err := svc.Create(context.Background(), domain.Listing{})

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	bus.AssertNotCalled(t, "StreamAppend", mock.Anything, mock.Anything, mock.Anything)
	alerts.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListingService_BusFailuresDoNotFailRequest(t *testing.T) {
	store := new(MockListingStore)
	bus := new(MockSignalBus)
	alerts := new(MockAlerter)
	listing := sampleListing()

	store.On("Remove", mock.Anything, listing.GlobalID, "u1").Return(listing, nil)
	bus.On("Publish", mock.Anything, ListingChannel, mock.Anything).Return(errors.New("redis down"))
	bus.On("StreamAppend", mock.Anything, ListingStream, mock.Anything).Return(errors.New("redis down"))
	alerts.On("Notify", mock.Anything, notify.EventListingRemoved, mock.Anything, mock.Anything).
		Return(errors.New("telegram down"))

	svc := NewListingService(store, bus, alerts, discardLogger())
	require.NoError(t, svc.Remove(context.Background(), listing.GlobalID, "u1"))

	bus.AssertExpectations(t)
	alerts.AssertExpectations(t)
}

func TestListingService_RemoveErrorsPassThrough(t *testing.T) {
	for name, storeErr := range map[string]error{
		"not found": domain.ErrNotFound,
		"forbidden": domain.ErrForbidden,
	} {
		t.Run(name, func(t *testing.T) {
			store := new(MockListingStore)
			store.On("Remove", mock.Anything, "demo_1", "wrong_user").
				Return(domain.Listing{}, fmt.Errorf("marketplace: listing %q: %w", "demo_1", storeErr))

			svc := NewListingService(store, nil, nil, discardLogger())
			err := svc.Remove(context.Background(), "demo_1", "wrong_user")
			assert.ErrorIs(t, err, storeErr)
		})
	}
}

func TestListingService_WithoutBusOrAlerts(t *testing.T) {
	store := new(MockListingStore)
	listing := sampleListing()
	store.On("Create", mock.Anything, mock.Anything).Return(listing, nil)
	store.On("List", mock.Anything).Return([]domain.Listing{listing}, nil)
	store.On("Count", mock.Anything).Return(1)

	svc := NewListingService(store, nil, nil, discardLogger())

	_, err := svc.Create(context.Background(), listing)
	require.NoError(t, err)

	listings, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, listings, 1)
	assert.Equal(t, 1, svc.Count(context.Background()))
}

func TestListingService_ListUnavailable(t *testing.T) {
	store := new(MockListingStore)
	store.On("List", mock.Anything).Return(nil, domain.ErrUnavailable)

	svc := NewListingService(store, nil, nil, discardLogger())
	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestListingService_StorageFailedAlerts(t *testing.T) {
	alerts := new(MockAlerter)
	alerts.On("Notify", mock.Anything, notify.EventStorageFailure, "Marketplace storage failure",
		mock.MatchedBy(func(msg string) bool {
			return msg == "listings could not be persisted: storage failure: disk full"
		})).Return(nil).Once()

	svc := NewListingService(new(MockListingStore), nil, alerts, discardLogger())
	svc.StorageFailed(context.Background(), fmt.Errorf("%w: disk full", domain.ErrStorageFailure))

	alerts.AssertExpectations(t)
}

func TestSellerLabel(t *testing.T) {
	assert.Equal(t, "Ivan", sellerLabel(domain.Listing{SellerID: "u1", SellerName: "Ivan"}))
	assert.Equal(t, "u1", sellerLabel(domain.Listing{SellerID: "u1"}))
}
