package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/scoins/internal/domain"
)

// ListingService defines what the marketplace handler needs from the
// service layer.
type ListingService interface {
	List(ctx context.Context) ([]domain.Listing, error)
	Create(ctx context.Context, candidate domain.Listing) (domain.Listing, error)
	Remove(ctx context.Context, id, requesterID string) error
}

// MarketplaceHandler serves the listing endpoints.
type MarketplaceHandler struct {
	listings ListingService
	logger   *slog.Logger
}

// NewMarketplaceHandler creates a MarketplaceHandler.
func NewMarketplaceHandler(listings ListingService, logger *slog.Logger) *MarketplaceHandler {
	return &MarketplaceHandler{
		listings: listings,
		logger:   logHandler(logger, "marketplace"),
	}
}

type createResponse struct {
	Success bool           `json:"success"`
	Item    domain.Listing `json:"item"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// List returns the full listing collection as a JSON array.
// GET /api/marketplace
func (h *MarketplaceHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list listings failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

// Create adds a listing from the JSON body.
// POST /api/marketplace
func (h *MarketplaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var candidate domain.Listing
	if err := decodeJSON(w, r, &candidate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing data")
		return
	}

	listing, err := h.listings.Create(r.Context(), candidate)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid listing data")
			return
		}
		h.logger.ErrorContext(r.Context(), "create listing failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to add listing")
		return
	}

	writeJSON(w, http.StatusOK, createResponse{Success: true, Item: listing})
}

// Remove deletes a listing owned by the userId query parameter.
// DELETE /api/marketplace/{id}?userId=...
func (h *MarketplaceHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	requester := r.URL.Query().Get("userId")

	if err := h.listings.Remove(r.Context(), id, requester); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "listing not found")
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "not allowed to remove this listing")
		default:
			h.logger.ErrorContext(r.Context(), "remove listing failed",
				slog.String("global_id", id),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to remove listing")
		}
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
