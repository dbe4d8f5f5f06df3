package handler

import (
	"context"
	"net/http"
	"time"
)

// isoMillis matches JavaScript's Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// ListingCounter reports how many listings are on the market.
type ListingCounter interface {
	Count(ctx context.Context) int
}

// StatusHandler serves the marketplace status.
type StatusHandler struct {
	listings ListingCounter
	now      func() time.Time
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(listings ListingCounter) *StatusHandler {
	return &StatusHandler{listings: listings, now: time.Now}
}

type statusResponse struct {
	Status    string `json:"status"`
	Items     int    `json:"items"`
	Timestamp string `json:"timestamp"`
}

// GetStatus reports that the service is online with its listing count.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:    "online",
		Items:     h.listings.Count(r.Context()),
		Timestamp: h.now().UTC().Format(isoMillis),
	})
}
