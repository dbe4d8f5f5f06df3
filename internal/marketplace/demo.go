package marketplace

import (
	"encoding/json"
	"time"

	"github.com/alanyoungcy/scoins/internal/domain"
)

// DemoListings returns the two fixed listings used when no stored collection
// can be loaded. Timestamps are one and two hours before now.
func DemoListings(now time.Time) []domain.Listing {
	return []domain.Listing{
		{
			GlobalID: "demo_1",
			Item: json.RawMessage(`{"id":1,"name":"Silver SCoin","icon":"⚪","price":25,` +
				`"rarity":"rare","description":"A coin of pure silver","edition":"Premium"}`),
			Price:        40,
			SellerID:     "user_123",
			SellerName:   "Alexey",
			SellerRating: 4.8,
			Timestamp:    now.Add(-time.Hour).UnixMilli(),
		},
		{
			GlobalID: "demo_2",
			Item: json.RawMessage(`{"id":3,"name":"Gold SCoin","icon":"🟡","price":50,` +
				`"rarity":"epic","description":"A luxurious gold coin","edition":"Deluxe"}`),
			Price:        80,
			SellerID:     "user_456",
			SellerName:   "Maria",
			SellerRating: 4.9,
			Timestamp:    now.Add(-2 * time.Hour).UnixMilli(),
		},
	}
}
