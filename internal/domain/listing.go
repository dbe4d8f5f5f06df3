package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Listing is a single marketplace offer pairing an item with a price and a
// seller. Fields the store does not know about are kept in Extra and written
// back unchanged.
type Listing struct {
	GlobalID     string          `json:"globalId"`
	Item         json.RawMessage `json:"item,omitempty"`
	Price        float64         `json:"price"`
	SellerID     string          `json:"sellerId"`
	SellerName   string          `json:"sellerName,omitempty"`
	SellerRating float64         `json:"sellerRating,omitempty"`
	Timestamp    int64           `json:"timestamp"`

	Extra map[string]json.RawMessage `json:"-"`
}

var listingFields = []string{
	"globalId", "item", "price", "sellerId", "sellerName", "sellerRating", "timestamp",
}

// listingJSON has the fields of Listing without its JSON methods.
type listingJSON Listing

// fieldTargets maps each known key to the field it decodes into.
func (l *Listing) fieldTargets() map[string]any {
	return map[string]any{
		"globalId":     &l.GlobalID,
		"price":        &l.Price,
		"sellerId":     &l.SellerID,
		"sellerName":   &l.SellerName,
		"sellerRating": &l.SellerRating,
		"timestamp":    &l.Timestamp,
	}
}

// UnmarshalJSON decodes the known fields by exact key and collects everything
// else into Extra. A known key holding null or a value of the wrong type is
// kept in Extra unchanged and its field is left at the zero value.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Listing
	if v, ok := raw["item"]; ok {
		out.Item = append(json.RawMessage(nil), v...)
		delete(raw, "item")
	}
	for key, target := range out.fieldTargets() {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if isNull(v) || json.Unmarshal(v, target) != nil {
			continue
		}
		delete(raw, key)
	}
	if len(raw) > 0 {
		out.Extra = raw
	}

	*l = out
	return nil
}

// MarshalJSON encodes the known fields merged over Extra. A known field wins
// over an Extra entry with the same name unless the field is zero.
func (l Listing) MarshalJSON() ([]byte, error) {
	if len(l.Extra) == 0 {
		return json.Marshal(listingJSON(l))
	}

	out := make(map[string]any, len(l.Extra)+len(listingFields))
	for k, v := range l.Extra {
		out[k] = v
	}
	put := func(key string, v any, zero, omitEmpty bool) {
		if !zero {
			out[key] = v
			return
		}
		if _, ok := l.Extra[key]; ok {
			return
		}
		if !omitEmpty {
			out[key] = v
		}
	}
	put("globalId", l.GlobalID, l.GlobalID == "", false)
	put("item", l.Item, len(l.Item) == 0, true)
	put("price", l.Price, l.Price == 0, false)
	put("sellerId", l.SellerID, l.SellerID == "", false)
	put("sellerName", l.SellerName, l.SellerName == "", true)
	put("sellerRating", l.SellerRating, l.SellerRating == 0, true)
	put("timestamp", l.Timestamp, l.Timestamp == 0, false)
	return json.Marshal(out)
}

func isNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}

// Clone returns a copy of l that shares no memory with it.
func (l Listing) Clone() Listing {
	c := l
	if l.Item != nil {
		c.Item = append(json.RawMessage(nil), l.Item...)
	}
	if l.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(l.Extra))
		for k, v := range l.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

// CreatedAt returns the listing timestamp as a time.Time.
func (l Listing) CreatedAt() time.Time {
	return time.UnixMilli(l.Timestamp)
}

// Truthy reports whether a raw JSON value counts as present. Absent, null,
// false, zero and the empty string are falsy.
func Truthy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return false
	}
	switch string(v) {
	case "null", "false", `""`:
		return false
	}
	if v[0] == '-' || (v[0] >= '0' && v[0] <= '9') {
		f, err := strconv.ParseFloat(string(v), 64)
		return err != nil || f != 0
	}
	return true
}

// ListingEventType names a change to the listing collection.
type ListingEventType string

const (
	ListingCreated ListingEventType = "listing_created"
	ListingRemoved ListingEventType = "listing_removed"
)

// ListingEvent is published on the signal bus after a successful mutation.
type ListingEvent struct {
	Type    ListingEventType `json:"type"`
	Listing Listing          `json:"listing"`
	At      time.Time        `json:"at"`
}
