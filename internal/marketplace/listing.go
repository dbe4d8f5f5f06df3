package marketplace

import (
	"fmt"
	"strconv"

	"github.com/alanyoungcy/scoins/internal/domain"
)

// GlobalID builds the store-assigned identifier for a listing created by
// sellerID at the given Unix millisecond.
func GlobalID(sellerID string, millis int64) string {
	return "global_" + sellerID + "_" + strconv.FormatInt(millis, 10)
}

// Validate checks that a candidate listing carries an item, a non-zero price
// and a seller id. Nested fields are not inspected.
func Validate(l domain.Listing) error {
	switch {
	case !domain.Truthy(l.Item):
		return fmt.Errorf("marketplace: %w: item is required", domain.ErrInvalidInput)
	case l.Price == 0:
		return fmt.Errorf("marketplace: %w: price is required", domain.ErrInvalidInput)
	case l.SellerID == "":
		return fmt.Errorf("marketplace: %w: sellerId is required", domain.ErrInvalidInput)
	}
	return nil
}
