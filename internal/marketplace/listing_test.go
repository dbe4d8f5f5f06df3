package marketplace

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyoungcy/scoins/internal/domain"
)

func TestGlobalID(t *testing.T) {
	assert.Equal(t, "global_u1_1700000000000", GlobalID("u1", 1700000000000))
	assert.Equal(t, "global_user_123_5", GlobalID("user_123", 5))
}

func TestValidate(t *testing.T) {
	ok := domain.Listing{Item: json.RawMessage(`{"id":1}`), Price: 40, SellerID: "u1"}
	assert.NoError(t, Validate(ok))

	negative := ok
	negative.Price = -3
	assert.NoError(t, Validate(negative), "only a zero price is rejected")

	noItem := ok
	noItem.Item = nil
	err := Validate(noItem)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "item")

	noPrice := ok
	noPrice.Price = 0
	err = Validate(noPrice)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "price")

	noSeller := ok
	noSeller.SellerID = ""
	err = Validate(noSeller)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "sellerId")
}

func TestDemoListings(t *testing.T) {
	listings := DemoListings(baseTime)

	assert.Len(t, listings, 2)
	for _, l := range listings {
		assert.NoError(t, Validate(l))
	}
	assert.Equal(t, 40.0, listings[0].Price)
	assert.Equal(t, 80.0, listings[1].Price)
	assert.Equal(t, "Alexey", listings[0].SellerName)
	assert.Equal(t, "Maria", listings[1].SellerName)
}
