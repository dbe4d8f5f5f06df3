package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing_UnknownFieldsSurviveRoundTrip(t *testing.T) {
	in := `{"globalId":"global_u1_1700000000000","item":{"name":"Silver"},"price":40,` +
		`"sellerId":"u1","timestamp":1700000000000,"coin":{"id":1},"note":"fast shipping"}`

	var l Listing
	require.NoError(t, json.Unmarshal([]byte(in), &l))

	assert.Equal(t, "global_u1_1700000000000", l.GlobalID)
	assert.Equal(t, 40.0, l.Price)
	assert.Equal(t, "u1", l.SellerID)
	assert.Equal(t, int64(1700000000000), l.Timestamp)
	require.Len(t, l.Extra, 2)
	assert.JSONEq(t, `{"id":1}`, string(l.Extra["coin"]))
	assert.JSONEq(t, `"fast shipping"`, string(l.Extra["note"]))

	out, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestListing_KnownFieldsWinOverExtra(t *testing.T) {
	l := Listing{
		GlobalID:  "global_u1_1",
		Item:      json.RawMessage(`"coin"`),
		Price:     10,
		SellerID:  "u1",
		Timestamp: 1,
		Extra: map[string]json.RawMessage{
			"globalId": json.RawMessage(`"spoofed"`),
			"color":    json.RawMessage(`"red"`),
		},
	}

	out, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"globalId":"global_u1_1","item":"coin","price":10,"sellerId":"u1","timestamp":1,"color":"red"}`,
		string(out))
}

func TestListing_NoExtraWhenOnlyKnownFields(t *testing.T) {
	var l Listing
	require.NoError(t, json.Unmarshal([]byte(`{"globalId":"a","price":1,"sellerId":"u","timestamp":2}`), &l))
	assert.Nil(t, l.Extra)
	assert.Empty(t, l.Item)
}

func TestListing_KeysMatchExactly(t *testing.T) {
	in := `{"ITEM":{"id":1},"Price":40,"SELLERID":"u1","price":5}`

	var l Listing
	require.NoError(t, json.Unmarshal([]byte(in), &l))

	assert.Empty(t, l.Item)
	assert.Equal(t, 5.0, l.Price)
	assert.Empty(t, l.SellerID)
	require.Len(t, l.Extra, 3)
	assert.JSONEq(t, `40`, string(l.Extra["Price"]))

	out, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"ITEM":{"id":1},"Price":40,"SELLERID":"u1","price":5,"globalId":"","sellerId":"","timestamp":0}`,
		string(out))
}

func TestListing_OffTypeAndNullFieldsStayVerbatim(t *testing.T) {
	in := `{"globalId":"g1","price":"40","sellerId":7,"sellerName":null,"sellerRating":"high","timestamp":5}`

	var l Listing
	require.NoError(t, json.Unmarshal([]byte(in), &l))

	assert.Equal(t, "g1", l.GlobalID)
	assert.Zero(t, l.Price)
	assert.Empty(t, l.SellerID)
	assert.Equal(t, int64(5), l.Timestamp)
	assert.Len(t, l.Extra, 4)

	out, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestListing_RejectsNonObjects(t *testing.T) {
	var l Listing
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &l))
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &l))
}

func TestListing_CloneSharesNothing(t *testing.T) {
	l := Listing{
		Item:  json.RawMessage(`"gold"`),
		Extra: map[string]json.RawMessage{"note": json.RawMessage(`"a"`)},
	}
	c := l.Clone()

	c.Item[1] = 'X'
	c.Extra["note"][1] = 'b'
	c.Extra["more"] = json.RawMessage(`1`)

	assert.Equal(t, `"gold"`, string(l.Item))
	assert.Equal(t, `"a"`, string(l.Extra["note"]))
	assert.NotContains(t, l.Extra, "more")
	assert.Nil(t, Listing{}.Clone().Extra)
}

func TestListing_CreatedAt(t *testing.T) {
	l := Listing{Timestamp: 1700000000123}
	assert.Equal(t, time.UnixMilli(1700000000123), l.CreatedAt())
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", false},
		{"null", false},
		{" null ", false},
		{"false", false},
		{`""`, false},
		{"0", false},
		{"0.0", false},
		{"-0", false},
		{"true", true},
		{"1", true},
		{"-2.5", true},
		{`"0"`, true},
		{`"silver"`, true},
		{"{}", true},
		{"[]", true},
		{`{"id":1}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Truthy(json.RawMessage(tt.raw)))
		})
	}
}
