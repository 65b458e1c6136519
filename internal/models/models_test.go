package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeValid(t *testing.T) {
	for _, s := range Sizes {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Size("XXXXL").Valid())
	assert.False(t, Size("m").Valid())
	assert.False(t, Size("").Valid())
}

func TestProductSizeEntryAndTotal(t *testing.T) {
	p := Product{Sizes: []SizeStock{{Size: SizeM, Quantity: 2}, {Size: SizeL, Quantity: 5}}}

	require.NotNil(t, p.SizeEntry(SizeM))
	assert.Equal(t, 2, p.SizeEntry(SizeM).Quantity)
	assert.Nil(t, p.SizeEntry(SizeXS))

	p.ComputeTotalStock()
	assert.Equal(t, 7, p.TotalStock)
}

func TestStatusValid(t *testing.T) {
	assert.True(t, OrderShipped.Valid())
	assert.False(t, OrderStatus("cancelled").Valid())
	assert.True(t, MessageRead.Valid())
	assert.False(t, MessageStatus("replied").Valid())
}

func TestPriceEncodesAsNumber(t *testing.T) {
	b, err := json.Marshal(Product{Price: decimal.RequireFromString("199.50")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"price":199.5`)
}
