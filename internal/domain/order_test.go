package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderLinesExplicit(t *testing.T) {
	order := &Order{
		ID:   17,
		Code: "ORD-0017",
		Items: []LineItem{
			{ID: 1, OrderID: 17, ProductCode: "SKU-1", Quantity: decimal.NewFromInt(2)},
			{ID: 2, OrderID: 17, ProductName: "Черна тениска (x3)", Quantity: decimal.NewFromInt(3)},
		},
		// Top-level fields are ignored when explicit items exist.
		ProductCode: "SKU-9",
		Quantity:    decimal.NewFromInt(1),
	}

	lines := order.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "SKU-1", lines[0].ProductCode)
	assert.Equal(t, "Черна тениска (x3)", lines[1].ProductName)
}

func TestOrderLinesImplicit(t *testing.T) {
	order := &Order{
		ID:          17,
		ProductCode: "SKU-9",
		ProductName: "Бяла тениска",
		Quantity:    decimal.NewFromInt(4),
	}

	lines := order.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(17), lines[0].OrderID)
	assert.Equal(t, "SKU-9", lines[0].ProductCode)
	assert.Equal(t, "Бяла тениска", lines[0].ProductName)
	assert.True(t, lines[0].Quantity.Equal(decimal.NewFromInt(4)))
}

func TestLineItemDescription(t *testing.T) {
	assert.Equal(t, "SKU-1", LineItem{ProductCode: "SKU-1", ProductName: "Тениска"}.Description())
	assert.Equal(t, "Тениска", LineItem{ProductName: "Тениска"}.Description())
}

func TestProductAvailableStock(t *testing.T) {
	p := &Product{
		CurrentStock:  decimal.NewFromInt(10),
		ReservedStock: decimal.NewFromInt(3),
	}
	assert.True(t, p.AvailableStock().Equal(decimal.NewFromInt(7)))
}

func TestFulfillmentResultMatchedCount(t *testing.T) {
	r := &FulfillmentResult{
		ItemResults: []ItemResult{
			{Matched: true},
			{Matched: false, Error: "product not found"},
			{Matched: true},
		},
	}
	assert.Equal(t, 2, r.MatchedCount())
}
