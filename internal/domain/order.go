package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is an order status name. The status vocabulary is open ended and
// operator configurable, so statuses are opaque strings rather than an enum.
type Status string

// Order is an order as seen by the stock synchronization engine. Orders are
// mutated only through whole-object or status-only updates.
type Order struct {
	ID            int64      `json:"id"`
	Code          string     `json:"code"`
	Status        Status     `json:"status"`
	StockDeducted bool       `json:"stock_deducted"`
	Items         []LineItem `json:"items,omitempty"`

	// Top-level product fields used when the order carries no persisted
	// line items.
	ProductCode string          `json:"product_code,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LineItem is one product reference on an order. ProductCode may contain
// several comma-separated candidate codes.
type LineItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductCode string          `json:"product_code,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// Description returns a human-readable identifier for the line, preferring
// the code over the name.
func (li LineItem) Description() string {
	if li.ProductCode != "" {
		return li.ProductCode
	}
	return li.ProductName
}

// Lines returns the order's effective line items. An order with no persisted
// items is treated as a single implicit line built from its top-level product
// fields.
func (o *Order) Lines() []LineItem {
	if len(o.Items) > 0 {
		return o.Items
	}
	return []LineItem{{
		OrderID:     o.ID,
		ProductCode: o.ProductCode,
		ProductName: o.ProductName,
		Quantity:    o.Quantity,
	}}
}
