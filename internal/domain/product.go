package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry with its aggregate stock counters.
// CurrentStock may go negative (oversell is reported, not prevented);
// ReservedStock never goes below zero.
type Product struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Barcode       string          `json:"barcode,omitempty"`
	Name          string          `json:"name"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	ReservedStock decimal.Decimal `json:"reserved_stock"`
	IsBundle      bool            `json:"is_bundle"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AvailableStock returns the quantity not earmarked for in-flight orders.
func (p *Product) AvailableStock() decimal.Decimal {
	return p.CurrentStock.Sub(p.ReservedStock)
}
