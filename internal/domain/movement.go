package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType classifies a stock movement.
type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
	MovementReturn     MovementType = "return"
)

// StockMovement is an append-only ledger entry recording one change to a
// product's current stock. Movements are never mutated or deleted.
type StockMovement struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	MovementType MovementType    `json:"movement_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	StockBefore  decimal.Decimal `json:"stock_before"`
	StockAfter   decimal.Decimal `json:"stock_after"`
	Reason       string          `json:"reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
