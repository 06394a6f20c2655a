package domain

import "github.com/shopspring/decimal"

// ItemResult is the outcome of processing one line item.
type ItemResult struct {
	LineDescription string          `json:"line_description"`
	Matched         bool            `json:"matched"`
	ProductID       string          `json:"product_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Error           string          `json:"error,omitempty"`
}

// FulfillmentResult summarizes one order's status transition: which stock
// action was taken and how each line item fared.
type FulfillmentResult struct {
	OrderID     int64            `json:"order_id"`
	Action      TransitionAction `json:"action"`
	NewStatus   Status           `json:"new_status"`
	ItemResults []ItemResult     `json:"item_results"`

	// Error is set when the whole transition failed (store unavailable,
	// order missing). The status was not committed in that case.
	Error string `json:"error,omitempty"`
}

// MatchedCount returns how many line items resolved to a catalog product.
func (r *FulfillmentResult) MatchedCount() int {
	n := 0
	for _, ir := range r.ItemResults {
		if ir.Matched {
			n++
		}
	}
	return n
}
