package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StockOperationsTotal counts ledger operations by operation
	// (reserve, unreserve, deduct, restore) and outcome (success, conflict,
	// error).
	StockOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_operations_total",
			Help: "Total number of stock ledger operations",
		},
		[]string{"operation", "outcome"},
	)

	// StockCASConflictsTotal counts guarded stock updates that lost their
	// compare-and-set race, including ones that later succeeded on retry.
	StockCASConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_cas_conflicts_total",
			Help: "Total number of compare-and-set conflicts on stock updates",
		},
	)

	// OrderTransitionsTotal counts order status transitions by resolved
	// action and outcome (applied, partial, failed).
	OrderTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_transitions_total",
			Help: "Total number of order status transitions processed",
		},
		[]string{"action", "outcome"},
	)

	// UnmatchedLineItemsTotal counts line items that could not be resolved to
	// a catalog product.
	UnmatchedLineItemsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unmatched_line_items_total",
			Help: "Total number of order line items that matched no catalog product",
		},
	)
)

const (
	OutcomeSuccess  = "success"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"

	OutcomeApplied = "applied"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)
