package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/internal/metrics"
	"github.com/tsvetelinpenkovv/obms-stocksync/internal/repository"
)

// ProductResolver resolves a free-text order line to a catalog product.
type ProductResolver interface {
	Resolve(ctx context.Context, productCode, productName string) (*domain.Product, error)
}

// StockLedger is the stock counter writer consumed by the orchestrator.
type StockLedger interface {
	Reserve(ctx context.Context, productID string, qty decimal.Decimal) error
	Unreserve(ctx context.Context, productID string, qty decimal.Decimal) error
	Deduct(ctx context.Context, productID string, qty decimal.Decimal, reason string) error
	Restore(ctx context.Context, productID string, qty decimal.Decimal, reason string) error
}

// SettingsSource provides the current role status mapping. It is read at the
// start of every transition so settings changes take effect on the next call.
type SettingsSource interface {
	Current(ctx context.Context) (domain.StockSettings, error)
}

// EventPublisher emits domain events after a committed transition.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, order *domain.Order, oldStatus domain.Status, result *domain.FulfillmentResult) error
}

// FulfillmentNotifier pushes fulfillment results to an external channel.
type FulfillmentNotifier interface {
	Notify(ctx context.Context, result *domain.FulfillmentResult) error
}

// Fulfillment orchestrates order status changes: it decides the stock action,
// resolves each line item, drives the ledger, commits the status and emits
// audit and notification events. Line items fail individually; only store
// unavailability aborts an order's transition.
type Fulfillment struct {
	orders   repository.OrderRepository
	settings SettingsSource
	matcher  ProductResolver
	ledger   StockLedger
	audit    repository.AuditRepository
	events   EventPublisher
	notifier FulfillmentNotifier
	logger   *slog.Logger
}

// NewFulfillment creates the orchestrator. events and notifier may be nil.
func NewFulfillment(
	orders repository.OrderRepository,
	settings SettingsSource,
	matcher ProductResolver,
	ledger StockLedger,
	audit repository.AuditRepository,
	events EventPublisher,
	notifier FulfillmentNotifier,
	logger *slog.Logger,
) *Fulfillment {
	return &Fulfillment{
		orders:   orders,
		settings: settings,
		matcher:  matcher,
		ledger:   ledger,
		audit:    audit,
		events:   events,
		notifier: notifier,
		logger:   logger,
	}
}

// ApplyStatusChange transitions one order to newStatus, applying whatever
// stock action the role status mapping implies. The returned result is always
// populated; a non-nil error means the status change was not committed.
func (f *Fulfillment) ApplyStatusChange(ctx context.Context, orderID int64, newStatus domain.Status) (*domain.FulfillmentResult, error) {
	result := &domain.FulfillmentResult{OrderID: orderID, NewStatus: newStatus, Action: domain.ActionNone}

	settings, err := f.settings.Current(ctx)
	if err != nil {
		return f.fail(result, fmt.Errorf("load stock settings: %w", err))
	}

	order, err := f.orders.GetOrder(ctx, orderID)
	if err != nil {
		return f.fail(result, fmt.Errorf("load order %d: %w", orderID, err))
	}
	before := *order

	action := domain.Decide(order.Status, newStatus, settings)

	// A restore on an order whose stock was never physically deducted would
	// overcount, so it downgrades to releasing the reservation.
	clearDeducted := false
	if action == domain.ActionRestore {
		if order.StockDeducted {
			clearDeducted = true
		} else {
			action = domain.ActionUnreserve
		}
	}
	result.Action = action

	stockDeducted := order.StockDeducted
	if action != domain.ActionNone {
		items, applied, err := f.processLines(ctx, action, order)
		result.ItemResults = items
		if err != nil {
			return f.fail(result, err)
		}
		if action == domain.ActionDeduct && applied > 0 {
			stockDeducted = true
		}
		if clearDeducted && applied > 0 {
			stockDeducted = false
		}
	}

	if err := f.orders.UpdateStatus(ctx, order.ID, newStatus, stockDeducted); err != nil {
		return f.fail(result, fmt.Errorf("commit status for order %d: %w", order.ID, err))
	}

	order.Status = newStatus
	order.StockDeducted = stockDeducted

	// The audit trail records every transition, stock action or not.
	if err := f.audit.RecordAuditEvent(ctx, "order.status_changed", "order", fmt.Sprintf("%d", order.ID), before, *order); err != nil {
		f.logger.WarnContext(ctx, "failed to record audit event",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	f.publish(ctx, order, before.Status, result)

	outcome := metrics.OutcomeApplied
	if len(result.ItemResults) > 0 && result.MatchedCount() < len(result.ItemResults) {
		outcome = metrics.OutcomePartial
	}
	metrics.OrderTransitionsTotal.WithLabelValues(string(action), outcome).Inc()

	f.logger.InfoContext(ctx, "order status transition applied",
		slog.Int64("order_id", order.ID),
		slog.String("old_status", string(before.Status)),
		slog.String("new_status", string(newStatus)),
		slog.String("action", string(action)),
		slog.Int("items", len(result.ItemResults)),
		slog.Int("matched", result.MatchedCount()),
	)

	return result, nil
}

// ApplyBulkStatusChange applies the same status change to every order in
// caller-supplied sequence. Best effort: one order's failure never stops the
// rest, and the result array tells the caller exactly which orders need
// attention.
func (f *Fulfillment) ApplyBulkStatusChange(ctx context.Context, orderIDs []int64, newStatus domain.Status) []domain.FulfillmentResult {
	results := make([]domain.FulfillmentResult, 0, len(orderIDs))
	for _, id := range orderIDs {
		result, err := f.ApplyStatusChange(ctx, id, newStatus)
		if err != nil {
			f.logger.WarnContext(ctx, "bulk status change: order transition failed",
				slog.Int64("order_id", id),
				slog.String("new_status", string(newStatus)),
				slog.String("error", err.Error()),
			)
		}
		results = append(results, *result)
	}
	return results
}

// ApplyCreation reserves stock for a freshly created order that starts life
// directly in the reserve status. Orders created in any other status need no
// stock action.
func (f *Fulfillment) ApplyCreation(ctx context.Context, orderID int64) (*domain.FulfillmentResult, error) {
	result := &domain.FulfillmentResult{OrderID: orderID, Action: domain.ActionNone}

	settings, err := f.settings.Current(ctx)
	if err != nil {
		return f.fail(result, fmt.Errorf("load stock settings: %w", err))
	}

	order, err := f.orders.GetOrder(ctx, orderID)
	if err != nil {
		return f.fail(result, fmt.Errorf("load order %d: %w", orderID, err))
	}
	result.NewStatus = order.Status

	if order.Status != settings.ReserveStatus {
		return result, nil
	}
	result.Action = domain.ActionReserve

	items, _, err := f.processLines(ctx, domain.ActionReserve, order)
	result.ItemResults = items
	if err != nil {
		return f.fail(result, err)
	}

	f.publish(ctx, order, order.Status, result)
	metrics.OrderTransitionsTotal.WithLabelValues(string(domain.ActionReserve), metrics.OutcomeApplied).Inc()
	return result, nil
}

// processLines resolves and applies the stock action to every line item.
// Unmatched items and ledger conflicts are recorded per item; a store outage
// is returned as an error so the caller aborts the transition. applied counts
// items whose ledger call succeeded.
func (f *Fulfillment) processLines(ctx context.Context, action domain.TransitionAction, order *domain.Order) (items []domain.ItemResult, applied int, err error) {
	reason := "order " + order.Code
	lines := order.Lines()
	items = make([]domain.ItemResult, 0, len(lines))

	for _, line := range lines {
		item := domain.ItemResult{
			LineDescription: line.Description(),
			Quantity:        line.Quantity,
		}

		product, resolveErr := f.matcher.Resolve(ctx, line.ProductCode, line.ProductName)
		switch {
		case errors.Is(resolveErr, domain.ErrProductNotFound):
			item.Error = domain.ErrProductNotFound.Error()
			metrics.UnmatchedLineItemsTotal.Inc()
			items = append(items, item)
			continue
		case resolveErr != nil:
			items = append(items, item)
			return items, applied, fmt.Errorf("resolve line %q: %w", line.Description(), resolveErr)
		}

		item.Matched = true
		item.ProductID = product.ID

		var ledgerErr error
		switch action {
		case domain.ActionReserve:
			ledgerErr = f.ledger.Reserve(ctx, product.ID, line.Quantity)
		case domain.ActionUnreserve:
			ledgerErr = f.ledger.Unreserve(ctx, product.ID, line.Quantity)
		case domain.ActionDeduct:
			ledgerErr = f.ledger.Deduct(ctx, product.ID, line.Quantity, reason)
		case domain.ActionRestore:
			ledgerErr = f.ledger.Restore(ctx, product.ID, line.Quantity, reason)
		}

		switch {
		case ledgerErr == nil:
			applied++
		case errors.Is(ledgerErr, domain.ErrStoreUnavailable):
			item.Error = ledgerErr.Error()
			items = append(items, item)
			return items, applied, fmt.Errorf("apply %s for line %q: %w", action, line.Description(), ledgerErr)
		default:
			// Conflicts and concurrently deleted products fail this item only.
			item.Error = ledgerErr.Error()
		}

		items = append(items, item)
	}

	return items, applied, nil
}

// fail marks the result as a whole-transition failure. The order's status was
// not committed; the caller can safely retry the same change.
func (f *Fulfillment) fail(result *domain.FulfillmentResult, err error) (*domain.FulfillmentResult, error) {
	result.Error = err.Error()
	metrics.OrderTransitionsTotal.WithLabelValues(string(result.Action), metrics.OutcomeFailed).Inc()
	return result, err
}

// publish emits the domain event and webhook notification. Both are best
// effort and never affect the committed transition.
func (f *Fulfillment) publish(ctx context.Context, order *domain.Order, oldStatus domain.Status, result *domain.FulfillmentResult) {
	if f.events != nil {
		if err := f.events.PublishStatusChanged(ctx, order, oldStatus, result); err != nil {
			f.logger.WarnContext(ctx, "failed to publish status change event",
				slog.Int64("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	if f.notifier != nil {
		if err := f.notifier.Notify(ctx, result); err != nil {
			f.logger.WarnContext(ctx, "failed to deliver fulfillment notification",
				slog.Int64("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}
