package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/kafka"
)

// OrderCreator applies the initial stock reservation for a new order.
type OrderCreator interface {
	ApplyCreation(ctx context.Context, orderID int64) (*domain.FulfillmentResult, error)
}

// OrderCreatedPayload is the body of order.created events from the order
// management side.
type OrderCreatedPayload struct {
	OrderID int64         `json:"order_id"`
	Status  domain.Status `json:"status"`
}

// OrderCreatedHandler reserves stock for orders created directly in the
// reserve status.
type OrderCreatedHandler struct {
	fulfillment OrderCreator
	logger      *slog.Logger
}

// NewOrderCreatedHandler creates the order.created event handler.
func NewOrderCreatedHandler(fulfillment OrderCreator, logger *slog.Logger) *OrderCreatedHandler {
	return &OrderCreatedHandler{fulfillment: fulfillment, logger: logger}
}

// Handle processes one order.created event. An order that no longer exists is
// skipped; store unavailability returns the error so the consumer retries.
func (h *OrderCreatedHandler) Handle(ctx context.Context, event *kafka.Event) error {
	var payload OrderCreatedPayload
	if err := event.UnmarshalData(&payload); err != nil {
		h.logger.ErrorContext(ctx, "malformed order.created payload, skipping",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	result, err := h.fulfillment.ApplyCreation(ctx, payload.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			h.logger.WarnContext(ctx, "order.created for unknown order, skipping",
				slog.Int64("order_id", payload.OrderID),
			)
			return nil
		}
		return fmt.Errorf("apply creation for order %d: %w", payload.OrderID, err)
	}

	if result.Action == domain.ActionReserve {
		h.logger.InfoContext(ctx, "initial reservation applied",
			slog.Int64("order_id", payload.OrderID),
			slog.Int("items", len(result.ItemResults)),
			slog.Int("matched", result.MatchedCount()),
		)
	}
	return nil
}

// NewOrderCreatedConsumer wires the handler into a Kafka consumer with
// idempotent delivery.
func NewOrderCreatedConsumer(cfg kafka.ConsumerConfig, fulfillment OrderCreator, store kafka.IdempotencyStore, logger *slog.Logger) *kafka.Consumer {
	handler := NewOrderCreatedHandler(fulfillment, logger)
	return kafka.NewConsumer(cfg, kafka.IdempotentHandler(store, handler.Handle, logger), logger)
}
