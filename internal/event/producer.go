package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/kafka"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/logger"
)

const source = "stocksync"

// Topics published by the stock synchronization engine.
var (
	TopicOrderStatusChanged = kafka.Topic("order", "status_changed")
	TopicStockReserved      = kafka.Topic("stock", "reserved")
	TopicStockUnreserved    = kafka.Topic("stock", "unreserved")
	TopicStockDeducted      = kafka.Topic("stock", "deducted")
	TopicStockRestored      = kafka.Topic("stock", "restored")

	// TopicOrderCreated is consumed, not produced, by this service.
	TopicOrderCreated = kafka.Topic("order", "created")
)

// StatusChangedPayload is the body of order.status_changed events.
type StatusChangedPayload struct {
	OrderID       int64                   `json:"order_id"`
	OrderCode     string                  `json:"order_code"`
	OldStatus     domain.Status           `json:"old_status"`
	NewStatus     domain.Status           `json:"new_status"`
	Action        domain.TransitionAction `json:"action"`
	StockDeducted bool                    `json:"stock_deducted"`
	ItemResults   []domain.ItemResult     `json:"item_results,omitempty"`
}

// StockActionPayload is the body of stock.* events, one per affected line.
type StockActionPayload struct {
	ProductID string `json:"product_id"`
	OrderID   int64  `json:"order_id"`
	OrderCode string `json:"order_code"`
	Quantity  string `json:"quantity"`
}

// Producer publishes the engine's domain events to Kafka.
type Producer struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewProducer creates a domain event producer.
func NewProducer(producer *kafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{producer: producer, logger: logger}
}

// PublishStatusChanged emits the order.status_changed event followed by one
// stock.* event per successfully applied line item.
func (p *Producer) PublishStatusChanged(ctx context.Context, order *domain.Order, oldStatus domain.Status, result *domain.FulfillmentResult) error {
	correlationID := logger.CorrelationIDFromContext(ctx)

	evt, err := kafka.NewEvent(
		"order.status_changed",
		strconv.FormatInt(order.ID, 10),
		"order",
		source,
		StatusChangedPayload{
			OrderID:       order.ID,
			OrderCode:     order.Code,
			OldStatus:     oldStatus,
			NewStatus:     order.Status,
			Action:        result.Action,
			StockDeducted: order.StockDeducted,
			ItemResults:   result.ItemResults,
		},
	)
	if err != nil {
		return fmt.Errorf("build status changed event: %w", err)
	}
	evt.WithCorrelationID(correlationID)

	if err := p.producer.Publish(ctx, TopicOrderStatusChanged, evt); err != nil {
		return err
	}

	topic, eventType := stockTopic(result.Action)
	if topic == "" {
		return nil
	}

	for _, item := range result.ItemResults {
		if !item.Matched || item.Error != "" {
			continue
		}
		stockEvt, err := kafka.NewEvent(eventType, item.ProductID, "product", source, StockActionPayload{
			ProductID: item.ProductID,
			OrderID:   order.ID,
			OrderCode: order.Code,
			Quantity:  item.Quantity.String(),
		})
		if err != nil {
			return fmt.Errorf("build stock event: %w", err)
		}
		stockEvt.WithCorrelationID(correlationID)

		if err := p.producer.Publish(ctx, topic, stockEvt); err != nil {
			return err
		}
	}

	return nil
}

func stockTopic(action domain.TransitionAction) (topic, eventType string) {
	switch action {
	case domain.ActionReserve:
		return TopicStockReserved, "stock.reserved"
	case domain.ActionUnreserve:
		return TopicStockUnreserved, "stock.unreserved"
	case domain.ActionDeduct:
		return TopicStockDeducted, "stock.deducted"
	case domain.ActionRestore:
		return TopicStockRestored, "stock.restored"
	default:
		return "", ""
	}
}
