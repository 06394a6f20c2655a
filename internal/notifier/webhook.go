package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/httpclient"
)

// Webhook POSTs fulfillment results to an operator-configured URL so side
// channels (messaging logs, dashboards) can react to transitions. Delivery is
// breaker-protected and best effort; failures never affect the transition.
type Webhook struct {
	client *httpclient.CircuitBreakerClient
	url    string
	logger *slog.Logger
}

// NewWebhook creates a webhook notifier.
func NewWebhook(client *httpclient.CircuitBreakerClient, url string, logger *slog.Logger) *Webhook {
	return &Webhook{client: client, url: url, logger: logger}
}

// Notify delivers one fulfillment result.
func (w *Webhook) Notify(ctx context.Context, result *domain.FulfillmentResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal fulfillment result: %w", err)
	}

	resp, err := w.client.Post(ctx, w.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("deliver fulfillment webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fulfillment webhook returned status %d", resp.StatusCode)
	}

	w.logger.DebugContext(ctx, "fulfillment webhook delivered",
		slog.Int64("order_id", result.OrderID),
		slog.Int("status", resp.StatusCode),
	)
	return nil
}
