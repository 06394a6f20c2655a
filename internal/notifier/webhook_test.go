package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/httpclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testClient() *httpclient.CircuitBreakerClient {
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = 2 * time.Second
	return httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig("fulfillment-webhook-test"),
		testLogger(),
	)
}

func TestWebhookNotifyDeliversResult(t *testing.T) {
	var received domain.FulfillmentResult
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(testClient(), srv.URL, testLogger())
	result := &domain.FulfillmentResult{OrderID: 17, Action: domain.ActionDeduct, NewStatus: "Изпратена"}

	require.NoError(t, wh.Notify(context.Background(), result))
	assert.Equal(t, int64(17), received.OrderID)
	assert.Equal(t, domain.ActionDeduct, received.Action)
}

func TestWebhookNotifyReportsClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	wh := NewWebhook(testClient(), srv.URL, testLogger())
	err := wh.Notify(context.Background(), &domain.FulfillmentResult{OrderID: 1})

	assert.ErrorContains(t, err, "status 422")
}
