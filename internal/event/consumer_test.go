package event

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/kafka"
)

type mockOrderCreator struct {
	mock.Mock
}

func (m *mockOrderCreator) ApplyCreation(ctx context.Context, orderID int64) (*domain.FulfillmentResult, error) {
	args := m.Called(ctx, orderID)
	if r := args.Get(0); r != nil {
		return r.(*domain.FulfillmentResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func orderCreatedEvent(t *testing.T, orderID int64) *kafka.Event {
	t.Helper()
	evt, err := kafka.NewEvent("order.created", "17", "order", "orders",
		OrderCreatedPayload{OrderID: orderID, Status: "В обработка"})
	require.NoError(t, err)
	return evt
}

func TestOrderCreatedHandlerReserves(t *testing.T) {
	creator := new(mockOrderCreator)
	creator.On("ApplyCreation", mock.Anything, int64(17)).
		Return(&domain.FulfillmentResult{OrderID: 17, Action: domain.ActionReserve}, nil)

	handler := NewOrderCreatedHandler(creator, testLogger())
	err := handler.Handle(context.Background(), orderCreatedEvent(t, 17))

	require.NoError(t, err)
	creator.AssertExpectations(t)
}

func TestOrderCreatedHandlerSkipsUnknownOrder(t *testing.T) {
	creator := new(mockOrderCreator)
	creator.On("ApplyCreation", mock.Anything, int64(99)).
		Return(nil, fmt.Errorf("load order 99: %w", domain.ErrOrderNotFound))

	handler := NewOrderCreatedHandler(creator, testLogger())
	err := handler.Handle(context.Background(), orderCreatedEvent(t, 99))

	assert.NoError(t, err, "unknown orders are skipped, not retried")
}

func TestOrderCreatedHandlerRetriesOnStoreOutage(t *testing.T) {
	creator := new(mockOrderCreator)
	creator.On("ApplyCreation", mock.Anything, int64(17)).
		Return(nil, fmt.Errorf("load order 17: %w", domain.ErrStoreUnavailable))

	handler := NewOrderCreatedHandler(creator, testLogger())
	err := handler.Handle(context.Background(), orderCreatedEvent(t, 17))

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestOrderCreatedHandlerSkipsMalformedPayload(t *testing.T) {
	handler := NewOrderCreatedHandler(new(mockOrderCreator), testLogger())
	evt := &kafka.Event{EventID: "e1", EventType: "order.created", Data: []byte("not json")}

	assert.NoError(t, handler.Handle(context.Background(), evt))
}
