package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/httputil"
)

// ============================================================================
// Mock Services
// ============================================================================

type mockFulfillment struct {
	mock.Mock
}

func (m *mockFulfillment) ApplyStatusChange(ctx context.Context, orderID int64, newStatus domain.Status) (*domain.FulfillmentResult, error) {
	args := m.Called(ctx, orderID, newStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FulfillmentResult), args.Error(1)
}

func (m *mockFulfillment) ApplyBulkStatusChange(ctx context.Context, orderIDs []int64, newStatus domain.Status) []domain.FulfillmentResult {
	args := m.Called(ctx, orderIDs, newStatus)
	return args.Get(0).([]domain.FulfillmentResult)
}

type mockSettings struct {
	mock.Mock
}

func (m *mockSettings) Current(ctx context.Context) (domain.StockSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.StockSettings), args.Error(1)
}

func (m *mockSettings) Update(ctx context.Context, settings domain.StockSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

type mockStock struct {
	mock.Mock
}

func (m *mockStock) GetProductStock(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockStock) ListMovements(ctx context.Context, productID string, page, pageSize int) ([]domain.StockMovement, int64, error) {
	args := m.Called(ctx, productID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.StockMovement), args.Get(1).(int64), args.Error(2)
}

// ============================================================================
// Test Helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// setupRouter creates a chi router matching the production route layout.
func setupRouter(fulfillment FulfillmentService, settings SettingsService, stock StockReader) *chi.Mux {
	logger := testLogger()
	orderHandler := NewOrderHandler(fulfillment, logger)
	settingsHandler := NewSettingsHandler(settings, logger)
	stockHandler := NewStockHandler(stock, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/orders/{orderID}/status", orderHandler.UpdateStatus)
		r.Post("/orders/status", orderHandler.BulkUpdateStatus)
		r.Get("/settings/stock", settingsHandler.GetSettings)
		r.Put("/settings/stock", settingsHandler.UpdateSettings)
		r.Get("/products/{productID}/stock", stockHandler.GetStock)
		r.Get("/products/{productID}/movements", stockHandler.ListMovements)
	})
	return r
}

// decodeResponse reads the response body into the httputil.Response struct.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

const validProductID = "550e8400-e29b-41d4-a716-446655440001"

// ============================================================================
// POST /api/v1/orders/{orderID}/status
// ============================================================================

func TestUpdateStatus_Success(t *testing.T) {
	fulfillment := new(mockFulfillment)
	router := setupRouter(fulfillment, new(mockSettings), new(mockStock))

	fulfillment.On("ApplyStatusChange", mock.Anything, int64(17), domain.Status("Изпратена")).
		Return(&domain.FulfillmentResult{
			OrderID:   17,
			Action:    domain.ActionDeduct,
			NewStatus: "Изпратена",
			ItemResults: []domain.ItemResult{
				{LineDescription: "SKU-1", Matched: true, ProductID: validProductID, Quantity: decimal.NewFromInt(2)},
			},
		}, nil)

	body, _ := json.Marshal(UpdateStatusRequest{NewStatus: "Изпратена"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/17/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
	fulfillment.AssertExpectations(t)
}

func TestUpdateStatus_InvalidOrderID(t *testing.T) {
	router := setupRouter(new(mockFulfillment), new(mockSettings), new(mockStock))

	body, _ := json.Marshal(UpdateStatusRequest{NewStatus: "Изпратена"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/abc/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestUpdateStatus_MissingStatus(t *testing.T) {
	router := setupRouter(new(mockFulfillment), new(mockSettings), new(mockStock))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/17/status", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestUpdateStatus_OrderNotFound(t *testing.T) {
	fulfillment := new(mockFulfillment)
	router := setupRouter(fulfillment, new(mockSettings), new(mockStock))

	fulfillment.On("ApplyStatusChange", mock.Anything, int64(99), domain.Status("Изпратена")).
		Return(nil, fmt.Errorf("load order 99: %w", domain.ErrOrderNotFound))

	body, _ := json.Marshal(UpdateStatusRequest{NewStatus: "Изпратена"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/99/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestUpdateStatus_StoreUnavailable(t *testing.T) {
	fulfillment := new(mockFulfillment)
	router := setupRouter(fulfillment, new(mockSettings), new(mockStock))

	fulfillment.On("ApplyStatusChange", mock.Anything, int64(17), domain.Status("Изпратена")).
		Return(nil, fmt.Errorf("deduct stock: %w", domain.ErrStoreUnavailable))

	body, _ := json.Marshal(UpdateStatusRequest{NewStatus: "Изпратена"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/17/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// ============================================================================
// POST /api/v1/orders/status
// ============================================================================

func TestBulkUpdateStatus_Success(t *testing.T) {
	fulfillment := new(mockFulfillment)
	router := setupRouter(fulfillment, new(mockSettings), new(mockStock))

	fulfillment.On("ApplyBulkStatusChange", mock.Anything, []int64{1, 2}, domain.Status("Отказана")).
		Return([]domain.FulfillmentResult{
			{OrderID: 1, Action: domain.ActionRestore, NewStatus: "Отказана"},
			{OrderID: 2, Action: domain.ActionNone, Error: "order not found"},
		})

	body, _ := json.Marshal(BulkUpdateStatusRequest{OrderIDs: []int64{1, 2}, NewStatus: "Отказана"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	fulfillment.AssertExpectations(t)
}

func TestBulkUpdateStatus_EmptyOrderList(t *testing.T) {
	router := setupRouter(new(mockFulfillment), new(mockSettings), new(mockStock))

	body, _ := json.Marshal(BulkUpdateStatusRequest{OrderIDs: []int64{}, NewStatus: "Отказана"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

// ============================================================================
// GET/PUT /api/v1/settings/stock
// ============================================================================

func TestGetSettings_Success(t *testing.T) {
	settings := new(mockSettings)
	router := setupRouter(new(mockFulfillment), settings, new(mockStock))

	settings.On("Current", mock.Anything).Return(domain.DefaultStockSettings(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/stock", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "В обработка", data["reserve_status"])
	settings.AssertExpectations(t)
}

func TestUpdateSettings_Success(t *testing.T) {
	settings := new(mockSettings)
	router := setupRouter(new(mockFulfillment), settings, new(mockStock))

	expected := domain.StockSettings{
		ReserveStatus:   "Processing",
		DeductionStatus: "Shipped",
		RestoreStatus:   "Cancelled",
	}
	settings.On("Update", mock.Anything, expected).Return(nil)

	body, _ := json.Marshal(UpdateSettingsRequest{
		ReserveStatus:   "Processing",
		DeductionStatus: "Shipped",
		RestoreStatus:   "Cancelled",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/stock", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	settings.AssertExpectations(t)
}

func TestUpdateSettings_DuplicateStatuses(t *testing.T) {
	settings := new(mockSettings)
	router := setupRouter(new(mockFulfillment), settings, new(mockStock))

	dup := domain.StockSettings{
		ReserveStatus:   "Shipped",
		DeductionStatus: "Shipped",
		RestoreStatus:   "Cancelled",
	}
	settings.On("Update", mock.Anything, dup).
		Return(fmt.Errorf("%w: reserve and deduction statuses are both %q", domain.ErrInvalidConfiguration, "Shipped"))

	body, _ := json.Marshal(UpdateSettingsRequest{
		ReserveStatus:   "Shipped",
		DeductionStatus: "Shipped",
		RestoreStatus:   "Cancelled",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/stock", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "reserve and deduction")
}

func TestUpdateSettings_MissingField(t *testing.T) {
	router := setupRouter(new(mockFulfillment), new(mockSettings), new(mockStock))

	body, _ := json.Marshal(UpdateSettingsRequest{ReserveStatus: "Processing"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/stock", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

// ============================================================================
// GET /api/v1/products/{productID}/stock and /movements
// ============================================================================

func TestGetStock_Success(t *testing.T) {
	stock := new(mockStock)
	router := setupRouter(new(mockFulfillment), new(mockSettings), stock)

	stock.On("GetProductStock", mock.Anything, validProductID).Return(&domain.Product{
		ID:            validProductID,
		SKU:           "SKU-100",
		Name:          "Widget",
		CurrentStock:  decimal.NewFromInt(100),
		ReservedStock: decimal.NewFromInt(30),
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+validProductID+"/stock", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "100", data["current_stock"])
	assert.Equal(t, "30", data["reserved_stock"])
	assert.Equal(t, "70", data["available_stock"])
}

func TestGetStock_InvalidProductID(t *testing.T) {
	router := setupRouter(new(mockFulfillment), new(mockSettings), new(mockStock))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/not-a-uuid/stock", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestGetStock_NotFound(t *testing.T) {
	stock := new(mockStock)
	router := setupRouter(new(mockFulfillment), new(mockSettings), stock)

	stock.On("GetProductStock", mock.Anything, validProductID).
		Return(nil, fmt.Errorf("get product: %w", domain.ErrProductNotFound))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+validProductID+"/stock", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListMovements_Paginated(t *testing.T) {
	stock := new(mockStock)
	router := setupRouter(new(mockFulfillment), new(mockSettings), stock)

	movements := []domain.StockMovement{
		{
			ID:           "m-1",
			ProductID:    validProductID,
			MovementType: domain.MovementOut,
			Quantity:     decimal.NewFromInt(2),
			StockBefore:  decimal.NewFromInt(100),
			StockAfter:   decimal.NewFromInt(98),
			Reason:       "order ORD-17",
			CreatedAt:    time.Now().UTC(),
		},
	}
	stock.On("ListMovements", mock.Anything, validProductID, 2, 10).
		Return(movements, int64(21), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+validProductID+"/movements?page=2&per_page=10", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp httputil.PaginatedResponse[domain.StockMovement]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 21, resp.TotalCount)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 3, resp.TotalPages)
	assert.True(t, resp.HasNext)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, domain.MovementOut, resp.Data[0].MovementType)
}

func TestListMovements_InvalidPage(t *testing.T) {
	router := setupRouter(new(mockFulfillment), new(mockSettings), new(mockStock))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+validProductID+"/movements?page=0", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
