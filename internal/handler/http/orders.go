package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/httputil"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/validator"
)

// FulfillmentService applies status transitions with their stock effects.
type FulfillmentService interface {
	ApplyStatusChange(ctx context.Context, orderID int64, newStatus domain.Status) (*domain.FulfillmentResult, error)
	ApplyBulkStatusChange(ctx context.Context, orderIDs []int64, newStatus domain.Status) []domain.FulfillmentResult
}

// OrderHandler handles HTTP requests for order status transitions.
type OrderHandler struct {
	fulfillment FulfillmentService
	logger      *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(fulfillment FulfillmentService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		fulfillment: fulfillment,
		logger:      logger,
	}
}

// UpdateStatusRequest is the JSON request body for a single status change.
type UpdateStatusRequest struct {
	NewStatus string `json:"new_status" validate:"required"`
}

// BulkUpdateStatusRequest is the JSON request body for a bulk status change.
type BulkUpdateStatusRequest struct {
	OrderIDs  []int64 `json:"order_ids" validate:"required,min=1"`
	NewStatus string  `json:"new_status" validate:"required"`
}

// UpdateStatus handles POST /api/v1/orders/{orderID}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "order ID must be a valid integer"},
		})
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.fulfillment.ApplyStatusChange(r.Context(), orderID, domain.Status(req.NewStatus))
	if err != nil {
		httputil.WriteError(w, r, toAppError(err, "order", chi.URLParam(r, "orderID")), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// BulkUpdateStatus handles POST /api/v1/orders/status
func (h *OrderHandler) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req BulkUpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	results := h.fulfillment.ApplyBulkStatusChange(r.Context(), req.OrderIDs, domain.Status(req.NewStatus))

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"results": results,
	}})
}
