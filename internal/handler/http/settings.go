package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/httputil"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/validator"
)

// SettingsService reads and updates the role status mapping.
type SettingsService interface {
	Current(ctx context.Context) (domain.StockSettings, error)
	Update(ctx context.Context, settings domain.StockSettings) error
}

// SettingsHandler handles HTTP requests for stock settings.
type SettingsHandler struct {
	settings SettingsService
	logger   *slog.Logger
}

// NewSettingsHandler creates a new settings HTTP handler.
func NewSettingsHandler(settings SettingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger,
	}
}

// UpdateSettingsRequest is the JSON request body for updating stock settings.
type UpdateSettingsRequest struct {
	ReserveStatus   string `json:"reserve_status" validate:"required"`
	DeductionStatus string `json:"deduction_status" validate:"required"`
	RestoreStatus   string `json:"restore_status" validate:"required"`
}

// GetSettings handles GET /api/v1/settings/stock
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Current(r.Context())
	if err != nil {
		httputil.WriteError(w, r, toAppError(err, "stock_settings", "stock"), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: settings})
}

// UpdateSettings handles PUT /api/v1/settings/stock
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateSettingsRequest
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

	settings := domain.StockSettings{
		ReserveStatus:   domain.Status(req.ReserveStatus),
		DeductionStatus: domain.Status(req.DeductionStatus),
		RestoreStatus:   domain.Status(req.RestoreStatus),
	}

	if err := h.settings.Update(r.Context(), settings); err != nil {
		httputil.WriteError(w, r, toAppError(err, "stock_settings", "stock"), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: settings})
}
