package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/httputil"
)

// StockReader is the read side for stock levels and movement history.
type StockReader interface {
	GetProductStock(ctx context.Context, productID string) (*domain.Product, error)
	ListMovements(ctx context.Context, productID string, page, pageSize int) ([]domain.StockMovement, int64, error)
}

// StockHandler handles HTTP requests for stock read endpoints.
type StockHandler struct {
	stock  StockReader
	logger *slog.Logger
}

// NewStockHandler creates a new stock HTTP handler.
func NewStockHandler(stock StockReader, logger *slog.Logger) *StockHandler {
	return &StockHandler{
		stock:  stock,
		logger: logger,
	}
}

// ProductStockResponse is the JSON response body for a stock level query.
type ProductStockResponse struct {
	ProductID      string `json:"product_id"`
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	CurrentStock   string `json:"current_stock"`
	ReservedStock  string `json:"reserved_stock"`
	AvailableStock string `json:"available_stock"`
}

// GetStock handles GET /api/v1/products/{productID}/stock
func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	product, err := h.stock.GetProductStock(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, toAppError(err, "product", productID), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ProductStockResponse{
		ProductID:      product.ID,
		SKU:            product.SKU,
		Name:           product.Name,
		CurrentStock:   product.CurrentStock.String(),
		ReservedStock:  product.ReservedStock.String(),
		AvailableStock: product.AvailableStock().String(),
	}})
}

// ListMovements handles GET /api/v1/products/{productID}/movements
func (h *StockHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	page := 1
	perPage := 20

	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return
		}
		page = p
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		pp, err := strconv.Atoi(v)
		if err != nil || pp < 1 || pp > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid integer between 1 and 100"},
			})
			return
		}
		perPage = pp
	}

	movements, total, err := h.stock.ListMovements(r.Context(), productID, page, perPage)
	if err != nil {
		httputil.WriteError(w, r, toAppError(err, "product", productID), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse[domain.StockMovement](movements, int(total), page, perPage))
}

func parseProductID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "productID")
	if _, err := uuid.Parse(id); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "product ID must be a valid UUID"},
		})
		return "", false
	}
	return id, true
}
