package service

import (
	"context"
	"fmt"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/internal/repository"
)

// StockView is the read side for dashboards: product stock levels and the
// movement history behind them.
type StockView struct {
	catalog   repository.Catalog
	movements repository.MovementRepository
}

// NewStockView creates the stock read service.
func NewStockView(catalog repository.Catalog, movements repository.MovementRepository) *StockView {
	return &StockView{catalog: catalog, movements: movements}
}

// GetProductStock returns a product with its current, reserved and available
// quantities.
func (s *StockView) GetProductStock(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}
	return product, nil
}

// ListMovements returns one page of a product's movement history, newest
// first, along with the total count.
func (s *StockView) ListMovements(ctx context.Context, productID string, page, pageSize int) ([]domain.StockMovement, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	movements, total, err := s.movements.ListByProduct(ctx, productID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements for product %s: %w", productID, err)
	}
	return movements, total, nil
}
