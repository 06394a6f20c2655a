package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/database"
)

// OrderRepository implements the order port using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetOrder retrieves an order together with its line items.
func (r *OrderRepository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	query := `
		SELECT id, code, status, stock_deducted, COALESCE(product_code, ''), COALESCE(product_name, ''), quantity, created_at, updated_at
		FROM orders
		WHERE id = $1`

	var o domain.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.Code,
		&o.Status,
		&o.StockDeducted,
		&o.ProductCode,
		&o.ProductName,
		&o.Quantity,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, storeErr("get order", err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderID int64) ([]domain.LineItem, error) {
	query := `
		SELECT id, order_id, COALESCE(product_code, ''), product_name, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, storeErr("list order items", err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var li domain.LineItem
		if err := rows.Scan(&li.ID, &li.OrderID, &li.ProductCode, &li.ProductName, &li.Quantity); err != nil {
			return nil, storeErr("scan order item", err)
		}
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate order items", err)
	}

	return items, nil
}

// UpdateStatus persists the order's new status and stockDeducted flag as one
// update.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status, stockDeducted bool) error {
	query := `
		UPDATE orders
		SET status = $2, stock_deducted = $3, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status, stockDeducted)
	if err != nil {
		return storeErr("update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
