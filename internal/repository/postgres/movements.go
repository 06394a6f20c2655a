package postgres

import (
	"context"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/database"
)

// MovementRepository implements the movement ledger port using PostgreSQL.
// Movements are append-only; there is no update or delete path.
type MovementRepository struct {
	pool database.DBTX
}

// NewMovementRepository creates a new PostgreSQL-backed movement repository.
func NewMovementRepository(pool database.DBTX) *MovementRepository {
	return &MovementRepository{pool: pool}
}

// AppendMovement inserts one movement record.
func (r *MovementRepository) AppendMovement(ctx context.Context, m *domain.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, movement_type, quantity, stock_before, stock_after, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		m.ID,
		m.ProductID,
		m.MovementType,
		m.Quantity,
		m.StockBefore,
		m.StockAfter,
		m.Reason,
		m.CreatedAt,
	)
	if err != nil {
		return storeErr("append stock movement", err)
	}
	return nil
}

// ListByProduct returns one page of a product's movements, newest first, with
// the total count.
func (r *MovementRepository) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]domain.StockMovement, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM stock_movements WHERE product_id = $1`, productID).Scan(&total)
	if err != nil {
		return nil, 0, storeErr("count stock movements", err)
	}

	query := `
		SELECT id, product_id, movement_type, quantity, stock_before, stock_after, COALESCE(reason, ''), created_at
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, 0, storeErr("list stock movements", err)
	}
	defer rows.Close()

	var movements []domain.StockMovement
	for rows.Next() {
		var m domain.StockMovement
		if err := rows.Scan(
			&m.ID,
			&m.ProductID,
			&m.MovementType,
			&m.Quantity,
			&m.StockBefore,
			&m.StockAfter,
			&m.Reason,
			&m.CreatedAt,
		); err != nil {
			return nil, 0, storeErr("scan stock movement", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storeErr("iterate stock movements", err)
	}

	return movements, total, nil
}
