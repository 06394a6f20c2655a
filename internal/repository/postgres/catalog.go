package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/internal/repository"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/database"
)

const productColumns = `id, sku, COALESCE(barcode, ''), name, current_stock, reserved_stock, is_bundle, created_at, updated_at`

// CatalogRepository implements the catalog port using PostgreSQL.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.SKU,
		&p.Barcode,
		&p.Name,
		&p.CurrentStock,
		&p.ReservedStock,
		&p.IsBundle,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProduct retrieves a product by id.
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, storeErr("get product", err)
	}
	return p, nil
}

// FindBySKUOrBarcode retrieves a product by exact sku or barcode match.
func (r *CatalogRepository) FindBySKUOrBarcode(ctx context.Context, code string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1 OR barcode = $1 LIMIT 1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, storeErr("find product by code", err)
	}
	return p, nil
}

// SearchByName retrieves the first product whose name contains the substring,
// case-insensitive. Ambiguity resolves to an arbitrary first match.
func (r *CatalogRepository) SearchByName(ctx context.Context, substring string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name ILIKE '%' || $1 || '%' ORDER BY id LIMIT 1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, substring))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, storeErr("search product by name", err)
	}
	return p, nil
}

// UpdateStockGuarded conditionally writes both stock counters, appending the
// movement in the same transaction when one is present. A zero-row update
// means another writer got there first and reports a conflict; the caller
// re-reads and retries.
func (r *CatalogRepository) UpdateStockGuarded(ctx context.Context, u repository.GuardedStockUpdate) error {
	query := `
		UPDATE products
		SET current_stock = $2, reserved_stock = $3, updated_at = NOW()
		WHERE id = $1 AND current_stock = $4 AND reserved_stock = $5`

	if u.Movement == nil {
		tag, err := r.pool.Exec(ctx, query,
			u.ProductID, u.NewCurrent, u.NewReserved, u.ExpectedCurrent, u.ExpectedReserved)
		if err != nil {
			return storeErr("update stock", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrConcurrentUpdateConflict
		}
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storeErr("begin stock update", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, query,
		u.ProductID, u.NewCurrent, u.NewReserved, u.ExpectedCurrent, u.ExpectedReserved)
	if err != nil {
		return storeErr("update stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentUpdateConflict
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO stock_movements (id, product_id, movement_type, quantity, stock_before, stock_after, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.Movement.ID,
		u.Movement.ProductID,
		u.Movement.MovementType,
		u.Movement.Quantity,
		u.Movement.StockBefore,
		u.Movement.StockAfter,
		u.Movement.Reason,
		u.Movement.CreatedAt,
	)
	if err != nil {
		return storeErr("append stock movement", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit stock update", err)
	}
	return nil
}

// storeErr wraps a repository error, tagging transient connection problems as
// store unavailability so callers can abort instead of failing items.
func storeErr(op string, err error) error {
	if database.IsConnectionError(err) {
		return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrStoreUnavailable, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
