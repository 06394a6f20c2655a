package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/database"
)

// settingsKey is the single row key; the stock settings are process wide.
const settingsKey = "stock"

// SettingsRepository implements the settings port using PostgreSQL.
type SettingsRepository struct {
	pool database.DBTX
}

// NewSettingsRepository creates a new PostgreSQL-backed settings repository.
func NewSettingsRepository(pool database.DBTX) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// GetStockSettings returns the configured role statuses, falling back to the
// defaults when none were ever saved.
func (r *SettingsRepository) GetStockSettings(ctx context.Context) (domain.StockSettings, error) {
	query := `
		SELECT reserve_status, deduction_status, restore_status
		FROM stock_settings
		WHERE key = $1`

	var s domain.StockSettings
	err := r.pool.QueryRow(ctx, query, settingsKey).Scan(
		&s.ReserveStatus,
		&s.DeductionStatus,
		&s.RestoreStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DefaultStockSettings(), nil
		}
		return domain.StockSettings{}, storeErr("get stock settings", err)
	}
	return s, nil
}

// SaveStockSettings upserts the role status mapping.
func (r *SettingsRepository) SaveStockSettings(ctx context.Context, s domain.StockSettings) error {
	query := `
		INSERT INTO stock_settings (key, reserve_status, deduction_status, restore_status, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (key) DO UPDATE SET
			reserve_status = EXCLUDED.reserve_status,
			deduction_status = EXCLUDED.deduction_status,
			restore_status = EXCLUDED.restore_status,
			updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query, settingsKey, s.ReserveStatus, s.DeductionStatus, s.RestoreStatus)
	if err != nil {
		return storeErr("save stock settings", err)
	}
	return nil
}
