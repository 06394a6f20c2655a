package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
)

// GuardedStockUpdate is a conditional write of one product's stock counters.
// The update applies only while both counters still hold their expected
// values; otherwise the store reports domain.ErrConcurrentUpdateConflict and
// the caller re-reads and retries. Movement, when set, is appended in the
// same transaction as the counter update.
type GuardedStockUpdate struct {
	ProductID        string
	ExpectedCurrent  decimal.Decimal
	ExpectedReserved decimal.Decimal
	NewCurrent       decimal.Decimal
	NewReserved      decimal.Decimal
	Movement         *domain.StockMovement
}

// Catalog is the product read/write port.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	FindBySKUOrBarcode(ctx context.Context, code string) (*domain.Product, error)
	SearchByName(ctx context.Context, substring string) (*domain.Product, error)
	UpdateStockGuarded(ctx context.Context, update GuardedStockUpdate) error
}

// OrderRepository reads orders and commits status transitions.
type OrderRepository interface {
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	// UpdateStatus persists the order's new status and stockDeducted flag as
	// one update.
	UpdateStatus(ctx context.Context, id int64, status domain.Status, stockDeducted bool) error
}

// MovementRepository is the append-only movement ledger port.
type MovementRepository interface {
	AppendMovement(ctx context.Context, movement *domain.StockMovement) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]domain.StockMovement, int64, error)
}

// SettingsRepository persists the operator-configured role statuses.
type SettingsRepository interface {
	GetStockSettings(ctx context.Context) (domain.StockSettings, error)
	SaveStockSettings(ctx context.Context, settings domain.StockSettings) error
}

// AuditRepository appends before/after snapshots of entity changes.
type AuditRepository interface {
	RecordAuditEvent(ctx context.Context, action, entityType, entityID string, before, after any) error
}
