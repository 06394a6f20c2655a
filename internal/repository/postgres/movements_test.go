package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/pkg/database"
)

func setupMovements(t *testing.T) (*MovementRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewMovementRepository(mock), mock
}

var movementCols = []string{
	"id", "product_id", "movement_type", "quantity",
	"stock_before", "stock_after", "reason", "created_at",
}

func TestMovementRepository_AppendMovement(t *testing.T) {
	repo, mock := setupMovements(t)
	defer mock.Close()

	m := &domain.StockMovement{
		ID:           "mv-1",
		ProductID:    "p1",
		MovementType: domain.MovementReturn,
		Quantity:     decimal.NewFromInt(2),
		StockBefore:  decimal.NewFromInt(98),
		StockAfter:   decimal.NewFromInt(100),
		Reason:       "order ORD-0002",
		CreatedAt:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	mock.ExpectExec("INSERT INTO stock_movements").
		WithArgs(m.ID, m.ProductID, m.MovementType, m.Quantity, m.StockBefore, m.StockAfter, m.Reason, m.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.AppendMovement(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepository_ListByProduct(t *testing.T) {
	repo, mock := setupMovements(t)
	defer mock.Close()

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery("SELECT .+ FROM stock_movements WHERE product_id").
		WithArgs("p1", 20, 0).
		WillReturnRows(pgxmock.NewRows(movementCols).
			AddRow("mv-2", "p1", "return", decimal.NewFromInt(2),
				decimal.NewFromInt(98), decimal.NewFromInt(100), "order ORD-0002", now).
			AddRow("mv-1", "p1", "out", decimal.NewFromInt(2),
				decimal.NewFromInt(100), decimal.NewFromInt(98), "order ORD-0002", now))

	movements, total, err := repo.ListByProduct(context.Background(), "p1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, movements, 2)
	assert.Equal(t, domain.MovementReturn, movements[0].MovementType)
	assert.Equal(t, domain.MovementOut, movements[1].MovementType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
