package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/internal/metrics"
	"github.com/tsvetelinpenkovv/obms-stocksync/internal/repository"
)

// maxStockRetries bounds compare-and-set retries on a conflicting stock write.
const maxStockRetries = 3

// productLocks serializes in-process read-modify-write cycles per product.
// Cross-instance races are still caught by the store-level guarded update.
type productLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newProductLocks() *productLocks {
	return &productLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *productLocks) forProduct(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// Ledger is the only writer of product stock counters. Each operation is a
// serialized read-modify-write against a single product: reserve and
// unreserve touch only the reserved counter, deduct and restore move physical
// stock and append a movement record in the same store transaction.
type Ledger struct {
	catalog repository.Catalog
	logger  *slog.Logger
	locks   *productLocks
}

// NewLedger creates a stock ledger over the given catalog.
func NewLedger(catalog repository.Catalog, logger *slog.Logger) *Ledger {
	return &Ledger{
		catalog: catalog,
		logger:  logger,
		locks:   newProductLocks(),
	}
}

// Reserve earmarks qty units for an in-flight order. No movement record is
// written because reservation does not move physical stock.
func (l *Ledger) Reserve(ctx context.Context, productID string, qty decimal.Decimal) error {
	return l.apply(ctx, "reserve", productID, func(p *domain.Product) (decimal.Decimal, decimal.Decimal, *domain.StockMovement) {
		return p.CurrentStock, p.ReservedStock.Add(qty), nil
	})
}

// Unreserve releases a reservation. The reserved counter is clamped at zero,
// never negative.
func (l *Ledger) Unreserve(ctx context.Context, productID string, qty decimal.Decimal) error {
	return l.apply(ctx, "unreserve", productID, func(p *domain.Product) (decimal.Decimal, decimal.Decimal, *domain.StockMovement) {
		return p.CurrentStock, clampZero(p.ReservedStock.Sub(qty)), nil
	})
}

// Deduct removes qty units of physical stock and releases the matching
// reservation. Both counters change together with an "out" movement record.
// Current stock may go negative; oversell is recorded, not prevented.
func (l *Ledger) Deduct(ctx context.Context, productID string, qty decimal.Decimal, reason string) error {
	return l.apply(ctx, "deduct", productID, func(p *domain.Product) (decimal.Decimal, decimal.Decimal, *domain.StockMovement) {
		after := p.CurrentStock.Sub(qty)
		return after, clampZero(p.ReservedStock.Sub(qty)), newMovement(productID, domain.MovementOut, qty, p.CurrentStock, after, reason)
	})
}

// Restore returns qty units of physical stock with a "return" movement
// record. The reserved counter is untouched: a restored order left the
// reserved pool when it was deducted.
func (l *Ledger) Restore(ctx context.Context, productID string, qty decimal.Decimal, reason string) error {
	return l.apply(ctx, "restore", productID, func(p *domain.Product) (decimal.Decimal, decimal.Decimal, *domain.StockMovement) {
		after := p.CurrentStock.Add(qty)
		return after, p.ReservedStock, newMovement(productID, domain.MovementReturn, qty, p.CurrentStock, after, reason)
	})
}

// apply runs one serialized read-modify-write cycle. The in-process mutex
// keeps local callers from racing each other; the guarded update catches
// writes from other instances and triggers a bounded retry.
func (l *Ledger) apply(
	ctx context.Context,
	operation string,
	productID string,
	compute func(*domain.Product) (newCurrent, newReserved decimal.Decimal, movement *domain.StockMovement),
) error {
	lock := l.locks.forProduct(productID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxStockRetries; attempt++ {
		product, err := l.catalog.GetProduct(ctx, productID)
		if err != nil {
			metrics.StockOperationsTotal.WithLabelValues(operation, metrics.OutcomeError).Inc()
			return fmt.Errorf("%s stock for product %s: %w", operation, productID, err)
		}

		newCurrent, newReserved, movement := compute(product)

		err = l.catalog.UpdateStockGuarded(ctx, repository.GuardedStockUpdate{
			ProductID:        productID,
			ExpectedCurrent:  product.CurrentStock,
			ExpectedReserved: product.ReservedStock,
			NewCurrent:       newCurrent,
			NewReserved:      newReserved,
			Movement:         movement,
		})
		if err == nil {
			metrics.StockOperationsTotal.WithLabelValues(operation, metrics.OutcomeSuccess).Inc()
			return nil
		}
		if !errors.Is(err, domain.ErrConcurrentUpdateConflict) {
			metrics.StockOperationsTotal.WithLabelValues(operation, metrics.OutcomeError).Inc()
			return fmt.Errorf("%s stock for product %s: %w", operation, productID, err)
		}

		lastErr = err
		metrics.StockCASConflictsTotal.Inc()
		l.logger.WarnContext(ctx, "stock update lost compare-and-set race, retrying",
			slog.String("operation", operation),
			slog.String("product_id", productID),
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", maxStockRetries),
		)
	}

	metrics.StockOperationsTotal.WithLabelValues(operation, metrics.OutcomeConflict).Inc()
	return fmt.Errorf("%s stock for product %s after %d attempts: %w", operation, productID, maxStockRetries, lastErr)
}

func newMovement(productID string, mt domain.MovementType, qty, before, after decimal.Decimal, reason string) *domain.StockMovement {
	return &domain.StockMovement{
		ID:           uuid.New().String(),
		ProductID:    productID,
		MovementType: mt,
		Quantity:     qty,
		StockBefore:  before,
		StockAfter:   after,
		Reason:       reason,
		CreatedAt:    time.Now().UTC(),
	}
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
