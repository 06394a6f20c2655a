package domain

import "errors"

var (
	// ErrProductNotFound means a line item could not be matched to any catalog
	// product. Recorded per item, never fails the order transition.
	ErrProductNotFound = errors.New("product not found")

	// ErrConcurrentUpdateConflict means a guarded stock write lost its
	// compare-and-set race even after retries.
	ErrConcurrentUpdateConflict = errors.New("concurrent stock update conflict")

	// ErrStoreUnavailable means the catalog or ledger store is unreachable.
	// The affected order's status change is not committed.
	ErrStoreUnavailable = errors.New("persistent store unavailable")

	// ErrInvalidConfiguration means the configured role statuses are not
	// pairwise distinct. Rejected at settings-save time.
	ErrInvalidConfiguration = errors.New("invalid stock settings configuration")

	// ErrOrderNotFound means the order being transitioned does not exist.
	ErrOrderNotFound = errors.New("order not found")
)
