package domain

import "fmt"

// Default role statuses. Operators can reconfigure all three at runtime.
const (
	DefaultReserveStatus   Status = "В обработка"
	DefaultDeductionStatus Status = "Изпратена"
	DefaultRestoreStatus   Status = "Отказана"
)

// StockSettings maps three operator-configured status names to the stock
// actions they drive. Changes take effect on the next transition evaluated.
type StockSettings struct {
	ReserveStatus   Status `json:"reserve_status"`
	DeductionStatus Status `json:"deduction_status"`
	RestoreStatus   Status `json:"restore_status"`
}

// DefaultStockSettings returns the out-of-the-box role status mapping.
func DefaultStockSettings() StockSettings {
	return StockSettings{
		ReserveStatus:   DefaultReserveStatus,
		DeductionStatus: DefaultDeductionStatus,
		RestoreStatus:   DefaultRestoreStatus,
	}
}

// Validate rejects settings whose role statuses are empty or not pairwise
// distinct. The transition rules are mutually exclusive only when all three
// statuses differ.
func (s StockSettings) Validate() error {
	if s.ReserveStatus == "" || s.DeductionStatus == "" || s.RestoreStatus == "" {
		return fmt.Errorf("%w: all role statuses must be set", ErrInvalidConfiguration)
	}
	if s.ReserveStatus == s.DeductionStatus {
		return fmt.Errorf("%w: reserve and deduction statuses are both %q", ErrInvalidConfiguration, s.ReserveStatus)
	}
	if s.ReserveStatus == s.RestoreStatus {
		return fmt.Errorf("%w: reserve and restore statuses are both %q", ErrInvalidConfiguration, s.ReserveStatus)
	}
	if s.DeductionStatus == s.RestoreStatus {
		return fmt.Errorf("%w: deduction and restore statuses are both %q", ErrInvalidConfiguration, s.DeductionStatus)
	}
	return nil
}
