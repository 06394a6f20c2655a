package domain

// TransitionAction is the stock action implied by an order status change.
type TransitionAction string

const (
	ActionNone      TransitionAction = "none"
	ActionReserve   TransitionAction = "reserve"
	ActionUnreserve TransitionAction = "unreserve"
	ActionDeduct    TransitionAction = "deduct"
	ActionRestore   TransitionAction = "restore"
)

// Decide maps an order status change to a stock action. Rules are evaluated
// in priority order; the first match wins. They are mutually exclusive because
// Validate guarantees the three role statuses are distinct.
//
//  1. Entering the reserve status reserves stock.
//  2. Leaving the reserve status for a non-role status releases the
//     reservation without fulfilling or cancelling.
//  3. Entering the deduction status deducts physical stock.
//  4. Entering the restore status returns physical stock.
//  5. Anything else, including an unchanged status, is a no-op.
func Decide(oldStatus, newStatus Status, s StockSettings) TransitionAction {
	switch {
	case oldStatus != s.ReserveStatus && newStatus == s.ReserveStatus:
		return ActionReserve
	case oldStatus == s.ReserveStatus &&
		newStatus != s.ReserveStatus &&
		newStatus != s.DeductionStatus &&
		newStatus != s.RestoreStatus:
		return ActionUnreserve
	case oldStatus != s.DeductionStatus && newStatus == s.DeductionStatus:
		return ActionDeduct
	case oldStatus != s.RestoreStatus && newStatus == s.RestoreStatus:
		return ActionRestore
	default:
		return ActionNone
	}
}
