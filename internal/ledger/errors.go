package ledger

import "errors"

// Ledger errors. Operations wrap these with context; match with errors.Is.
// A returned error always means no state was changed.
var (
	ErrValidation           = errors.New("validation failed")
	ErrPricing              = errors.New("token price rounds to zero")
	ErrNotFound             = errors.New("property not found")
	ErrClosedForInvestment  = errors.New("property is closed for investment")
	ErrNotFunded            = errors.New("property is not funded")
	ErrBelowMinimum         = errors.New("amount below minimum investment")
	ErrInsufficientSupply   = errors.New("insufficient token supply")
	ErrUnauthorized         = errors.New("caller is not authorized")
	ErrInvalidConfiguration = errors.New("invalid ledger configuration")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrArithmetic           = errors.New("arithmetic overflow")
	ErrNothingToWithdraw    = errors.New("nothing to withdraw")
	ErrNotRefundable        = errors.New("property is not refundable")
	ErrUnavailable          = errors.New("ledger is unavailable")
)
