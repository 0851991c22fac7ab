package model

import "errors"

// Error taxonomy. Every engine entry point fails with exactly one of these
// kinds; callers (HTTP layer included) branch with errors.Is.
var (
	// Validation
	ErrValidation     = errors.New("validation error")
	ErrBadAddress     = errors.New("invalid content address")
	ErrZeroPrincipal  = errors.New("zero principal")
	ErrLengthMismatch = errors.New("mismatched array lengths")

	// Authorization
	ErrNotCreator   = errors.New("caller is not the creator")
	ErrNotDelegate  = errors.New("caller is not an approved delegate or relayer")
	ErrNotAuthority = errors.New("caller lacks the required role")
	ErrGateRejected = errors.New("gating verification failed")

	// State
	ErrNotFound         = errors.New("not found")
	ErrAlreadySelected  = errors.New("session already selected")
	ErrAlreadyRetracted = errors.New("session already retracted")
	ErrNotEligible      = errors.New("session is not eligible")
	ErrPeriodOpen       = errors.New("period has not ended")
	ErrPeriodClosed     = errors.New("period has ended")
	ErrNoWinner         = errors.New("no session has a positive score")
	ErrPaused           = errors.New("engine is paused")

	// Capacity
	ErrDailyLimit        = errors.New("daily engagement limit reached")
	ErrSessionCap        = errors.New("session cap reached")
	ErrCuratorAllocation = errors.New("curator allocation exceeded")
	ErrPoolExhausted     = errors.New("edition pool exhausted")

	// Payment
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrNothingToWithdraw   = errors.New("nothing to withdraw")
)

// Kind buckets errors for transport mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthorization
	KindState
	KindCapacity
	KindPayment
)

// KindOf reports the taxonomy bucket of err, or KindUnknown.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrBadAddress),
		errors.Is(err, ErrZeroPrincipal),
		errors.Is(err, ErrLengthMismatch):
		return KindValidation
	case errors.Is(err, ErrNotCreator),
		errors.Is(err, ErrNotDelegate),
		errors.Is(err, ErrNotAuthority),
		errors.Is(err, ErrGateRejected):
		return KindAuthorization
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAlreadySelected),
		errors.Is(err, ErrAlreadyRetracted),
		errors.Is(err, ErrNotEligible),
		errors.Is(err, ErrPeriodOpen),
		errors.Is(err, ErrPeriodClosed),
		errors.Is(err, ErrNoWinner),
		errors.Is(err, ErrPaused):
		return KindState
	case errors.Is(err, ErrDailyLimit),
		errors.Is(err, ErrSessionCap),
		errors.Is(err, ErrCuratorAllocation),
		errors.Is(err, ErrPoolExhausted):
		return KindCapacity
	case errors.Is(err, ErrInsufficientPayment),
		errors.Is(err, ErrNothingToWithdraw):
		return KindPayment
	default:
		return KindUnknown
	}
}
