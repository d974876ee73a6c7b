package errors

import "errors"

var (
	// ErrAlreadyApplied means a payment outcome with the same key was
	// recorded before.
	ErrAlreadyApplied = errors.New("payment event already applied")

	ErrMissingBooking = errors.New("payment event carries no booking reference")
)
