package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStateChanged means the booking moved on between read and write.
	ErrStateChanged = errors.New("booking state changed concurrently")

	ErrIntentInUse = errors.New("payment intent already attached to another booking")
)
