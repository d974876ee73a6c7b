package errors

import "errors"

var (
	ErrNotFound = errors.New("user not found")

	ErrInvalidID = errors.New("invalid user ID format")

	ErrEmailTaken = errors.New("email already registered")

	ErrInvalidToken = errors.New("invalid or expired token")
)
