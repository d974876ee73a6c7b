package errors

import "errors"

var (
	ErrNotFound = errors.New("notification not found")

	ErrInvalidID = errors.New("invalid notification ID format")

	ErrNotOwner = errors.New("notification belongs to another user")
)
