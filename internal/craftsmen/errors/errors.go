package errors

import "errors"

var (
	ErrNotFound = errors.New("craftsman not found")

	ErrInvalidID = errors.New("invalid craftsman ID format")

	ErrProfileExists = errors.New("craftsman profile already exists for user")
)
