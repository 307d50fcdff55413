package types

import "errors"

// Validation error types shared across the ingest and admin paths
var (
	ErrMissingLocation = errors.New("ping location cannot be empty")
	ErrMissingTime     = errors.New("ping time cannot be empty")
	ErrInvalidUserID   = errors.New("user ID must be 1-50 characters of [a-zA-Z0-9_-]")
	ErrNameTooLong     = errors.New("name must be at most 200 characters")
)
