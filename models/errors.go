package models

import "errors"

// Domain error taxonomy. Validation errors are terminal and user-visible;
// ErrGatewayUnavailable is transient and safe for the caller to retry.
var (
	ErrItemNotFound       = errors.New("item not found")
	ErrPriceMismatch      = errors.New("price mismatch")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrInvalidToken       = errors.New("invalid download token")
	ErrTokenExpired       = errors.New("download token expired")
	ErrAlreadyConsumed    = errors.New("download token already used")
	ErrFileUnavailable    = errors.New("file unavailable")
)
