package models

import "errors"

var (
	// ErrInvalidArgument covers malformed or out-of-range input; the
	// caller must fix the request, retrying is pointless.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAccountNotFound means the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds means a withdrawal would drive the balance
	// negative. Distinct from ErrInvalidArgument so callers can map it
	// to its own status.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrLockTimeout means the per-account lock could not be acquired
	// within the configured wait; the operation touched nothing and is
	// safe to retry.
	ErrLockTimeout = errors.New("account busy, lock wait timed out")

	// ErrStorage wraps failures of the underlying store so driver
	// errors never reach callers unclassified.
	ErrStorage = errors.New("storage failure")
)
