package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrTooManyRequests = errors.New("too many requests")
)

// Verification errors. Each wraps one of the generic kinds above.
var (
	ErrInvalidChannel     = fmt.Errorf("invalid verification type: %w", ErrBadRequest)
	ErrAlreadyVerified    = fmt.Errorf("already verified: %w", ErrConflict)
	ErrNoOutstandingCode  = fmt.Errorf("no OTP found: %w", ErrNotFound)
	ErrCodeExpired        = fmt.Errorf("OTP expired: %w", ErrBadRequest)
	ErrCodeMismatch       = fmt.Errorf("invalid OTP: %w", ErrBadRequest)
	ErrTooManyAttempts    = fmt.Errorf("too many invalid attempts, request a new OTP: %w", ErrTooManyRequests)
	ErrIssuanceInProgress = fmt.Errorf("an OTP request is already in progress: %w", ErrConflict)
)

// Storage-level errors returned by repositories.
var (
	// ErrConditionFailed reports that a conditional write did not match the stored state.
	ErrConditionFailed = fmt.Errorf("conditional write failed: %w", ErrConflict)
	// ErrLockBusy reports that a lock is held by another caller.
	ErrLockBusy = fmt.Errorf("lock busy: %w", ErrConflict)
)
