package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAdjustmentNotFound is returned when operating on an unknown
	// adjustment id. Lookups that are expected to miss return (nil, nil)
	// instead; mutations always surface this explicitly.
	ErrAdjustmentNotFound = errors.New("adjustment not found")

	// ErrNotPending is returned when approving or rejecting an adjustment
	// that has already been resolved.
	ErrNotPending = errors.New("adjustment is not pending")

	// ErrMissingReason is returned when creating an adjustment without a
	// reason code. Every manual override must be explainable.
	ErrMissingReason = errors.New("adjustment reason is required")
)

// NotFoundError carries the offending id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("adjustment %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrAdjustmentNotFound }
