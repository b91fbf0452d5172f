/*
Package ledger provides the audit-tracked manual adjustment ledger.

PURPOSE:
  Computed commission results are derived data, recomputed on demand. When
  a human reviewer decides a computed value is wrong, the correction lives
  here: an adjustment record paired with an append-only audit trail. This
  is the only mutable, audited state the engine owns.

CRITICAL INVARIANTS:
  1. Every mutation of an adjustment appends EXACTLY ONE audit entry.
  2. Audit entries are never edited or deleted, only appended.
  3. Reverting removes the adjustment but still logs the action.

LIFECYCLE:
  created (pending) -> approved | rejected, or removed via revert.
  Updates recompute adjustmentAmount = adjustedValue - originalValue.

SEE ALSO:
  - ledger.go: Mutation operations and per-id serialization
  - store.go: Injected persistence interface
  - store/memory.go: In-memory store for tests/dev
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ADJUSTMENT - Manual override of one computed result
// =============================================================================

// AdjustmentStatus is the review state of an adjustment.
type AdjustmentStatus string

const (
	StatusPending  AdjustmentStatus = "pending"
	StatusApproved AdjustmentStatus = "approved"
	StatusRejected AdjustmentStatus = "rejected"
)

// VarianceAdjustment corrects one (transaction, agent) commission figure.
// AdjustmentAmount is always AdjustedValue - OriginalValue; positive means
// an increase.
type VarianceAdjustment struct {
	ID        string
	LoopID    string
	AgentName string

	OriginalValue    decimal.Decimal
	AdjustedValue    decimal.Decimal
	AdjustmentAmount decimal.Decimal

	Reason string
	Status AdjustmentStatus

	CreatedBy  string
	ApprovedBy string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// AUDIT LOG - Who did what, when
// =============================================================================

// AuditAction is the kind of mutation an audit entry records.
type AuditAction string

const (
	AuditCreated  AuditAction = "created"
	AuditApproved AuditAction = "approved"
	AuditRejected AuditAction = "rejected"
	AuditUpdated  AuditAction = "updated"
	AuditReverted AuditAction = "reverted"
)

// AuditLogEntry is one immutable record of a ledger mutation. Previous and
// new values are nil when the action carries no value change.
type AuditLogEntry struct {
	ID           string
	AdjustmentID string
	Action       AuditAction
	Actor        string
	Timestamp    time.Time

	PreviousValue *decimal.Decimal
	NewValue      *decimal.Decimal
}

// =============================================================================
// SUMMARY STATISTICS
// =============================================================================

// Summary aggregates the current adjustment population.
type Summary struct {
	Total int

	CountsByStatus map[AdjustmentStatus]int
	CountsByReason map[string]int

	// Signed mean of AdjustmentAmount across all adjustments; positive
	// means adjustments increase commission on average.
	AverageAdjustment decimal.Decimal
}
