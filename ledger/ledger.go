/*
ledger.go - Adjustment mutations with per-id serialization

PURPOSE:
  All mutations of adjustments flow through the Ledger so that every one
  appends exactly one audit entry. Appends for the same adjustment id are
  serialized with a per-id lock to avoid lost updates from concurrent
  reviewers; the ledger is low-volume and human-driven, so lock contention
  is a non-issue.

OPERATIONS:
  CreateAdjustment  -> status pending, audit "created"
  ApproveAdjustment -> pending only, audit "approved"
  RejectAdjustment  -> pending only, audit "rejected"
  UpdateAdjustment  -> recomputes adjustmentAmount, audit "updated"
  RevertAdjustment  -> deletes the adjustment, audit "reverted" (the log
                       outlives the adjustment)

SEE ALSO:
  - store.go: Injected persistence
  - export.go: CSV serialization of adjustments and the audit log
*/
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Clock abstracts time for tests.
type Clock func() time.Time

// Ledger owns all adjustment mutations.
type Ledger struct {
	store Store
	now   Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(store Store) *Ledger {
	return &Ledger{
		store: store,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// NewWithClock is for tests that need deterministic timestamps.
func NewWithClock(store Store, now Clock) *Ledger {
	l := New(store)
	l.now = now
	return l
}

// lockFor serializes mutations per adjustment id.
func (l *Ledger) lockFor(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	return lock
}

// =============================================================================
// MUTATIONS
// =============================================================================

// CreateAdjustment records a new pending adjustment and its audit entry.
func (l *Ledger) CreateAdjustment(
	ctx context.Context,
	loopID, agentName string,
	originalValue, adjustedValue decimal.Decimal,
	reason, createdBy string,
) (VarianceAdjustment, error) {
	if reason == "" {
		return VarianceAdjustment{}, ErrMissingReason
	}

	now := l.now()
	adj := VarianceAdjustment{
		ID:               uuid.NewString(),
		LoopID:           loopID,
		AgentName:        agentName,
		OriginalValue:    originalValue,
		AdjustedValue:    adjustedValue,
		AdjustmentAmount: adjustedValue.Sub(originalValue),
		Reason:           reason,
		Status:           StatusPending,
		CreatedBy:        createdBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	lock := l.lockFor(adj.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := l.store.PutAdjustment(ctx, adj); err != nil {
		return VarianceAdjustment{}, err
	}
	if err := l.appendAudit(ctx, adj.ID, AuditCreated, createdBy, &originalValue, &adjustedValue); err != nil {
		return VarianceAdjustment{}, err
	}
	return adj, nil
}

// ApproveAdjustment transitions pending -> approved.
func (l *Ledger) ApproveAdjustment(ctx context.Context, id, approver string) (VarianceAdjustment, error) {
	return l.resolve(ctx, id, approver, StatusApproved, AuditApproved)
}

// RejectAdjustment transitions pending -> rejected.
func (l *Ledger) RejectAdjustment(ctx context.Context, id, approver string) (VarianceAdjustment, error) {
	return l.resolve(ctx, id, approver, StatusRejected, AuditRejected)
}

func (l *Ledger) resolve(ctx context.Context, id, actor string, status AdjustmentStatus, action AuditAction) (VarianceAdjustment, error) {
	lock := l.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	adj, err := l.mustGet(ctx, id)
	if err != nil {
		return VarianceAdjustment{}, err
	}
	if adj.Status != StatusPending {
		return VarianceAdjustment{}, ErrNotPending
	}

	adj.Status = status
	adj.ApprovedBy = actor
	adj.UpdatedAt = l.now()

	if err := l.store.PutAdjustment(ctx, *adj); err != nil {
		return VarianceAdjustment{}, err
	}
	if err := l.appendAudit(ctx, id, action, actor, nil, nil); err != nil {
		return VarianceAdjustment{}, err
	}
	return *adj, nil
}

// UpdateAdjustment changes the adjusted value and/or reason, recomputing
// adjustmentAmount whenever the adjusted value changes.
func (l *Ledger) UpdateAdjustment(
	ctx context.Context,
	id string,
	adjustedValue decimal.Decimal,
	reason, actor string,
) (VarianceAdjustment, error) {
	lock := l.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	adj, err := l.mustGet(ctx, id)
	if err != nil {
		return VarianceAdjustment{}, err
	}

	previous := adj.AdjustedValue
	adj.AdjustedValue = adjustedValue
	adj.AdjustmentAmount = adjustedValue.Sub(adj.OriginalValue)
	if reason != "" {
		adj.Reason = reason
	}
	adj.UpdatedAt = l.now()

	if err := l.store.PutAdjustment(ctx, *adj); err != nil {
		return VarianceAdjustment{}, err
	}
	if err := l.appendAudit(ctx, id, AuditUpdated, actor, &previous, &adjustedValue); err != nil {
		return VarianceAdjustment{}, err
	}
	return *adj, nil
}

// RevertAdjustment removes the adjustment entirely. The action is still
// logged: the audit trail outlives the adjustment.
func (l *Ledger) RevertAdjustment(ctx context.Context, id, actor string) error {
	lock := l.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	adj, err := l.mustGet(ctx, id)
	if err != nil {
		return err
	}

	previous := adj.AdjustedValue
	original := adj.OriginalValue

	if err := l.store.DeleteAdjustment(ctx, id); err != nil {
		return err
	}
	return l.appendAudit(ctx, id, AuditReverted, actor, &previous, &original)
}

func (l *Ledger) mustGet(ctx context.Context, id string) (*VarianceAdjustment, error) {
	adj, err := l.store.GetAdjustment(ctx, id)
	if err != nil {
		return nil, err
	}
	if adj == nil {
		return nil, &NotFoundError{ID: id}
	}
	return adj, nil
}

func (l *Ledger) appendAudit(ctx context.Context, adjustmentID string, action AuditAction, actor string, prev, next *decimal.Decimal) error {
	return l.store.AppendAudit(ctx, AuditLogEntry{
		ID:            uuid.NewString(),
		AdjustmentID:  adjustmentID,
		Action:        action,
		Actor:         actor,
		Timestamp:     l.now(),
		PreviousValue: prev,
		NewValue:      next,
	})
}

// =============================================================================
// READS
// =============================================================================

// Adjustment returns one adjustment or (nil, nil) when absent. This lookup
// is expected to miss; use the mutation operations for not-found errors.
func (l *Ledger) Adjustment(ctx context.Context, id string) (*VarianceAdjustment, error) {
	return l.store.GetAdjustment(ctx, id)
}

// Adjustments returns all adjustments ordered by creation time.
func (l *Ledger) Adjustments(ctx context.Context) ([]VarianceAdjustment, error) {
	return l.store.ListAdjustments(ctx)
}

// AuditTrail returns one adjustment's audit entries in append order.
func (l *Ledger) AuditTrail(ctx context.Context, adjustmentID string) ([]AuditLogEntry, error) {
	return l.store.AuditEntries(ctx, adjustmentID)
}

// AuditLog returns the complete audit log in append order.
func (l *Ledger) AuditLog(ctx context.Context) ([]AuditLogEntry, error) {
	return l.store.AllAuditEntries(ctx)
}

// Summarize computes population statistics over current adjustments.
func (l *Ledger) Summarize(ctx context.Context) (Summary, error) {
	adjustments, err := l.store.ListAdjustments(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Total:             len(adjustments),
		CountsByStatus:    make(map[AdjustmentStatus]int),
		CountsByReason:    make(map[string]int),
		AverageAdjustment: decimal.Zero,
	}

	total := decimal.Zero
	for _, adj := range adjustments {
		summary.CountsByStatus[adj.Status]++
		summary.CountsByReason[adj.Reason]++
		total = total.Add(adj.AdjustmentAmount)
	}
	if len(adjustments) > 0 {
		summary.AverageAdjustment = total.Div(decimal.NewFromInt(int64(len(adjustments)))).Round(2)
	}
	return summary, nil
}
