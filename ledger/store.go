/*
store.go - Persistence interface for adjustments and the audit log

PURPOSE:
  Defines the boundary between the ledger logic and whatever store backs
  it. The ledger only requires get/put/list/delete-by-id semantics for
  adjustments plus append/list for audit entries; implementations may use
  SQLite, another database, or memory.

APPEND-ONLY CONTRACT:
  The audit log half of the interface has no update or delete operations.
  Adjustments themselves are mutable (that is their purpose) but every
  mutation flows through the Ledger, which writes the audit entry.

READ-YOUR-WRITES:
  Implementations must return a just-written adjustment/entry on the next
  read. The reviewer UI depends on it.

IMPLEMENTATIONS:
  - store/memory.go: In-memory, for tests and development
  - store/sqlite (module root): Production SQLite
*/
package ledger

import "context"

// Store persists adjustments and audit entries.
type Store interface {
	// PutAdjustment inserts or replaces an adjustment by id.
	PutAdjustment(ctx context.Context, adj VarianceAdjustment) error

	// GetAdjustment returns the adjustment or (nil, nil) when absent.
	GetAdjustment(ctx context.Context, id string) (*VarianceAdjustment, error)

	// DeleteAdjustment removes an adjustment. Deleting an absent id is an
	// error; revert semantics depend on it.
	DeleteAdjustment(ctx context.Context, id string) error

	// ListAdjustments returns all adjustments ordered by creation time.
	ListAdjustments(ctx context.Context) ([]VarianceAdjustment, error)

	// AppendAudit adds one audit entry. Append-only: no update, no delete.
	AppendAudit(ctx context.Context, entry AuditLogEntry) error

	// AuditEntries returns entries for one adjustment id in append order.
	AuditEntries(ctx context.Context, adjustmentID string) ([]AuditLogEntry, error)

	// AllAuditEntries returns the full audit log in append order.
	AllAuditEntries(ctx context.Context) ([]AuditLogEntry, error)
}
