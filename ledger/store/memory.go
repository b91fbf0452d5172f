// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/commission-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	adjustments map[string]ledger.VarianceAdjustment
	audit       []ledger.AuditLogEntry
}

func NewMemory() *Memory {
	return &Memory{adjustments: make(map[string]ledger.VarianceAdjustment)}
}

func (m *Memory) PutAdjustment(_ context.Context, adj ledger.VarianceAdjustment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustments[adj.ID] = adj
	return nil
}

func (m *Memory) GetAdjustment(_ context.Context, id string) (*ledger.VarianceAdjustment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	adj, ok := m.adjustments[id]
	if !ok {
		return nil, nil
	}
	copied := adj
	return &copied, nil
}

func (m *Memory) DeleteAdjustment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.adjustments[id]; !ok {
		return &ledger.NotFoundError{ID: id}
	}
	delete(m.adjustments, id)
	return nil
}

func (m *Memory) ListAdjustments(_ context.Context) ([]ledger.VarianceAdjustment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ledger.VarianceAdjustment, 0, len(m.adjustments))
	for _, adj := range m.adjustments {
		out = append(out, adj)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) AppendAudit(_ context.Context, entry ledger.AuditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entry)
	return nil
}

func (m *Memory) AuditEntries(_ context.Context, adjustmentID string) ([]ledger.AuditLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ledger.AuditLogEntry
	for _, e := range m.audit {
		if e.AdjustmentID == adjustmentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) AllAuditEntries(_ context.Context) ([]ledger.AuditLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ledger.AuditLogEntry, len(m.audit))
	copy(out, m.audit)
	return out, nil
}
