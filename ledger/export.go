/*
export.go - Delimited-text serialization of adjustments and the audit log

Column order and header names are part of the public contract; downstream
export code depends on them. Quoting follows RFC 4180 via encoding/csv.
*/
package ledger

import (
	"encoding/csv"
	"strings"
	"time"
)

var adjustmentCSVHeader = []string{
	"id",
	"loop_id",
	"agent_name",
	"original_value",
	"adjusted_value",
	"adjustment_amount",
	"reason",
	"status",
	"created_by",
	"approved_by",
	"created_at",
}

// ExportAdjustmentsAsCSV serializes adjustments to delimited text.
func ExportAdjustmentsAsCSV(adjustments []VarianceAdjustment) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write(adjustmentCSVHeader)
	for _, adj := range adjustments {
		_ = w.Write([]string{
			adj.ID,
			adj.LoopID,
			adj.AgentName,
			adj.OriginalValue.StringFixed(2),
			adj.AdjustedValue.StringFixed(2),
			adj.AdjustmentAmount.StringFixed(2),
			adj.Reason,
			string(adj.Status),
			adj.CreatedBy,
			adj.ApprovedBy,
			adj.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	return sb.String()
}

var auditCSVHeader = []string{
	"id",
	"adjustment_id",
	"action",
	"actor",
	"timestamp",
	"previous_value",
	"new_value",
}

// ExportAuditLogAsCSV serializes audit entries to delimited text. Absent
// previous/new values export as empty fields.
func ExportAuditLogAsCSV(entries []AuditLogEntry) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write(auditCSVHeader)
	for _, e := range entries {
		prev, next := "", ""
		if e.PreviousValue != nil {
			prev = e.PreviousValue.StringFixed(2)
		}
		if e.NewValue != nil {
			next = e.NewValue.StringFixed(2)
		}
		_ = w.Write([]string{
			e.ID,
			e.AdjustmentID,
			string(e.Action),
			e.Actor,
			e.Timestamp.UTC().Format(time.RFC3339),
			prev,
			next,
		})
	}
	w.Flush()
	return sb.String()
}
