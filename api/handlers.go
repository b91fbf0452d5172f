/*
handlers.go - HTTP API handlers for the commission engine

PURPOSE:
  Exposes calculation, reconciliation, and the adjustment ledger via REST.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Commissions:
    POST   /api/commissions/calculate         Run a batch calculation
    POST   /api/commissions/calculate/export  Same run, breakdowns as CSV
    POST   /api/commissions/variance          Reconcile CSV records
    POST   /api/commissions/variance/export   Same run, items as CSV

  Adjustments:
    GET    /api/adjustments                   List adjustments
    POST   /api/adjustments                   Create (pending)
    GET    /api/adjustments/summary           Population statistics
    GET    /api/adjustments/export            Adjustments as CSV
    GET    /api/adjustments/{id}              Get one
    PUT    /api/adjustments/{id}              Update value/reason
    DELETE /api/adjustments/{id}              Revert (audit survives)
    POST   /api/adjustments/{id}/approve      pending -> approved
    POST   /api/adjustments/{id}/reject       pending -> rejected
    GET    /api/adjustments/{id}/audit        One adjustment's trail

  Audit:
    GET    /api/audit                         Complete audit log
    GET    /api/audit/export                  Audit log as CSV

  Configuration:
    GET    /api/plans                         List plans
    POST   /api/plans                         Create/replace a plan
    GET    /api/teams                         List teams
    POST   /api/teams                         Create/replace a team
    GET    /api/assignments                   List assignments
    POST   /api/assignments                   Create/replace an assignment

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, bad configuration
  - 404: Adjustment not found
  - 409: Adjustment no longer pending
  - 500: Internal errors

CONFIGURATION CACHE:
  Plans, teams, and assignments are cached in the handler and refreshed
  on every configuration write. Calculation runs read the cache, not the
  database.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/config"
	"github.com/warp/commission-engine/engine"
	"github.com/warp/commission-engine/ledger"
	"github.com/warp/commission-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        *sqlite.Store
	Ledger       *ledger.Ledger
	Orchestrator *engine.Orchestrator

	// Cached configuration for calculation runs.
	mu          sync.RWMutex
	plans       []engine.CommissionPlan
	teams       []engine.Team
	assignments []engine.AgentAssignment
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:        store,
		Ledger:       ledger.New(store),
		Orchestrator: engine.NewOrchestrator(),
	}
}

// LoadConfig loads plans, teams, and assignments from the database into
// the cache.
func (h *Handler) LoadConfig(ctx context.Context) error {
	plans, err := h.Store.LoadPlans(ctx)
	if err != nil {
		return err
	}
	teams, err := h.Store.LoadTeams(ctx)
	if err != nil {
		return err
	}
	assignments, err := h.Store.LoadAssignments(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.plans = plans
	h.teams = teams
	h.assignments = assignments
	h.mu.Unlock()
	return nil
}

func (h *Handler) batchConfig() ([]engine.CommissionPlan, []engine.Team, []engine.AgentAssignment) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.plans, h.teams, h.assignments
}

// =============================================================================
// COMMISSION HANDLERS
// =============================================================================

// CalculateCommissions runs a batch calculation over the posted
// transactions using the cached configuration.
// POST /api/commissions/calculate
func (h *Handler) CalculateCommissions(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runCalculation(w, r)
	if !ok {
		return
	}

	resp := CalculateResponse{
		Breakdowns:         make([]BreakdownDTO, 0, len(result.Breakdowns)),
		Summaries:          make([]YTDSummaryDTO, 0, len(result.Summaries)),
		Errors:             make([]RecordErrorDTO, 0, len(result.Errors)),
		AgentsWithoutPlans: result.AgentsWithoutPlans(),
	}
	for _, b := range result.Breakdowns {
		resp.Breakdowns = append(resp.Breakdowns, toBreakdownDTO(b))
	}
	for _, s := range result.Summaries {
		resp.Summaries = append(resp.Summaries, toSummaryDTO(s))
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, RecordErrorDTO{
			LoopID:    e.LoopID,
			AgentName: e.AgentName,
			Reason:    e.Reason,
		})
	}
	if resp.AgentsWithoutPlans == nil {
		resp.AgentsWithoutPlans = []string{}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ExportCommissions runs the same batch calculation and returns the
// breakdowns as CSV.
// POST /api/commissions/calculate/export
func (h *Handler) ExportCommissions(w http.ResponseWriter, r *http.Request) {
	result, ok := h.runCalculation(w, r)
	if !ok {
		return
	}
	writeCSV(w, "commission_breakdowns.csv", engine.ExportBreakdownsAsCSV(result.Breakdowns))
}

func (h *Handler) runCalculation(w http.ResponseWriter, r *http.Request) (*engine.BatchResult, bool) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return nil, false
	}
	if len(req.Transactions) == 0 {
		writeError(w, http.StatusBadRequest, "At least one transaction is required", nil)
		return nil, false
	}

	txs := make([]engine.Transaction, 0, len(req.Transactions))
	for _, dto := range req.Transactions {
		tx, err := dto.toEngine()
		if err != nil {
			// Leave date problems to the orchestrator's per-record
			// error handling; it records and skips.
			tx = engine.Transaction{
				LoopID:   dto.LoopID,
				LoopName: dto.LoopName,
				Agents:   dto.Agents,
			}
		}
		txs = append(txs, tx)
	}

	plans, teams, assignments := h.batchConfig()
	result, err := h.Orchestrator.Calculate(engine.BatchInput{
		Transactions: txs,
		Plans:        plans,
		Teams:        teams,
		Assignments:  assignments,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if engine.IsConfigError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Calculation failed", err)
		return nil, false
	}
	return result, true
}

// ReconcileVariance classifies the posted records against calculated
// company dollar values.
// POST /api/commissions/variance
func (h *Handler) ReconcileVariance(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runVariance(w, r)
	if !ok {
		return
	}

	resp := VarianceResponse{
		Items: make([]VarianceItemDTO, 0, len(report.Items)),
		Summary: VarianceSummaryDTO{
			TotalCSV:        report.Summary.TotalCSV,
			TotalCalculated: report.Summary.TotalCalculated,
			TotalVariance:   report.Summary.TotalVariance,
			ExactCount:      report.Summary.ExactCount,
			MinorCount:      report.Summary.MinorCount,
			MajorCount:      report.Summary.MajorCount,
		},
	}
	for _, item := range report.Items {
		resp.Items = append(resp.Items, VarianceItemDTO{
			LoopID:             item.LoopID,
			AgentName:          item.AgentName,
			CSVCompanyDollar:   item.CSVCompanyDollar,
			CalculatedValue:    item.CalculatedCompanyDollar,
			VarianceAmount:     item.VarianceAmount,
			VariancePercentage: item.VariancePercentage,
			Category:           string(item.VarianceCategory),
		})
	}
	for _, a := range report.ByAgent() {
		resp.ByAgent = append(resp.ByAgent, AgentVarianceDTO{
			AgentName:         a.AgentName,
			RecordCount:       a.RecordCount,
			TotalVariance:     a.TotalVariance,
			AveragePercentage: a.AveragePercentage,
			MajorIssueCount:   a.MajorIssueCount,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// ExportVariance runs the same reconciliation and returns the items as CSV.
// POST /api/commissions/variance/export
func (h *Handler) ExportVariance(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runVariance(w, r)
	if !ok {
		return
	}
	writeCSV(w, "variance_report.csv", engine.ExportVarianceAsCSV(report.Items))
}

func (h *Handler) runVariance(w http.ResponseWriter, r *http.Request) (*engine.VarianceReport, bool) {
	var req VarianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return nil, false
	}
	if len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "At least one record is required", nil)
		return nil, false
	}

	records := make([]engine.VarianceRecord, 0, len(req.Records))
	for _, dto := range req.Records {
		records = append(records, dto.toEngine())
	}

	opts := engine.VarianceOptions{}
	if req.MajorThreshold > 0 {
		opts.MajorThreshold = decimal.NewFromFloat(req.MajorThreshold)
	}
	return engine.CalculateCommissionVariance(records, opts), true
}

// =============================================================================
// ADJUSTMENT HANDLERS
// =============================================================================

// ListAdjustments returns all adjustments ordered by creation time.
// GET /api/adjustments
func (h *Handler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	adjustments, err := h.Ledger.Adjustments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list adjustments", err)
		return
	}

	dtos := make([]AdjustmentDTO, len(adjustments))
	for i, adj := range adjustments {
		dtos[i] = toAdjustmentDTO(adj)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAdjustment returns a single adjustment.
// GET /api/adjustments/{id}
func (h *Handler) GetAdjustment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	adj, err := h.Ledger.Adjustment(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get adjustment", err)
		return
	}
	if adj == nil {
		writeError(w, http.StatusNotFound, "Adjustment not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toAdjustmentDTO(*adj))
}

// CreateAdjustment records a new pending adjustment.
// POST /api/adjustments
func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var req CreateAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	adj, err := h.Ledger.CreateAdjustment(
		r.Context(),
		req.LoopID, req.AgentName,
		decimal.NewFromFloat(req.OriginalValue),
		decimal.NewFromFloat(req.AdjustedValue),
		req.Reason, req.CreatedBy,
	)
	if err != nil {
		writeLedgerError(w, "Failed to create adjustment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAdjustmentDTO(adj))
}

// UpdateAdjustment changes an adjustment's value and/or reason.
// PUT /api/adjustments/{id}
func (h *Handler) UpdateAdjustment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	adj, err := h.Ledger.UpdateAdjustment(r.Context(), id, decimal.NewFromFloat(req.AdjustedValue), req.Reason, req.Actor)
	if err != nil {
		writeLedgerError(w, "Failed to update adjustment", err)
		return
	}
	writeJSON(w, http.StatusOK, toAdjustmentDTO(adj))
}

// ApproveAdjustment transitions pending -> approved.
// POST /api/adjustments/{id}/approve
func (h *Handler) ApproveAdjustment(w http.ResponseWriter, r *http.Request) {
	h.resolveAdjustment(w, r, h.Ledger.ApproveAdjustment)
}

// RejectAdjustment transitions pending -> rejected.
// POST /api/adjustments/{id}/reject
func (h *Handler) RejectAdjustment(w http.ResponseWriter, r *http.Request) {
	h.resolveAdjustment(w, r, h.Ledger.RejectAdjustment)
}

func (h *Handler) resolveAdjustment(
	w http.ResponseWriter,
	r *http.Request,
	resolve func(ctx context.Context, id, actor string) (ledger.VarianceAdjustment, error),
) {
	id := chi.URLParam(r, "id")

	var req ResolveAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	adj, err := resolve(r.Context(), id, req.Actor)
	if err != nil {
		writeLedgerError(w, "Failed to resolve adjustment", err)
		return
	}
	writeJSON(w, http.StatusOK, toAdjustmentDTO(adj))
}

// RevertAdjustment removes an adjustment. The audit trail survives.
// DELETE /api/adjustments/{id}
func (h *Handler) RevertAdjustment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor := r.URL.Query().Get("actor")

	if err := h.Ledger.RevertAdjustment(r.Context(), id, actor); err != nil {
		writeLedgerError(w, "Failed to revert adjustment", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "reverted", "id": id})
}

// SummarizeAdjustments returns population statistics.
// GET /api/adjustments/summary
func (h *Handler) SummarizeAdjustments(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Ledger.Summarize(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to summarize adjustments", err)
		return
	}

	byStatus := make(map[string]int, len(summary.CountsByStatus))
	for status, n := range summary.CountsByStatus {
		byStatus[string(status)] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":              summary.Total,
		"counts_by_status":   byStatus,
		"counts_by_reason":   summary.CountsByReason,
		"average_adjustment": summary.AverageAdjustment,
	})
}

// ExportAdjustments returns all adjustments as CSV.
// GET /api/adjustments/export
func (h *Handler) ExportAdjustments(w http.ResponseWriter, r *http.Request) {
	adjustments, err := h.Ledger.Adjustments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list adjustments", err)
		return
	}
	writeCSV(w, "adjustments.csv", ledger.ExportAdjustmentsAsCSV(adjustments))
}

// =============================================================================
// AUDIT HANDLERS
// =============================================================================

// GetAuditTrail returns one adjustment's audit entries in append order.
// GET /api/adjustments/{id}/audit
func (h *Handler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entries, err := h.Ledger.AuditTrail(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get audit trail", err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditDTOs(entries))
}

// ListAuditLog returns the complete audit log in append order.
// GET /api/audit
func (h *Handler) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Ledger.AuditLog(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get audit log", err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditDTOs(entries))
}

// ExportAuditLog returns the complete audit log as CSV.
// GET /api/audit/export
func (h *Handler) ExportAuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Ledger.AuditLog(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get audit log", err)
		return
	}
	writeCSV(w, "audit_log.csv", ledger.ExportAuditLogAsCSV(entries))
}

// =============================================================================
// CONFIGURATION HANDLERS
// =============================================================================

// ListPlans returns all plans.
// GET /api/plans
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, _, _ := h.batchConfig()
	dtos := make([]config.PlanYAML, len(plans))
	for i, p := range plans {
		dtos[i] = toPlanYAML(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePlan validates, persists, and caches a plan. An existing plan
// with the same id is replaced.
// POST /api/plans
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req config.PlanYAML
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	plan, err := config.ConvertPlan(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid plan", err)
		return
	}
	if err := h.Store.SavePlan(r.Context(), plan); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save plan", err)
		return
	}
	if err := h.LoadConfig(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload configuration", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// ListTeams returns all teams.
// GET /api/teams
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	_, teams, _ := h.batchConfig()
	dtos := make([]config.TeamYAML, len(teams))
	for i, t := range teams {
		dtos[i] = config.TeamYAML{
			ID:                  string(t.ID),
			Name:                t.Name,
			LeadAgent:           t.LeadAgent,
			TeamSplitPercentage: t.TeamSplitPercentage.InexactFloat64(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTeam validates, persists, and caches a team.
// POST /api/teams
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req config.TeamYAML
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	team, err := config.ConvertTeam(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid team", err)
		return
	}
	if err := h.Store.SaveTeam(r.Context(), team); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save team", err)
		return
	}
	if err := h.LoadConfig(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload configuration", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// ListAssignments returns all agent assignments.
// GET /api/assignments
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	_, _, assignments := h.batchConfig()
	dtos := make([]config.AssignmentYAML, len(assignments))
	for i, a := range assignments {
		dto := config.AssignmentYAML{
			AgentName:   a.AgentName,
			PlanID:      string(a.PlanID),
			TeamID:      string(a.TeamID),
			Anniversary: a.Anniversary.String(),
		}
		if !a.StartDate.IsZero() {
			dto.StartDate = a.StartDate.String()
		}
		dtos[i] = dto
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAssignment validates, persists, and caches an assignment. The
// referenced plan (and team, if any) must already exist.
// POST /api/assignments
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req config.AssignmentYAML
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	assignment, err := config.ConvertAssignment(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment", err)
		return
	}

	plans, teams, _ := h.batchConfig()
	if !planExists(plans, assignment.PlanID) {
		writeError(w, http.StatusBadRequest, "Unknown plan", engine.ErrPlanNotFound)
		return
	}
	if assignment.TeamID != "" && !teamExists(teams, assignment.TeamID) {
		writeError(w, http.StatusBadRequest, "Unknown team", engine.ErrTeamNotFound)
		return
	}

	if err := h.Store.SaveAssignment(r.Context(), assignment); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save assignment", err)
		return
	}
	if err := h.LoadConfig(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload configuration", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func planExists(plans []engine.CommissionPlan, id engine.PlanID) bool {
	for _, p := range plans {
		if p.ID == id {
			return true
		}
	}
	return false
}

func teamExists(teams []engine.Team, id engine.TeamID) bool {
	for _, t := range teams {
		if t.ID == id {
			return true
		}
	}
	return false
}

// =============================================================================
// HELPERS
// =============================================================================

func toAdjustmentDTO(adj ledger.VarianceAdjustment) AdjustmentDTO {
	return AdjustmentDTO{
		ID:               adj.ID,
		LoopID:           adj.LoopID,
		AgentName:        adj.AgentName,
		OriginalValue:    adj.OriginalValue,
		AdjustedValue:    adj.AdjustedValue,
		AdjustmentAmount: adj.AdjustmentAmount,
		Reason:           adj.Reason,
		Status:           string(adj.Status),
		CreatedBy:        adj.CreatedBy,
		ApprovedBy:       adj.ApprovedBy,
		CreatedAt:        adj.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        adj.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toAuditDTOs(entries []ledger.AuditLogEntry) []AuditEntryDTO {
	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = AuditEntryDTO{
			ID:            e.ID,
			AdjustmentID:  e.AdjustmentID,
			Action:        string(e.Action),
			Actor:         e.Actor,
			Timestamp:     e.Timestamp.UTC().Format(time.RFC3339),
			PreviousValue: e.PreviousValue,
			NewValue:      e.NewValue,
		}
	}
	return dtos
}

func toPlanYAML(p engine.CommissionPlan) config.PlanYAML {
	out := config.PlanYAML{
		ID:                string(p.ID),
		Name:              p.Name,
		SplitPercentage:   p.SplitPercentage.InexactFloat64(),
		CapAmount:         p.CapAmount.InexactFloat64(),
		PostCapSplit:      p.PostCapSplit.InexactFloat64(),
		UseSliding:        p.UseSliding,
		RoyaltyPercentage: p.RoyaltyPercentage.InexactFloat64(),
		RoyaltyCap:        p.RoyaltyCap.InexactFloat64(),
	}
	for _, t := range p.Tiers {
		out.Tiers = append(out.Tiers, config.TierYAML{
			ID:              t.ID,
			Threshold:       t.Threshold.InexactFloat64(),
			SplitPercentage: t.SplitPercentage.InexactFloat64(),
			Description:     t.Description,
		})
	}
	for _, d := range p.Deductions {
		out.Deductions = append(out.Deductions, config.DeductionYAML{
			Type:        string(d.Type),
			Amount:      d.Amount.InexactFloat64(),
			Description: d.Description,
		})
	}
	return out
}

// writeLedgerError maps ledger errors to HTTP statuses.
func writeLedgerError(w http.ResponseWriter, message string, err error) {
	var notFound *ledger.NotFoundError
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, "Adjustment not found", err)
	case errors.Is(err, ledger.ErrNotPending):
		writeError(w, http.StatusConflict, "Adjustment is no longer pending", err)
	case errors.Is(err, ledger.ErrMissingReason):
		writeError(w, http.StatusBadRequest, "Reason is required", err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeCSV(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
