/*
handlers_test.go - Handler tests over the real router and SQLite store

Tests for:
- Batch calculation over the cached configuration
- Variance reconciliation classification
- Adjustment lifecycle and its audit trail via HTTP
- Configuration validation at the API boundary
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/engine"
	"github.com/warp/commission-engine/store/sqlite"
)

func newTestHandler(t *testing.T) (*Handler, http.Handler) {
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	plan := engine.CommissionPlan{
		ID:              "standard-70-30",
		Name:            "Standard 70/30",
		SplitPercentage: decimal.NewFromInt(70),
		PostCapSplit:    decimal.NewFromInt(100),
	}
	if err := store.SavePlan(ctx, plan); err != nil {
		t.Fatalf("Failed to save plan: %v", err)
	}
	anniversary, _ := engine.ParseMonthDay("01-01")
	start, _ := engine.ParseDate("2023-01-01")
	assignment := engine.AgentAssignment{
		AgentName:   "Sarah Miller",
		PlanID:      "standard-70-30",
		Anniversary: anniversary,
		StartDate:   start,
	}
	if err := store.SaveAssignment(ctx, assignment); err != nil {
		t.Fatalf("Failed to save assignment: %v", err)
	}

	h := NewHandler(store)
	if err := h.LoadConfig(ctx); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return h, NewRouter(h)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// CALCULATION ENDPOINT TESTS
// =============================================================================

func TestCalculateEndpoint(t *testing.T) {
	// GIVEN: A stored 70/30 plan assigned to Sarah Miller
	// WHEN: Posting one closed transaction
	// THEN: The response carries her breakdown and YTD summary

	_, router := newTestHandler(t)
	rec := doJSON(t, router, http.MethodPost, "/api/commissions/calculate", CalculateRequest{
		Transactions: []TransactionDTO{
			{LoopID: "L-100", Agents: "Sarah Miller", CommissionTotal: 10000, ClosingDate: "2024-02-01"},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp CalculateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Breakdowns) != 1 || len(resp.Summaries) != 1 {
		t.Fatalf("response = %+v", resp)
	}

	b := resp.Breakdowns[0]
	if !b.AgentNetCommission.Equal(decimal.NewFromInt(7000)) {
		t.Errorf("agent net = %s, want 7000", b.AgentNetCommission)
	}
	if b.SplitType != string(engine.SplitSimple) {
		t.Errorf("split type = %s", b.SplitType)
	}
}

func TestCalculateEndpoint_EmptyBodyRejected(t *testing.T) {
	_, router := newTestHandler(t)
	rec := doJSON(t, router, http.MethodPost, "/api/commissions/calculate", CalculateRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestVarianceEndpoint(t *testing.T) {
	// A 5.0% variance classifies major under the default threshold.
	_, router := newTestHandler(t)
	rec := doJSON(t, router, http.MethodPost, "/api/commissions/variance", VarianceRequest{
		Records: []VarianceRecordDTO{
			{LoopID: "L-1", AgentName: "Sarah Miller", CommissionTotal: 3500, ReportedSplitPercentage: 70, CSVCompanyDollar: 1000},
			{LoopID: "L-2", AgentName: "Sarah Miller", CommissionTotal: 10000, ReportedSplitPercentage: 70, CSVCompanyDollar: 3000},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp VarianceResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Summary.MajorCount != 1 || resp.Summary.ExactCount != 1 {
		t.Errorf("summary = %+v", resp.Summary)
	}
	if len(resp.ByAgent) != 1 || resp.ByAgent[0].RecordCount != 2 {
		t.Errorf("by agent = %+v", resp.ByAgent)
	}
}

// =============================================================================
// ADJUSTMENT ENDPOINT TESTS
// =============================================================================

func TestAdjustmentLifecycleOverHTTP(t *testing.T) {
	// GIVEN: A created adjustment
	// WHEN: Approving it, then approving again
	// THEN: 201 -> 200 -> 409, with a complete audit trail

	_, router := newTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/adjustments", CreateAdjustmentRequest{
		LoopID:        "L-100",
		AgentName:     "Sarah Miller",
		OriginalValue: 3000,
		AdjustedValue: 3150,
		Reason:        "CSV import error",
		CreatedBy:     "reviewer-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created AdjustmentDTO
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.Status != "pending" {
		t.Errorf("status = %s, want pending", created.Status)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/adjustments/"+created.ID+"/approve", ResolveAdjustmentRequest{Actor: "manager-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/adjustments/"+created.ID+"/approve", ResolveAdjustmentRequest{Actor: "manager-2"})
	if rec.Code != http.StatusConflict {
		t.Errorf("second approve status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/adjustments/"+created.ID+"/audit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit status = %d", rec.Code)
	}
	var trail []AuditEntryDTO
	if err := json.NewDecoder(rec.Body).Decode(&trail); err != nil {
		t.Fatal(err)
	}
	if len(trail) != 2 || trail[0].Action != "created" || trail[1].Action != "approved" {
		t.Errorf("trail = %+v", trail)
	}
}

func TestAdjustmentNotFoundOverHTTP(t *testing.T) {
	_, router := newTestHandler(t)
	rec := doJSON(t, router, http.MethodGet, "/api/adjustments/no-such-id", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCreateAdjustment_MissingReasonRejected(t *testing.T) {
	_, router := newTestHandler(t)
	rec := doJSON(t, router, http.MethodPost, "/api/adjustments", CreateAdjustmentRequest{
		LoopID:        "L-100",
		AgentName:     "Sarah Miller",
		OriginalValue: 3000,
		AdjustedValue: 3150,
		CreatedBy:     "reviewer-1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// =============================================================================
// CONFIGURATION ENDPOINT TESTS
// =============================================================================

func TestCreatePlan_InvalidTiersRejected(t *testing.T) {
	_, router := newTestHandler(t)

	body := map[string]any{
		"id":          "broken",
		"use_sliding": true,
		"tiers": []map[string]any{
			{"threshold": 5000, "split_percentage": 60, "description": "Tier 1"},
		},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/plans", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreateAssignment_UnknownPlanRejected(t *testing.T) {
	_, router := newTestHandler(t)

	body := map[string]any{
		"agent_name":  "James Wilson",
		"plan_id":     "missing-plan",
		"anniversary": "06-01",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/assignments", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCreatePlan_RefreshesCache(t *testing.T) {
	// GIVEN: A new plan posted over HTTP
	// THEN: A subsequent calculation for its assignee uses it

	h, router := newTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/plans", map[string]any{
		"id":               "capped-80-20",
		"name":             "Capped 80/20",
		"split_percentage": 80,
		"cap_amount":       25000,
		"post_cap_split":   100,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	plans, _, _ := h.batchConfig()
	if len(plans) != 2 {
		t.Errorf("cached plans = %d, want 2", len(plans))
	}
}
