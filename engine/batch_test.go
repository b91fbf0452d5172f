package engine_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/warp/commission-engine/engine"
)

// =============================================================================
// BATCH FIXTURES
// =============================================================================

func batchConfig() ([]engine.CommissionPlan, []engine.Team, []engine.AgentAssignment) {
	plans := []engine.CommissionPlan{
		flatPlan70("flat-70"),
		cappedBatchPlan(),
	}
	teams := []engine.Team{
		{ID: "north-group", Name: "North Group", LeadAgent: "Sarah Miller", TeamSplitPercentage: dec(10)},
	}
	assignments := []engine.AgentAssignment{
		{AgentName: "Sarah Miller", PlanID: "flat-70", TeamID: "north-group", Anniversary: md("01-01")},
		{AgentName: "James Wilson", PlanID: "capped", TeamID: "north-group", Anniversary: md("01-01")},
		{AgentName: "Emily Rodriguez", PlanID: "flat-70", Anniversary: md("01-01")},
	}
	return plans, teams, assignments
}

func flatPlan70(id engine.PlanID) engine.CommissionPlan {
	return engine.CommissionPlan{ID: id, Name: "Flat 70", SplitPercentage: dec(70), PostCapSplit: dec(100)}
}

func cappedBatchPlan() engine.CommissionPlan {
	return engine.CommissionPlan{
		ID:              "capped",
		Name:            "Capped 70",
		SplitPercentage: dec(70),
		CapAmount:       dec(50000),
		PostCapSplit:    dec(100),
	}
}

func md(s string) engine.MonthDay {
	m, err := engine.ParseMonthDay(s)
	if err != nil {
		panic(err)
	}
	return m
}

// =============================================================================
// CAP TRANSITION ACROSS AN ORDERED STREAM
// =============================================================================

func TestBatch_CapTransitionsInClosingDateOrder(t *testing.T) {
	// GIVEN: Three transactions for one capped agent, supplied OUT of order
	// WHEN: Running the batch
	// THEN: The fold happens in closing-date order: pre-cap, mixed, post-cap

	plans := []engine.CommissionPlan{cappedBatchPlan()}
	assignments := []engine.AgentAssignment{
		{AgentName: "James Wilson", PlanID: "capped", Anniversary: md("01-01")},
	}
	txs := []engine.Transaction{
		closedTx("L-3", "James Wilson", 10000, "2024-03-15"),
		closedTx("L-1", "James Wilson", 30000, "2024-01-15"),
		closedTx("L-2", "James Wilson", 25000, "2024-02-15"),
	}

	result, err := engine.NewOrchestrator().Calculate(engine.BatchInput{
		Transactions: txs,
		Plans:        plans,
		Assignments:  assignments,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Breakdowns) != 3 {
		t.Fatalf("expected 3 breakdowns, got %d", len(result.Breakdowns))
	}

	wantTypes := []engine.SplitType{engine.SplitPreCap, engine.SplitMixed, engine.SplitPostCap}
	wantNets := []float64{21000, 19000, 10000}
	wantYTDAfter := []float64{30000, 55000, 65000}
	for i, b := range result.Breakdowns {
		if b.SplitType != wantTypes[i] {
			t.Errorf("breakdown %d split type = %s, want %s", i, b.SplitType, wantTypes[i])
		}
		assertMoney(t, b.AgentNetCommission, wantNets[i], "agent net")
		assertMoney(t, b.YTDCompanyDollarAfter, wantYTDAfter[i], "ytd after")
	}
}

func TestBatch_DeterministicAcrossInputOrder(t *testing.T) {
	// GIVEN: The same transactions in two different input orders
	// THEN: Outputs are identical

	plans, teams, assignments := batchConfig()
	txs := []engine.Transaction{
		closedTx("L-10", "Sarah Miller", 12000, "2024-02-01"),
		closedTx("L-11", "James Wilson", 9000, "2024-02-01"),
		closedTx("L-12", "Sarah Miller, James Wilson", 8000, "2024-03-01"),
		closedTx("L-13", "Emily Rodriguez", 15000, "2024-01-20"),
	}
	reversed := make([]engine.Transaction, len(txs))
	for i, tx := range txs {
		reversed[len(txs)-1-i] = tx
	}

	run := func(input []engine.Transaction) *engine.BatchResult {
		result, err := engine.NewOrchestrator().Calculate(engine.BatchInput{
			Transactions: input,
			Plans:        plans,
			Teams:        teams,
			Assignments:  assignments,
		})
		if err != nil {
			t.Fatal(err)
		}
		return result
	}

	a, b := run(txs), run(reversed)
	if len(a.Breakdowns) != len(b.Breakdowns) {
		t.Fatalf("breakdown counts differ: %d vs %d", len(a.Breakdowns), len(b.Breakdowns))
	}
	for i := range a.Breakdowns {
		x, y := a.Breakdowns[i], b.Breakdowns[i]
		if x.LoopID != y.LoopID || x.AgentName != y.AgentName || !x.AgentNetCommission.Equal(y.AgentNetCommission) {
			t.Errorf("breakdown %d differs: %+v vs %+v", i, x, y)
		}
	}
	for i := range a.Summaries {
		x, y := a.Summaries[i], b.Summaries[i]
		if x.AgentName != y.AgentName || !x.TotalAgentCommission.Equal(y.TotalAgentCommission) {
			t.Errorf("summary %d differs: %+v vs %+v", i, x, y)
		}
	}
}

func TestBatch_BoundedParallelism(t *testing.T) {
	// The semaphore bound must not change results.
	plans, teams, assignments := batchConfig()
	txs := []engine.Transaction{
		closedTx("L-20", "Sarah Miller", 12000, "2024-02-01"),
		closedTx("L-21", "James Wilson", 9000, "2024-02-01"),
		closedTx("L-22", "Emily Rodriguez", 15000, "2024-01-20"),
	}

	o := engine.NewOrchestrator()
	o.MaxParallelAgents = 1
	result, err := o.Calculate(engine.BatchInput{
		Transactions: txs,
		Plans:        plans,
		Teams:        teams,
		Assignments:  assignments,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Breakdowns) != 3 {
		t.Fatalf("expected 3 breakdowns, got %d", len(result.Breakdowns))
	}
}

// =============================================================================
// MULTI-AGENT / TEAM TESTS
// =============================================================================

func TestBatch_CoListedAgentsEachGetBreakdown(t *testing.T) {
	plans, teams, assignments := batchConfig()
	txs := []engine.Transaction{
		closedTx("L-30", "Sarah Miller, Emily Rodriguez", 10000, "2024-04-01"),
	}

	result, err := engine.NewOrchestrator().Calculate(engine.BatchInput{
		Transactions: txs,
		Plans:        plans,
		Teams:        teams,
		Assignments:  assignments,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Breakdowns) != 2 {
		t.Fatalf("expected 2 breakdowns, got %d", len(result.Breakdowns))
	}
	for _, b := range result.Breakdowns {
		assertMoney(t, b.GrossCommissionIncome, 5000, "prorated gci for "+b.AgentName)
	}
}

func TestBatch_TeamRedirectBookedToLeadSummary(t *testing.T) {
	// GIVEN: A team member's transaction with a 10% redirect to the lead
	// WHEN: Running the batch
	// THEN: Member's summary nets exclude the redirect; lead's includes it

	plans, teams, assignments := batchConfig()
	txs := []engine.Transaction{
		closedTx("L-40", "James Wilson", 10000, "2024-02-01"),
		closedTx("L-41", "Sarah Miller", 10000, "2024-02-10"),
	}

	result, err := engine.NewOrchestrator().Calculate(engine.BatchInput{
		Transactions: txs,
		Plans:        plans,
		Teams:        teams,
		Assignments:  assignments,
	})
	if err != nil {
		t.Fatal(err)
	}

	var james, sarah *engine.YTDSummary
	for i := range result.Summaries {
		switch result.Summaries[i].AgentName {
		case "James Wilson":
			james = &result.Summaries[i]
		case "Sarah Miller":
			sarah = &result.Summaries[i]
		}
	}
	if james == nil || sarah == nil {
		t.Fatalf("missing summaries: %+v", result.Summaries)
	}

	// James: net 7000 minus 700 redirect.
	assertMoney(t, james.TotalAgentCommission, 6300, "member total")
	// Sarah: own net 7000 plus the 700 credit.
	assertMoney(t, sarah.TotalAgentCommission, 7700, "lead total")
}

func TestBatch_TeamRedirectToInactiveLead(t *testing.T) {
	// A lead with no transactions of their own still gets a summary window
	// carrying the credit.
	plans, teams, assignments := batchConfig()
	txs := []engine.Transaction{
		closedTx("L-42", "James Wilson", 10000, "2024-02-01"),
	}

	result, err := engine.NewOrchestrator().Calculate(engine.BatchInput{
		Transactions: txs,
		Plans:        plans,
		Teams:        teams,
		Assignments:  assignments,
	})
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, s := range result.Summaries {
		if s.AgentName == "Sarah Miller" {
			found = true
			assertMoney(t, s.TotalAgentCommission, 700, "credit-only lead total")
			if s.TransactionCount != 0 {
				t.Errorf("credit-only window should have 0 transactions, got %d", s.TransactionCount)
			}
		}
	}
	if !found {
		t.Error("lead summary missing")
	}
}

// =============================================================================
// FAILURE POLICY TESTS
// =============================================================================

func TestBatch_DataErrorsAreRecordedNotFatal(t *testing.T) {
	// GIVEN: Records missing loop id, agents, and closing date mixed with
	//        one good record
	// THEN: The good record processes; the bad ones land in Errors

	plans, teams, assignments := batchConfig()
	badDate := closedTx("L-52", "Sarah Miller", 5000, "2024-02-01")
	badDate.ClosingDate = engine.Date{}
	txs := []engine.Transaction{
		{Agents: "Sarah Miller", CommissionTotal: dec(5000)}, // no loop id
		closedTx("L-51", "", 5000, "2024-02-01"),             // no agents
		badDate,                                              // no closing date
		closedTx("L-50", "Sarah Miller", 10000, "2024-02-01"),
	}

	result, err := engine.NewOrchestrator().Calculate(engine.BatchInput{
		Transactions: txs,
		Plans:        plans,
		Teams:        teams,
		Assignments:  assignments,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Breakdowns) != 1 {
		t.Fatalf("expected 1 breakdown, got %d", len(result.Breakdowns))
	}
	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 record errors, got %d: %v", len(result.Errors), result.Errors)
	}
}

func TestBatch_UnassignedAgentUsesReportedFigures(t *testing.T) {
	// GIVEN: An agent with no assignment and CSV-reported figures
	// THEN: The fallback breakdown carries the reported numbers and the
	//       agent is listed as unassigned

	tx := closedTx("L-60", "Walk-in Agent", 10000, "2024-02-01")
	tx.ReportedAgentNet = dec(6500)
	tx.ReportedCompanyDollar = dec(3500)

	result, err := engine.NewOrchestrator().Calculate(engine.BatchInput{
		Transactions: []engine.Transaction{tx},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Breakdowns) != 1 {
		t.Fatalf("expected 1 breakdown, got %d", len(result.Breakdowns))
	}

	b := result.Breakdowns[0]
	assertMoney(t, b.AgentNetCommission, 6500, "reported net")
	assertMoney(t, b.BrokerageSplitAmount, 3500, "reported company dollar")
	if b.SplitType != engine.SplitSimple {
		t.Errorf("fallback split type = %s", b.SplitType)
	}

	unassigned := result.AgentsWithoutPlans()
	if len(unassigned) != 1 || unassigned[0] != "Walk-in Agent" {
		t.Errorf("unassigned = %v", unassigned)
	}
}

func TestBatch_AssignmentWithUnknownPlanFailsFast(t *testing.T) {
	_, err := engine.NewOrchestrator().Calculate(engine.BatchInput{
		Transactions: []engine.Transaction{closedTx("L-70", "Sarah Miller", 1000, "2024-02-01")},
		Assignments: []engine.AgentAssignment{
			{AgentName: "Sarah Miller", PlanID: "missing", Anniversary: md("01-01")},
		},
	})
	if !errors.Is(err, engine.ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestBatch_InvalidSlidingPlanFailsFast(t *testing.T) {
	plan := slidingPlan()
	plan.Tiers[0].Threshold = dec(99)

	_, err := engine.NewOrchestrator().Calculate(engine.BatchInput{
		Transactions: []engine.Transaction{closedTx("L-71", "Sarah Miller", 1000, "2024-02-01")},
		Plans:        []engine.CommissionPlan{plan},
		Assignments: []engine.AgentAssignment{
			{AgentName: "Sarah Miller", PlanID: plan.ID, Anniversary: md("01-01")},
		},
	})
	if !errors.Is(err, engine.ErrInvalidTierConfig) {
		t.Errorf("expected ErrInvalidTierConfig, got %v", err)
	}
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestExportBreakdownsAsCSV(t *testing.T) {
	plans, teams, assignments := batchConfig()
	result, err := engine.NewOrchestrator().Calculate(engine.BatchInput{
		Transactions: []engine.Transaction{closedTx("L-80", "Sarah Miller", 10000, "2024-02-01")},
		Plans:        plans,
		Teams:        teams,
		Assignments:  assignments,
	})
	if err != nil {
		t.Fatal(err)
	}

	out := engine.ExportBreakdownsAsCSV(result.Breakdowns)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "L-80") || !strings.Contains(lines[1], "7000.00") {
		t.Errorf("unexpected row: %s", lines[1])
	}
}
