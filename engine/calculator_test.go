package engine_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/engine"
)

// =============================================================================
// PLAN FIXTURES
// =============================================================================

func flatPlan(split float64) engine.CommissionPlan {
	return engine.CommissionPlan{
		ID:              "flat",
		Name:            "Flat",
		SplitPercentage: dec(split),
		PostCapSplit:    dec(100),
	}
}

func cappedPlan(split, cap, postCap float64) engine.CommissionPlan {
	plan := flatPlan(split)
	plan.ID = "capped"
	plan.CapAmount = dec(cap)
	plan.PostCapSplit = dec(postCap)
	return plan
}

func slidingPlan() engine.CommissionPlan {
	return engine.CommissionPlan{
		ID:         "sliding",
		Name:       "Sliding",
		UseSliding: true,
		Tiers:      validTiers(),
	}
}

func closedTx(loopID string, agents string, gci float64, closing string) engine.Transaction {
	date, _ := engine.ParseDate(closing)
	return engine.Transaction{
		LoopID:          loopID,
		Agents:          agents,
		CommissionTotal: dec(gci),
		ClosingDate:     date,
	}
}

// =============================================================================
// FLAT PLAN TESTS
// =============================================================================

func TestCalculate_SimpleFlatSplit(t *testing.T) {
	// GIVEN: Uncapped 70/30 plan, $10,000 GCI
	// WHEN: Calculating a single-agent transaction
	// THEN: Agent nets $7,000, brokerage keeps $3,000

	calc := engine.NewCalculator()
	tx := closedTx("L-100", "Sarah Miller", 10000, "2024-04-10")

	b, err := calc.CalculateTransactionCommission(tx, "Sarah Miller", flatPlan(70), nil, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}

	assertMoney(t, b.GrossCommissionIncome, 10000, "gci")
	assertMoney(t, b.AgentNetCommission, 7000, "agent net")
	assertMoney(t, b.BrokerageSplitAmount, 3000, "company dollar")
	if b.SplitType != engine.SplitSimple {
		t.Errorf("split type = %s, want simple", b.SplitType)
	}
}

func TestCalculate_DerivedGCIFromSalePrice(t *testing.T) {
	// GIVEN: No precomputed commission total
	// THEN: GCI falls back to salePrice * rate / 100
	calc := engine.NewCalculator()
	date, _ := engine.ParseDate("2024-04-10")
	tx := engine.Transaction{
		LoopID:         "L-101",
		Agents:         "Sarah Miller",
		SalePrice:      dec(450000),
		CommissionRate: dec(2.5),
		ClosingDate:    date,
	}

	b, err := calc.CalculateTransactionCommission(tx, "Sarah Miller", flatPlan(70), nil, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, b.GrossCommissionIncome, 11250, "derived gci")
}

func TestCalculate_PreCap(t *testing.T) {
	calc := engine.NewCalculator()
	tx := closedTx("L-102", "Sarah Miller", 10000, "2024-04-10")

	b, err := calc.CalculateTransactionCommission(tx, "Sarah Miller", cappedPlan(70, 50000, 100), nil, dec(20000))
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, b.AgentNetCommission, 7000, "agent net")
	if b.SplitType != engine.SplitPreCap {
		t.Errorf("split type = %s, want pre-cap", b.SplitType)
	}
	assertMoney(t, b.YTDCompanyDollarAfter, 30000, "ytd after")
}

func TestCalculate_MixedAtCapBoundary(t *testing.T) {
	// GIVEN: $50,000 cap, $45,000 YTD progress, $10,000 GCI transaction
	// WHEN: Calculating the straddling transaction
	// THEN: $5,000 splits at 70% and $5,000 at the 100% post-cap rate

	calc := engine.NewCalculator()
	tx := closedTx("L-103", "Sarah Miller", 10000, "2024-04-10")

	b, err := calc.CalculateTransactionCommission(tx, "Sarah Miller", cappedPlan(70, 50000, 100), nil, dec(45000))
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, b.AgentNetCommission, 8500, "agent net")
	assertMoney(t, b.BrokerageSplitAmount, 1500, "company dollar")
	if b.SplitType != engine.SplitMixed {
		t.Errorf("split type = %s, want mixed", b.SplitType)
	}
	assertMoney(t, b.YTDCompanyDollarAfter, 55000, "ytd after")
}

func TestCalculate_PostCap(t *testing.T) {
	calc := engine.NewCalculator()
	tx := closedTx("L-104", "Sarah Miller", 10000, "2024-04-10")

	b, err := calc.CalculateTransactionCommission(tx, "Sarah Miller", cappedPlan(70, 50000, 100), nil, dec(60000))
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, b.AgentNetCommission, 10000, "agent net")
	assertMoney(t, b.BrokerageSplitAmount, 0, "company dollar")
	if b.SplitType != engine.SplitPostCap {
		t.Errorf("split type = %s, want post-cap", b.SplitType)
	}
}

func TestCalculate_ExactlyAtCapIsPostCap(t *testing.T) {
	// YTD exactly equal to the cap: the whole transaction is post-cap.
	calc := engine.NewCalculator()
	tx := closedTx("L-105", "Sarah Miller", 1000, "2024-04-10")

	b, err := calc.CalculateTransactionCommission(tx, "Sarah Miller", cappedPlan(70, 50000, 90), nil, dec(50000))
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, b.AgentNetCommission, 900, "agent net")
	if b.SplitType != engine.SplitPostCap {
		t.Errorf("split type = %s, want post-cap", b.SplitType)
	}
}

func TestCalculate_AgentNetNeverDecreasesWithProgress(t *testing.T) {
	// GIVEN: A capped plan whose post-cap split exceeds the base split
	// THEN: Agent net on the same GCI is monotonically non-decreasing in YTD

	calc := engine.NewCalculator()
	plan := cappedPlan(70, 50000, 100)
	tx := closedTx("L-106", "Sarah Miller", 10000, "2024-04-10")

	prev := decimal.Zero
	for ytd := 0; ytd <= 60000; ytd += 5000 {
		b, err := calc.CalculateTransactionCommission(tx, "Sarah Miller", plan, nil, dec(float64(ytd)))
		if err != nil {
			t.Fatal(err)
		}
		if b.AgentNetCommission.LessThan(prev) {
			t.Fatalf("agent net decreased at ytd=%d: %s < %s", ytd, b.AgentNetCommission, prev)
		}
		prev = b.AgentNetCommission
	}
}

// =============================================================================
// SLIDING PLAN TESTS
// =============================================================================

func TestCalculate_SlidingAcrossTierBoundary(t *testing.T) {
	// GIVEN: Tiers 60% to $100k / 70% to $200k, YTD $95,000, GCI $10,000
	// THEN: $5,000 at 60% + $5,000 at 70% = $6,500

	calc := engine.NewCalculator()
	tx := closedTx("L-200", "Emily Rodriguez", 10000, "2024-05-01")

	b, err := calc.CalculateTransactionCommission(tx, "Emily Rodriguez", slidingPlan(), nil, dec(95000))
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, b.AgentNetCommission, 6500, "agent net")
	if b.SplitType != engine.SplitTiered {
		t.Errorf("split type = %s, want tiered", b.SplitType)
	}
}

func TestCalculate_SlidingWithinSingleTier(t *testing.T) {
	calc := engine.NewCalculator()
	tx := closedTx("L-201", "Emily Rodriguez", 10000, "2024-05-01")

	b, err := calc.CalculateTransactionCommission(tx, "Emily Rodriguez", slidingPlan(), nil, dec(250000))
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, b.AgentNetCommission, 8000, "agent net in top tier")
}

func TestCalculate_InvalidTiersFailLoudly(t *testing.T) {
	// GIVEN: A sliding plan whose tiers are out of order
	// THEN: Calculation fails with a config error, never a flat-split result

	plan := slidingPlan()
	plan.Tiers[2].Threshold = dec(50000)

	calc := engine.NewCalculator()
	tx := closedTx("L-202", "Emily Rodriguez", 10000, "2024-05-01")

	_, err := calc.CalculateTransactionCommission(tx, "Emily Rodriguez", plan, nil, decimal.Zero)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, engine.ErrInvalidTierConfig) {
		t.Errorf("error should wrap ErrInvalidTierConfig, got %v", err)
	}
	if !engine.IsConfigError(err) {
		t.Errorf("IsConfigError should report true for %v", err)
	}
}

// =============================================================================
// PRORATION / TEAM / DEDUCTION / ROYALTY TESTS
// =============================================================================

func TestCalculate_MultiAgentProration(t *testing.T) {
	// GIVEN: Two co-listed agents on a $10,000 transaction
	// THEN: Each agent's breakdown uses a $5,000 GCI share

	calc := engine.NewCalculator()
	tx := closedTx("L-300", "Sarah Miller, James Wilson", 10000, "2024-06-15")

	b, err := calc.CalculateTransactionCommission(tx, "James Wilson", flatPlan(70), nil, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, b.GrossCommissionIncome, 5000, "prorated gci")
	assertMoney(t, b.AgentNetCommission, 3500, "agent net")
}

func TestCalculate_TeamMemberRedirect(t *testing.T) {
	// GIVEN: A team member with a 10% redirect to the lead
	// THEN: The redirect is reported separately; net stays pre-redirect

	team := &engine.Team{
		ID:                  "north-group",
		LeadAgent:           "Sarah Miller",
		TeamSplitPercentage: dec(10),
	}
	calc := engine.NewCalculator()
	tx := closedTx("L-301", "James Wilson", 10000, "2024-06-15")

	b, err := calc.CalculateTransactionCommission(tx, "James Wilson", flatPlan(70), team, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, b.AgentNetCommission, 7000, "agent net (pre-redirect)")
	assertMoney(t, b.TeamLeadShare, 700, "lead share")
	if b.TeamLeadName != "Sarah Miller" {
		t.Errorf("lead name = %q", b.TeamLeadName)
	}
}

func TestCalculate_LeadHasNoRedirect(t *testing.T) {
	team := &engine.Team{
		ID:                  "north-group",
		LeadAgent:           "Sarah Miller",
		TeamSplitPercentage: dec(10),
	}
	calc := engine.NewCalculator()
	tx := closedTx("L-302", "Sarah Miller", 10000, "2024-06-15")

	b, err := calc.CalculateTransactionCommission(tx, "Sarah Miller", flatPlan(70), team, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	if !b.TeamLeadShare.IsZero() || b.TeamLeadName != "" {
		t.Errorf("lead should have no redirect, got %s to %q", b.TeamLeadShare, b.TeamLeadName)
	}
}

func TestCalculate_DeductionsAreIndependent(t *testing.T) {
	// GIVEN: A $295 transaction fee and a 1% (of GCI) insurance deduction
	// THEN: Both compute against GCI, not against a running total

	plan := flatPlan(70)
	plan.Deductions = []engine.Deduction{
		{Type: engine.DeductionFixed, Amount: dec(295), Description: "Transaction fee"},
		{Type: engine.DeductionPercentage, Amount: dec(1), Description: "E&O insurance"},
	}
	calc := engine.NewCalculator()
	tx := closedTx("L-303", "Sarah Miller", 10000, "2024-06-15")

	b, err := calc.CalculateTransactionCommission(tx, "Sarah Miller", plan, nil, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, b.DeductionsTotal, 395, "deductions")
	assertMoney(t, b.AgentNetCommission, 6605, "agent net after deductions")
}

func TestCalculate_DeductionsClampNetAtZero(t *testing.T) {
	plan := flatPlan(70)
	plan.Deductions = []engine.Deduction{
		{Type: engine.DeductionFixed, Amount: dec(500), Description: "Desk fee"},
	}
	calc := engine.NewCalculator()
	tx := closedTx("L-304", "Sarah Miller", 100, "2024-06-15")

	b, err := calc.CalculateTransactionCommission(tx, "Sarah Miller", plan, nil, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	if !b.AgentNetCommission.IsZero() {
		t.Errorf("net should clamp to zero, got %s", b.AgentNetCommission)
	}
}

func TestCalculate_RoyaltyIsInformationalAndCapped(t *testing.T) {
	// GIVEN: 6% royalty capped at $300
	plan := flatPlan(70)
	plan.RoyaltyPercentage = dec(6)
	plan.RoyaltyCap = dec(300)

	calc := engine.NewCalculator()
	tx := closedTx("L-305", "Sarah Miller", 10000, "2024-06-15")

	b, err := calc.CalculateTransactionCommission(tx, "Sarah Miller", plan, nil, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	assertMoney(t, b.RoyaltyAmount, 300, "capped royalty")
	// Royalty is never subtracted from agent net.
	assertMoney(t, b.AgentNetCommission, 7000, "agent net")
}

func TestCalculate_ZeroGCIProducesZeros(t *testing.T) {
	calc := engine.NewCalculator()
	tx := closedTx("L-306", "Sarah Miller", 0, "2024-06-15")

	b, err := calc.CalculateTransactionCommission(tx, "Sarah Miller", cappedPlan(70, 50000, 100), nil, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	if !b.GrossCommissionIncome.IsZero() || !b.AgentNetCommission.IsZero() || !b.BrokerageSplitAmount.IsZero() {
		t.Errorf("expected all-zero outputs, got %+v", b)
	}
}
