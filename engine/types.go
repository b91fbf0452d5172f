/*
Package engine provides the core commission calculation engine.

PURPOSE:
  This package contains the types and algorithms that turn closed-transaction
  records into per-agent commission breakdowns and year-to-date summaries,
  governed by configurable commission plans (flat split, capped split,
  multi-tier sliding scale), team overrides, deductions, and royalties.

KEY CONCEPTS IN THIS FILE (types.go):
  - CommissionPlan: The complete ruleset governing an agent's splits
  - CommissionTier: One rung of a sliding-scale plan
  - Team / AgentAssignment: Who works under which plan and team
  - Transaction: An immutable closed-transaction input record
  - CommissionBreakdown / YTDSummary: Derived outputs, never source of truth

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Determinism: Same inputs produce byte-identical numeric outputs
  3. Type Safety: Strong typing for plan/team IDs
  4. Purity: The engine performs no I/O; callers own fetching and persistence

USAGE:
  plan := engine.CommissionPlan{
      ID:              "standard-70",
      SplitPercentage: decimal.NewFromInt(70),
  }
  calc := engine.NewCalculator()
  breakdown, err := calc.CalculateTransactionCommission(tx, "Sarah Miller", plan, nil, decimal.Zero)

SEE ALSO:
  - money.go: Rounding and percentage-split primitives
  - tiers.go: Sliding-scale tier validation and lookup
  - calculator.go: Single-transaction commission calculation
  - batch.go: Batch orchestration across agents
*/
package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PlanID string
type TeamID string

// =============================================================================
// COMMISSION PLAN - Rules governing an agent's commission splits
// =============================================================================

// DeductionType distinguishes fixed-dollar deductions from percentage ones.
type DeductionType string

const (
	// DeductionFixed subtracts a flat dollar amount from agent net.
	DeductionFixed DeductionType = "fixed"

	// DeductionPercentage subtracts a percentage of the transaction's gross
	// commission income. Percentage deductions are independent: each is
	// computed against GCI, never against the post-deduction running total.
	DeductionPercentage DeductionType = "percentage"
)

// Deduction is a single plan-level charge against agent net commission.
type Deduction struct {
	Type        DeductionType
	Amount      decimal.Decimal
	Description string
}

// CommissionTier is one rung of a sliding-scale plan. Threshold is the YTD
// company-dollar amount at which this tier's split begins; SplitPercentage
// is the AGENT's share while operating within [Threshold, next.Threshold).
type CommissionTier struct {
	ID              string
	Threshold       decimal.Decimal
	SplitPercentage decimal.Decimal
	Description     string
}

// CommissionPlan defines how commission is split between agent and brokerage.
//
// A plan is either flat (SplitPercentage with optional CapAmount) or sliding
// (ordered Tiers). If UseSliding is set, Tiers MUST pass ValidateTiers before
// calculation; an invalid tier list fails the calculation rather than
// silently degrading to flat-split behavior.
type CommissionPlan struct {
	ID   PlanID
	Name string

	// Agent share before cap, 0-100.
	SplitPercentage decimal.Decimal

	// YTD company-dollar amount at which the cap is reached. Zero = uncapped.
	CapAmount decimal.Decimal

	// Agent share after the cap is reached, typically 100.
	PostCapSplit decimal.Decimal

	// Sliding-scale configuration. Tiers are only consulted when UseSliding.
	UseSliding bool
	Tiers      []CommissionTier

	// Charges applied to agent net, in declaration order.
	Deductions []Deduction

	// Franchise royalty, reported alongside the breakdown (not subtracted).
	// RoyaltyCap of zero means uncapped.
	RoyaltyPercentage decimal.Decimal
	RoyaltyCap        decimal.Decimal
}

// =============================================================================
// TEAM / ASSIGNMENT - Operator-managed configuration
// =============================================================================

// Team redirects a fraction of a member agent's net commission to the lead.
type Team struct {
	ID                  TeamID
	Name                string
	LeadAgent           string
	TeamSplitPercentage decimal.Decimal
}

// AgentAssignment binds one agent name to a plan, an optional team, and the
// anniversary that defines when YTD cap/tier tracking resets to zero.
type AgentAssignment struct {
	AgentName   string
	PlanID      PlanID
	TeamID      TeamID // empty = no team
	Anniversary MonthDay
	StartDate   Date
}

// =============================================================================
// TRANSACTION - Immutable input record for a calculation run
// =============================================================================

// Transaction is one closed transaction as imported from the source system.
// Commission is split evenly across co-listed agents before per-agent plan
// logic runs.
type Transaction struct {
	LoopID   string
	LoopName string

	// Comma-joined list of participant agent names.
	Agents string

	SalePrice      decimal.Decimal
	CommissionRate decimal.Decimal // percent of sale price

	// Precomputed gross commission income. When zero, GCI is derived from
	// SalePrice * CommissionRate / 100.
	CommissionTotal decimal.Decimal

	// CSV-reported figures, used as fallback for unassigned agents and by
	// the variance reconciler. Zero = not reported.
	ReportedAgentNet      decimal.Decimal
	ReportedCompanyDollar decimal.Decimal

	ClosingDate Date
}

// GrossCommission returns the transaction-level GCI.
func (t Transaction) GrossCommission() decimal.Decimal {
	if t.CommissionTotal.IsPositive() {
		return t.CommissionTotal
	}
	gci := t.SalePrice.Mul(t.CommissionRate).Div(decimal.NewFromInt(100))
	if gci.IsNegative() {
		return decimal.Zero
	}
	return gci
}

// AgentList parses the comma-joined Agents field into trimmed names.
// Empty segments are dropped.
func (t Transaction) AgentList() []string {
	var agents []string
	for _, part := range strings.Split(t.Agents, ",") {
		name := strings.TrimSpace(part)
		if name != "" {
			agents = append(agents, name)
		}
	}
	return agents
}

// =============================================================================
// OUTPUTS - Derived, recomputed on demand, never persisted by the engine
// =============================================================================

// SplitType classifies how a breakdown's base split was resolved.
type SplitType string

const (
	SplitSimple  SplitType = "simple"   // flat plan, no cap configured
	SplitPreCap  SplitType = "pre-cap"  // entirely below the cap
	SplitPostCap SplitType = "post-cap" // entirely above the cap
	SplitMixed   SplitType = "mixed"    // straddles the cap boundary
	SplitTiered  SplitType = "tiered"   // sliding-scale plan
)

// CommissionBreakdown is the per (transaction, agent) calculation result.
//
// AgentNetCommission is the agent's net AFTER deductions but BEFORE any team
// redirect: TeamLeadShare carries the redirect amount so the orchestrator can
// book both sides of the team split.
type CommissionBreakdown struct {
	LoopID    string
	AgentName string

	// This agent's share of the transaction's GCI after multi-agent proration.
	GrossCommissionIncome decimal.Decimal

	// Company dollar retained by the brokerage on the base split.
	BrokerageSplitAmount decimal.Decimal

	AgentNetCommission decimal.Decimal
	DeductionsTotal    decimal.Decimal

	// Team redirect, zero when the agent has no team or is the lead.
	TeamLeadName  string
	TeamLeadShare decimal.Decimal

	// Informational franchise royalty, not subtracted from agent net.
	RoyaltyAmount decimal.Decimal

	SplitType SplitType

	// Running cap/tier progress after this transaction. By convention the
	// trackable amount is the agent's GCI share (see calculator.go).
	YTDCompanyDollarAfter decimal.Decimal

	ClosingDate Date
}

// YTDSummary accumulates one agent's totals within one anniversary window.
type YTDSummary struct {
	AgentName   string
	WindowStart Date
	WindowEnd   Date

	TotalAgentCommission decimal.Decimal
	TotalCompanyDollar   decimal.Decimal
	TransactionCount     int
}
