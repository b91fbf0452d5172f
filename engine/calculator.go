/*
calculator.go - Single-transaction commission calculation

PURPOSE:
  Computes one transaction's commission breakdown for one agent under one
  plan, given the agent's YTD progress entering the transaction. This is
  where cap-boundary splitting, ordered tier traversal, team overrides,
  deductions, and royalty all come together.

CALCULATION STEPS:
  1. Multi-agent proration: the agent's GCI share (even split by default,
     pluggable via SplitStrategy)
  2. Base split: flat (simple/pre-cap/mixed/post-cap) or sliding (tiered)
  3. Team override: redirect amount computed, reported alongside the
     pre-team-split net so the orchestrator can book both sides
  4. Deductions: fixed and percentage-of-GCI, independent, clamped at 0
  5. Royalty: informational, capped, never subtracted here
  6. Rounding: every monetary field rounded at the output boundary

CAP/TIER PROGRESS CONVENTION:
  YTD progress advances by the agent's GCI share of each transaction (the
  company-dollar-trackable amount). A $50,000 cap with $45,000 of progress
  and a $10,000 GCI transaction splits into a $5,000 pre-cap slice and a
  $5,000 post-cap slice.

EDGE-CASE POLICY:
  Zero sale price or rate => all outputs zero, split type unaffected.
  Negative intermediates clamp to zero. Unparseable numerics are zeroed at
  the input boundary (see money.go SafeDecimal) and never propagate.

SEE ALSO:
  - money.go: ApplySplit / RoundMoney primitives
  - tiers.go: Tier validation and traversal support
  - batch.go: Drives this calculator across an ordered stream
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SPLIT STRATEGY - Multi-agent proration
// =============================================================================

// SplitStrategy decides each co-listed agent's share of a transaction's GCI.
// The engine ships one built-in strategy (even split); unequal weighting can
// be added without touching the calculator.
type SplitStrategy interface {
	// Share returns the named agent's portion of the transaction GCI.
	Share(agents []string, agent string, gci decimal.Decimal) decimal.Decimal
}

// EqualSplit divides GCI evenly across all co-listed agents.
type EqualSplit struct{}

func (EqualSplit) Share(agents []string, agent string, gci decimal.Decimal) decimal.Decimal {
	if len(agents) == 0 {
		return decimal.Zero
	}
	return gci.Div(decimal.NewFromInt(int64(len(agents))))
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator computes per-agent commission breakdowns. Zero value is not
// usable; construct with NewCalculator.
type Calculator struct {
	Split SplitStrategy
}

func NewCalculator() *Calculator {
	return &Calculator{Split: EqualSplit{}}
}

// CalculateTransactionCommission computes the breakdown for one agent on one
// transaction. ytdBefore is the agent's trackable YTD amount entering the
// transaction (cap/tier progress within the current anniversary window).
// team may be nil.
//
// A sliding plan with an invalid tier list fails with ErrInvalidTierConfig;
// it never degrades to flat-split behavior.
func (c *Calculator) CalculateTransactionCommission(
	tx Transaction,
	agentName string,
	plan CommissionPlan,
	team *Team,
	ytdBefore decimal.Decimal,
) (CommissionBreakdown, error) {
	agents := tx.AgentList()
	gci := c.Split.Share(agents, agentName, tx.GrossCommission())
	gci = ClampNonNegative(gci)
	ytdBefore = ClampNonNegative(ytdBefore)

	var (
		agentShare decimal.Decimal
		splitType  SplitType
		err        error
	)
	if plan.UseSliding {
		agentShare, err = c.slidingSplit(plan, gci, ytdBefore)
		if err != nil {
			return CommissionBreakdown{}, err
		}
		splitType = SplitTiered
	} else {
		agentShare, splitType = c.flatSplit(plan, gci, ytdBefore)
	}
	agentShare = ClampNonNegative(agentShare)
	brokerageShare := gci.Sub(agentShare)

	// Team override: computed on the base-split net, reported separately so
	// the orchestrator can book both the member debit and the lead credit.
	var teamLeadName string
	teamLeadShare := decimal.Zero
	if team != nil && team.LeadAgent != agentName && team.TeamSplitPercentage.IsPositive() {
		teamLeadName = team.LeadAgent
		teamLeadShare = Percent(agentShare, team.TeamSplitPercentage)
	}

	// Deductions are independent: percentage deductions are computed against
	// GCI, never against the post-deduction running total.
	deductions := decimal.Zero
	for _, d := range plan.Deductions {
		switch d.Type {
		case DeductionFixed:
			deductions = deductions.Add(ClampNonNegative(d.Amount))
		case DeductionPercentage:
			deductions = deductions.Add(ClampNonNegative(Percent(gci, d.Amount)))
		}
	}
	net := ClampNonNegative(agentShare.Sub(deductions))

	royalty := decimal.Zero
	if plan.RoyaltyPercentage.IsPositive() {
		royalty = Percent(gci, plan.RoyaltyPercentage)
		if plan.RoyaltyCap.IsPositive() && royalty.GreaterThan(plan.RoyaltyCap) {
			royalty = plan.RoyaltyCap
		}
	}

	return CommissionBreakdown{
		LoopID:                tx.LoopID,
		AgentName:             agentName,
		GrossCommissionIncome: RoundMoney(gci),
		BrokerageSplitAmount:  RoundMoney(brokerageShare),
		AgentNetCommission:    RoundMoney(net),
		DeductionsTotal:       RoundMoney(deductions),
		TeamLeadName:          teamLeadName,
		TeamLeadShare:         RoundMoney(teamLeadShare),
		RoyaltyAmount:         RoundMoney(royalty),
		SplitType:             splitType,
		YTDCompanyDollarAfter: RoundMoney(ytdBefore.Add(gci)),
		ClosingDate:           tx.ClosingDate,
	}, nil
}

// =============================================================================
// FLAT PLAN - Cap-boundary splitting
// =============================================================================

// flatSplit resolves the agent share for a flat plan against its cap.
// As YTD progress grows from 0 past the cap, the split type transitions
// pre-cap -> mixed -> post-cap exactly once each.
func (c *Calculator) flatSplit(plan CommissionPlan, gci, ytdBefore decimal.Decimal) (decimal.Decimal, SplitType) {
	cap := plan.CapAmount
	if !cap.IsPositive() {
		share, _ := ApplySplit(gci, plan.SplitPercentage)
		return share, SplitSimple
	}

	if ytdBefore.GreaterThanOrEqual(cap) {
		share, _ := ApplySplit(gci, plan.PostCapSplit)
		return share, SplitPostCap
	}

	if ytdBefore.Add(gci).LessThanOrEqual(cap) {
		share, _ := ApplySplit(gci, plan.SplitPercentage)
		return share, SplitPreCap
	}

	// Straddles the cap boundary: pre-cap slice up to the cap, post-cap
	// slice for the remainder.
	preSlice := cap.Sub(ytdBefore)
	postSlice := gci.Sub(preSlice)
	preShare, _ := ApplySplit(preSlice, plan.SplitPercentage)
	postShare, _ := ApplySplit(postSlice, plan.PostCapSplit)
	return preShare.Add(postShare), SplitMixed
}

// =============================================================================
// SLIDING PLAN - Ordered tier traversal
// =============================================================================

// slidingSplit walks the plan's tiers in ascending threshold order, splitting
// the portion of the transaction that falls within each tier's YTD range at
// that tier's percentage.
func (c *Calculator) slidingSplit(plan CommissionPlan, gci, ytdBefore decimal.Decimal) (decimal.Decimal, error) {
	if violations := ValidateTiers(plan.Tiers); len(violations) > 0 {
		return decimal.Zero, &InvalidTierConfigError{PlanID: plan.ID, Violations: violations}
	}

	agentShare := decimal.Zero
	currentYTD := ytdBefore
	remaining := gci

	for i, tier := range plan.Tiers {
		if !remaining.IsPositive() {
			break
		}

		// Upper bound of this tier's range; the top tier is open-ended.
		last := i == len(plan.Tiers)-1
		if !last && plan.Tiers[i+1].Threshold.LessThanOrEqual(currentYTD) {
			continue
		}

		portion := remaining
		if !last {
			room := plan.Tiers[i+1].Threshold.Sub(currentYTD)
			if portion.GreaterThan(room) {
				portion = room
			}
		}

		share, _ := ApplySplit(portion, tier.SplitPercentage)
		agentShare = agentShare.Add(share)
		remaining = remaining.Sub(portion)
		currentYTD = currentYTD.Add(portion)
	}

	return agentShare, nil
}
