/*
Package factory provides canned commission plan configurations.

PURPOSE:
  Standard plan shapes brokerages actually run, ready to use in demos,
  tests, and as starting points for operator-defined plans. Each preset
  returns a fully valid engine.CommissionPlan; tiered presets pass tier
  validation by construction.

PRESETS:
  StandardSplit: flat split, no cap      (e.g. classic 70/30)
  CappedSplit:   flat split with a cap   (e.g. 80/20 until $25k, then 100)
  TieredPlan:    three-rung sliding scale

SEE ALSO:
  - engine/types.go: CommissionPlan definition
  - config: YAML-defined plans for production configuration
*/
package factory

import (
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/engine"
)

// StandardSplit returns a flat, uncapped plan.
func StandardSplit(id engine.PlanID, name string, agentPercent float64) engine.CommissionPlan {
	return engine.CommissionPlan{
		ID:              id,
		Name:            name,
		SplitPercentage: decimal.NewFromFloat(agentPercent),
		PostCapSplit:    decimal.NewFromInt(100),
	}
}

// CappedSplit returns a flat plan that switches to postCapPercent once the
// agent's YTD progress reaches capAmount.
func CappedSplit(id engine.PlanID, name string, agentPercent, capAmount, postCapPercent float64) engine.CommissionPlan {
	return engine.CommissionPlan{
		ID:              id,
		Name:            name,
		SplitPercentage: decimal.NewFromFloat(agentPercent),
		CapAmount:       decimal.NewFromFloat(capAmount),
		PostCapSplit:    decimal.NewFromFloat(postCapPercent),
	}
}

// TieredPlan returns a three-rung sliding-scale plan: 60% to $100k, 70% to
// $200k, 80% above.
func TieredPlan(id engine.PlanID, name string) engine.CommissionPlan {
	return engine.CommissionPlan{
		ID:         id,
		Name:       name,
		UseSliding: true,
		Tiers: []engine.CommissionTier{
			{ID: "t1", Threshold: decimal.Zero, SplitPercentage: decimal.NewFromInt(60), Description: "Up to $100k"},
			{ID: "t2", Threshold: decimal.NewFromInt(100000), SplitPercentage: decimal.NewFromInt(70), Description: "$100k to $200k"},
			{ID: "t3", Threshold: decimal.NewFromInt(200000), SplitPercentage: decimal.NewFromInt(80), Description: "Above $200k"},
		},
	}
}

// WithRoyalty adds a franchise royalty to any plan.
func WithRoyalty(plan engine.CommissionPlan, percent, cap float64) engine.CommissionPlan {
	plan.RoyaltyPercentage = decimal.NewFromFloat(percent)
	plan.RoyaltyCap = decimal.NewFromFloat(cap)
	return plan
}

// WithDeductions adds plan-level deductions in declaration order.
func WithDeductions(plan engine.CommissionPlan, deductions ...engine.Deduction) engine.CommissionPlan {
	plan.Deductions = append(plan.Deductions, deductions...)
	return plan
}

// FixedDeduction is a flat-dollar charge (e.g. a transaction fee).
func FixedDeduction(amount float64, description string) engine.Deduction {
	return engine.Deduction{
		Type:        engine.DeductionFixed,
		Amount:      decimal.NewFromFloat(amount),
		Description: description,
	}
}

// PercentageDeduction is a percentage-of-GCI charge (e.g. E&O insurance).
func PercentageDeduction(percent float64, description string) engine.Deduction {
	return engine.Deduction{
		Type:        engine.DeductionPercentage,
		Amount:      decimal.NewFromFloat(percent),
		Description: description,
	}
}
