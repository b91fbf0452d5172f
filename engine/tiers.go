/*
tiers.go - Sliding-scale tier validation and lookup

PURPOSE:
  A sliding-scale plan partitions the YTD company-dollar number line into
  contiguous, non-overlapping, ascending ranges starting at $0. This file
  verifies a tier list is well-formed before it is ever used for
  calculation, and provides the lookup helpers the calculator and UI need.

VALIDATION RULES (each independently checked, ALL reported):
  1. Order:        thresholds strictly ascending
  2. Continuity:   first tier starts at exactly $0
  3. Split range:  every split percentage in [0, 100]
  4. Descriptions: non-empty and unique across tiers
  5. Minimum:      at least one tier

A plan whose tier list fails validation must never silently degrade to
flat-split behavior; the calculator rejects it with ErrInvalidTierConfig.

SEE ALSO:
  - calculator.go: Walks validated tiers during sliding-scale calculation
  - errors.go: TierValidationError / InvalidTierConfigError
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateTiers checks a tier list against all five well-formedness rules
// and returns every violation found. An empty result means the list is valid.
func ValidateTiers(tiers []CommissionTier) []TierValidationError {
	var violations []TierValidationError

	if len(tiers) == 0 {
		violations = append(violations, TierValidationError{
			TierIndex: -1,
			Field:     "tiers",
			Message:   "at least one tier is required",
		})
		return violations
	}

	if !tiers[0].Threshold.IsZero() {
		violations = append(violations, TierValidationError{
			TierIndex: 0,
			Field:     "threshold",
			Message:   "First tier must start at $0",
		})
	}

	seen := make(map[string]int)
	for i, tier := range tiers {
		if i > 0 && tier.Threshold.LessThanOrEqual(tiers[i-1].Threshold) {
			violations = append(violations, TierValidationError{
				TierIndex: i,
				Field:     "threshold",
				Message:   "threshold must be greater than previous tier",
			})
		}

		if tier.SplitPercentage.IsNegative() || tier.SplitPercentage.GreaterThan(hundred) {
			violations = append(violations, TierValidationError{
				TierIndex: i,
				Field:     "splitPercentage",
				Message:   "split percentage must be between 0 and 100",
			})
		}

		if tier.Description == "" {
			violations = append(violations, TierValidationError{
				TierIndex: i,
				Field:     "description",
				Message:   "description must not be empty",
			})
		} else if prev, dup := seen[tier.Description]; dup {
			violations = append(violations, TierValidationError{
				TierIndex: i,
				Field:     "description",
				Message:   fmt.Sprintf("description duplicates tier %d", prev),
			})
		} else {
			seen[tier.Description] = i
		}
	}

	return violations
}

// DetectOverlappingRanges returns true if the tier ranges are broken:
// out-of-order thresholds or a first tier that does not start at $0.
func DetectOverlappingRanges(tiers []CommissionTier) bool {
	if len(tiers) == 0 {
		return false
	}
	if !tiers[0].Threshold.IsZero() {
		return true
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Threshold.LessThanOrEqual(tiers[i-1].Threshold) {
			return true
		}
	}
	return false
}

// =============================================================================
// LOOKUP
// =============================================================================

// ApplicableTiers returns all tiers whose threshold is <= ytdAmount, in
// ascending threshold order. Assumes a validated (already ascending) list.
func ApplicableTiers(tiers []CommissionTier, ytdAmount decimal.Decimal) []CommissionTier {
	var applicable []CommissionTier
	for _, tier := range tiers {
		if tier.Threshold.LessThanOrEqual(ytdAmount) {
			applicable = append(applicable, tier)
		}
	}
	return applicable
}

// EffectiveTier returns the highest tier whose threshold is <= ytdAmount,
// or nil when the list is empty or no tier applies. For a valid tier list
// (first threshold $0) and ytdAmount >= 0 this never returns nil.
func EffectiveTier(tiers []CommissionTier, ytdAmount decimal.Decimal) *CommissionTier {
	applicable := ApplicableTiers(tiers, ytdAmount)
	if len(applicable) == 0 {
		return nil
	}
	tier := applicable[len(applicable)-1]
	return &tier
}

// TierRangeString formats a tier's YTD range for display: "$A - $B" when a
// next threshold exists, "$A+" for the open-ended top tier.
func TierRangeString(tier CommissionTier, nextThreshold *decimal.Decimal) string {
	low := "$" + tier.Threshold.StringFixed(0)
	if nextThreshold == nil {
		return low + "+"
	}
	return low + " - $" + nextThreshold.StringFixed(0)
}

// =============================================================================
// DEFAULTS
// =============================================================================

// defaultTierThresholds are the canned ascending thresholds offered when an
// operator asks for a suggested tier structure.
var defaultTierThresholds = []int64{0, 50000, 100000, 200000, 350000, 500000}

// SuggestDefaultTiers returns up to n canned ascending tiers, capped at the
// number of canned thresholds available. Splits step up 5% per tier from 60%.
func SuggestDefaultTiers(n int) []CommissionTier {
	if n < 1 {
		n = 1
	}
	if n > len(defaultTierThresholds) {
		n = len(defaultTierThresholds)
	}

	tiers := make([]CommissionTier, 0, n)
	for i := 0; i < n; i++ {
		threshold := decimal.NewFromInt(defaultTierThresholds[i])
		tiers = append(tiers, CommissionTier{
			ID:              fmt.Sprintf("tier-%d", i+1),
			Threshold:       threshold,
			SplitPercentage: decimal.NewFromInt(60 + int64(i)*5),
			Description:     fmt.Sprintf("Tier %d", i+1),
		})
	}
	return tiers
}
