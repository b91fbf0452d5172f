/*
money.go - Rounding and percentage-split primitives

PURPOSE:
  Every monetary output of the engine passes through these helpers. Rounding
  happens ONLY at the output boundary: intermediate math stays at full
  decimal precision so agent + brokerage shares always reconcile to the
  original amount.

ROUNDING POLICY:
  Half-up on the cent boundary (round(x*100)/100). decimal.Round implements
  half-away-from-zero, which is half-up for the non-negative amounts this
  engine produces.

SEE ALSO:
  - calculator.go: Rounds every breakdown field before returning
  - types.go: All monetary fields are decimal.Decimal
*/
package engine

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// =============================================================================
// ROUNDING
// =============================================================================

// RoundMoney rounds to 2 decimal places using half-up rounding.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// =============================================================================
// SPLITS
// =============================================================================

// ApplySplit divides an amount between agent and brokerage at the given
// agent percentage (0-100). brokerageShare is computed as the residual, so
// agentShare + brokerageShare == amount exactly (no rounding applied here).
func ApplySplit(amount, agentPercent decimal.Decimal) (agentShare, brokerageShare decimal.Decimal) {
	agentShare = amount.Mul(agentPercent).Div(hundred)
	brokerageShare = amount.Sub(agentShare)
	return agentShare, brokerageShare
}

// Percent returns amount * percent / 100 at full precision.
func Percent(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

// ClampNonNegative floors a value at zero. Negative intermediates are
// expected in low-quality source data and are never propagated.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// SafeDecimal parses a numeric string, treating empty or unparseable input
// as zero so bad source values never poison a calculation.
func SafeDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SafeFloat converts a float64 to decimal, treating NaN/Inf as zero.
func SafeFloat(f float64) decimal.Decimal {
	if f != f || f > 1e15 || f < -1e15 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
