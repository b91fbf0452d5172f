/*
variance.go - Commission variance reconciliation

PURPOSE:
  Compares externally reported commission figures against independently
  recomputed ones and classifies each discrepancy. The point is catching
  arithmetic and data-entry drift in the SOURCE data, not re-deriving
  plan-based commission: recomputation uses the record's own rate and
  split fields with no plan context.

CLASSIFICATION:
  variancePercentage = |calculated - reported| / max(reported, 1) * 100
  exact  variance rounds to $0.00
  minor  below the major threshold
  major  at or above the threshold (default 5%, boundary inclusive)

SEE ALSO:
  - batch.go: Produces the breakdowns this can cross-check
  - export.go: Delimited-text serialization of variance items
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TYPES
// =============================================================================

// VarianceCategory classifies the severity of one discrepancy.
type VarianceCategory string

const (
	VarianceExact VarianceCategory = "exact"
	VarianceMinor VarianceCategory = "minor"
	VarianceMajor VarianceCategory = "major"
)

// VarianceRecord is one imported row to reconcile: the reported company
// dollar plus the raw fields needed to recompute it.
type VarianceRecord struct {
	LoopID    string
	AgentName string

	SalePrice       decimal.Decimal
	CommissionRate  decimal.Decimal // percent of sale price
	CommissionTotal decimal.Decimal // overrides SalePrice*Rate when positive

	// Brokerage percentage the source claims was applied.
	ReportedSplitPercentage decimal.Decimal

	// Company dollar as reported by the source.
	CSVCompanyDollar decimal.Decimal
}

// VarianceItem is the reconciliation result for one record.
type VarianceItem struct {
	LoopID    string
	AgentName string

	CSVCompanyDollar        decimal.Decimal
	CalculatedCompanyDollar decimal.Decimal
	VarianceAmount          decimal.Decimal
	VariancePercentage      decimal.Decimal
	VarianceCategory        VarianceCategory
}

// VarianceSummary aggregates a reconciliation run.
type VarianceSummary struct {
	TotalCSV        decimal.Decimal
	TotalCalculated decimal.Decimal
	TotalVariance   decimal.Decimal

	ExactCount int
	MinorCount int
	MajorCount int
}

// VarianceReport bundles items with their summary.
type VarianceReport struct {
	Items   []VarianceItem
	Summary VarianceSummary
}

// AgentVariance is the per-agent aggregation.
type AgentVariance struct {
	AgentName         string
	RecordCount       int
	TotalVariance     decimal.Decimal
	AveragePercentage decimal.Decimal
	MajorIssueCount   int
}

// VarianceOptions tunes classification. Zero value uses the defaults.
type VarianceOptions struct {
	// MajorThreshold is the percentage at which a variance is major
	// (boundary inclusive). Zero means the default of 5.
	MajorThreshold decimal.Decimal
}

var defaultMajorThreshold = decimal.NewFromInt(5)

func (o VarianceOptions) threshold() decimal.Decimal {
	if o.MajorThreshold.IsPositive() {
		return o.MajorThreshold
	}
	return defaultMajorThreshold
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// CalculateCommissionVariance reconciles every record and aggregates the
// results.
func CalculateCommissionVariance(records []VarianceRecord, opts VarianceOptions) *VarianceReport {
	threshold := opts.threshold()
	report := &VarianceReport{}

	for _, rec := range records {
		item := reconcileRecord(rec, threshold)
		report.Items = append(report.Items, item)

		report.Summary.TotalCSV = report.Summary.TotalCSV.Add(item.CSVCompanyDollar)
		report.Summary.TotalCalculated = report.Summary.TotalCalculated.Add(item.CalculatedCompanyDollar)
		report.Summary.TotalVariance = report.Summary.TotalVariance.Add(item.VarianceAmount)

		switch item.VarianceCategory {
		case VarianceExact:
			report.Summary.ExactCount++
		case VarianceMinor:
			report.Summary.MinorCount++
		case VarianceMajor:
			report.Summary.MajorCount++
		}
	}

	report.Summary.TotalCSV = RoundMoney(report.Summary.TotalCSV)
	report.Summary.TotalCalculated = RoundMoney(report.Summary.TotalCalculated)
	report.Summary.TotalVariance = RoundMoney(report.Summary.TotalVariance)
	return report
}

func reconcileRecord(rec VarianceRecord, threshold decimal.Decimal) VarianceItem {
	gross := rec.CommissionTotal
	if !gross.IsPositive() {
		gross = ClampNonNegative(Percent(rec.SalePrice, rec.CommissionRate))
	}

	// Recompute the company dollar from the record's own split field.
	_, calculated := ApplySplit(gross, rec.ReportedSplitPercentage)
	calculated = ClampNonNegative(calculated)

	csv := ClampNonNegative(rec.CSVCompanyDollar)
	diff := calculated.Sub(csv).Abs()

	// Guard the denominator at 1 so zero-dollar records don't divide by zero.
	denom := csv
	if denom.LessThan(decimal.NewFromInt(1)) {
		denom = decimal.NewFromInt(1)
	}
	pct := diff.Div(denom).Mul(hundred)

	category := VarianceMinor
	if RoundMoney(diff).IsZero() {
		category = VarianceExact
	} else if pct.GreaterThanOrEqual(threshold) {
		category = VarianceMajor
	}

	return VarianceItem{
		LoopID:                  rec.LoopID,
		AgentName:               rec.AgentName,
		CSVCompanyDollar:        RoundMoney(csv),
		CalculatedCompanyDollar: RoundMoney(calculated),
		VarianceAmount:          RoundMoney(diff),
		VariancePercentage:      pct.Round(2),
		VarianceCategory:        category,
	}
}

// =============================================================================
// AGGREGATION / FILTERING / SORTING
// =============================================================================

// ByAgent groups items per agent with average variance percentage and
// major-issue counts, sorted by agent name.
func (r *VarianceReport) ByAgent() []AgentVariance {
	byAgent := make(map[string]*AgentVariance)
	for _, item := range r.Items {
		agg, ok := byAgent[item.AgentName]
		if !ok {
			agg = &AgentVariance{AgentName: item.AgentName}
			byAgent[item.AgentName] = agg
		}
		agg.RecordCount++
		agg.TotalVariance = agg.TotalVariance.Add(item.VarianceAmount)
		agg.AveragePercentage = agg.AveragePercentage.Add(item.VariancePercentage)
		if item.VarianceCategory == VarianceMajor {
			agg.MajorIssueCount++
		}
	}

	out := make([]AgentVariance, 0, len(byAgent))
	for _, agg := range byAgent {
		agg.TotalVariance = RoundMoney(agg.TotalVariance)
		agg.AveragePercentage = agg.AveragePercentage.Div(decimal.NewFromInt(int64(agg.RecordCount))).Round(2)
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentName < out[j].AgentName })
	return out
}

// Filter returns items matching the given agent and/or category. Empty
// values match everything.
func (r *VarianceReport) Filter(agent string, category VarianceCategory) []VarianceItem {
	var out []VarianceItem
	for _, item := range r.Items {
		if agent != "" && item.AgentName != agent {
			continue
		}
		if category != "" && item.VarianceCategory != category {
			continue
		}
		out = append(out, item)
	}
	return out
}

// VarianceSortKey selects the sort dimension for SortVarianceItems.
type VarianceSortKey string

const (
	SortByAmount     VarianceSortKey = "amount"
	SortByPercentage VarianceSortKey = "percentage"
)

// SortVarianceItems orders items descending by the chosen key, ties broken
// by loop id for determinism.
func SortVarianceItems(items []VarianceItem, key VarianceSortKey) {
	sort.SliceStable(items, func(i, j int) bool {
		var a, b decimal.Decimal
		switch key {
		case SortByPercentage:
			a, b = items[i].VariancePercentage, items[j].VariancePercentage
		default:
			a, b = items[i].VarianceAmount, items[j].VarianceAmount
		}
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return items[i].LoopID < items[j].LoopID
	})
}
