/*
export.go - Delimited-text serialization of engine outputs

PURPOSE:
  Downstream export code depends on exact column order and header names,
  so these formatting functions are part of the engine's public contract.
  Fields are quoted per RFC 4180 (double-quote escaping via doubled
  quotes), which encoding/csv implements.

SEE ALSO:
  - variance.go: VarianceItem source type
  - ledger/export.go: Adjustment and audit-log exports
*/
package engine

import (
	"encoding/csv"
	"strings"
)

// varianceCSVHeader is the contractual column order for variance exports.
var varianceCSVHeader = []string{
	"loop_id",
	"agent_name",
	"csv_company_dollar",
	"calculated_company_dollar",
	"variance_amount",
	"variance_percentage",
	"variance_category",
}

// ExportVarianceAsCSV serializes variance items to delimited text. Parsing
// the output back reproduces the same rows and field values.
func ExportVarianceAsCSV(items []VarianceItem) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write(varianceCSVHeader)
	for _, item := range items {
		_ = w.Write([]string{
			item.LoopID,
			item.AgentName,
			item.CSVCompanyDollar.StringFixed(2),
			item.CalculatedCompanyDollar.StringFixed(2),
			item.VarianceAmount.StringFixed(2),
			item.VariancePercentage.StringFixed(2),
			string(item.VarianceCategory),
		})
	}
	w.Flush()
	return sb.String()
}

// breakdownCSVHeader is the contractual column order for breakdown exports.
var breakdownCSVHeader = []string{
	"loop_id",
	"agent_name",
	"closing_date",
	"gross_commission_income",
	"brokerage_split_amount",
	"agent_net_commission",
	"deductions_total",
	"team_lead_share",
	"royalty_amount",
	"split_type",
	"ytd_company_dollar_after",
}

// ExportBreakdownsAsCSV serializes commission breakdowns to delimited text.
func ExportBreakdownsAsCSV(breakdowns []CommissionBreakdown) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	_ = w.Write(breakdownCSVHeader)
	for _, b := range breakdowns {
		_ = w.Write([]string{
			b.LoopID,
			b.AgentName,
			b.ClosingDate.String(),
			b.GrossCommissionIncome.StringFixed(2),
			b.BrokerageSplitAmount.StringFixed(2),
			b.AgentNetCommission.StringFixed(2),
			b.DeductionsTotal.StringFixed(2),
			b.TeamLeadShare.StringFixed(2),
			b.RoyaltyAmount.StringFixed(2),
			string(b.SplitType),
			b.YTDCompanyDollarAfter.StringFixed(2),
		})
	}
	w.Flush()
	return sb.String()
}
