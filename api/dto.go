/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY FIELDS:
  Decimal amounts serialize as JSON numbers via shopspring/decimal's own
  MarshalJSON. Everything money-shaped in a response has already been
  rounded to cents by the engine.

PLAN/TEAM/ASSIGNMENT SHAPES:
  Configuration bodies reuse config.PlanYAML and friends, so the API
  accepts exactly what the YAML file loader accepts.

SEE ALSO:
  - handlers.go: Uses these types
  - config: Shared configuration schema types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/engine"
)

// =============================================================================
// CALCULATION
// =============================================================================

// TransactionDTO is one closed transaction in a calculation request.
type TransactionDTO struct {
	LoopID                string  `json:"loop_id"`
	LoopName              string  `json:"loop_name,omitempty"`
	Agents                string  `json:"agents"`
	SalePrice             float64 `json:"sale_price"`
	CommissionRate        float64 `json:"commission_rate"`
	CommissionTotal       float64 `json:"commission_total"`
	ReportedAgentNet      float64 `json:"reported_agent_net"`
	ReportedCompanyDollar float64 `json:"reported_company_dollar"`
	ClosingDate           string  `json:"closing_date"` // YYYY-MM-DD
}

// CalculateRequest is the body of POST /api/commissions/calculate.
type CalculateRequest struct {
	Transactions []TransactionDTO `json:"transactions"`
}

// BreakdownDTO is one agent's share of one transaction.
type BreakdownDTO struct {
	LoopID                string          `json:"loop_id"`
	AgentName             string          `json:"agent_name"`
	GrossCommissionIncome decimal.Decimal `json:"gross_commission_income"`
	BrokerageSplitAmount  decimal.Decimal `json:"brokerage_split_amount"`
	AgentNetCommission    decimal.Decimal `json:"agent_net_commission"`
	DeductionsTotal       decimal.Decimal `json:"deductions_total"`
	TeamLeadName          string          `json:"team_lead_name,omitempty"`
	TeamLeadShare         decimal.Decimal `json:"team_lead_share"`
	RoyaltyAmount         decimal.Decimal `json:"royalty_amount"`
	SplitType             string          `json:"split_type"`
	YTDCompanyDollarAfter decimal.Decimal `json:"ytd_company_dollar_after"`
	ClosingDate           string          `json:"closing_date"`
}

// YTDSummaryDTO is one agent's totals for one anniversary window.
type YTDSummaryDTO struct {
	AgentName            string          `json:"agent_name"`
	WindowStart          string          `json:"window_start"`
	WindowEnd            string          `json:"window_end"`
	TotalAgentCommission decimal.Decimal `json:"total_agent_commission"`
	TotalCompanyDollar   decimal.Decimal `json:"total_company_dollar"`
	TransactionCount     int             `json:"transaction_count"`
}

// RecordErrorDTO is a per-record data failure that did not stop the batch.
type RecordErrorDTO struct {
	LoopID    string `json:"loop_id,omitempty"`
	AgentName string `json:"agent_name,omitempty"`
	Reason    string `json:"reason"`
}

// CalculateResponse is the full output of a calculation run.
type CalculateResponse struct {
	Breakdowns         []BreakdownDTO   `json:"breakdowns"`
	Summaries          []YTDSummaryDTO  `json:"summaries"`
	Errors             []RecordErrorDTO `json:"errors"`
	AgentsWithoutPlans []string         `json:"agents_without_plans"`
}

// =============================================================================
// VARIANCE
// =============================================================================

// VarianceRecordDTO is one CSV row to reconcile.
type VarianceRecordDTO struct {
	LoopID                  string  `json:"loop_id"`
	AgentName               string  `json:"agent_name"`
	SalePrice               float64 `json:"sale_price"`
	CommissionRate          float64 `json:"commission_rate"`
	CommissionTotal         float64 `json:"commission_total"`
	ReportedSplitPercentage float64 `json:"reported_split_percentage"`
	CSVCompanyDollar        float64 `json:"csv_company_dollar"`
}

// VarianceRequest is the body of POST /api/commissions/variance.
type VarianceRequest struct {
	Records []VarianceRecordDTO `json:"records"`

	// Percentage at or above which a variance is classified major.
	// Zero means the default (5).
	MajorThreshold float64 `json:"major_threshold,omitempty"`
}

// VarianceItemDTO is one reconciled record.
type VarianceItemDTO struct {
	LoopID             string          `json:"loop_id"`
	AgentName          string          `json:"agent_name"`
	CSVCompanyDollar   decimal.Decimal `json:"csv_company_dollar"`
	CalculatedValue    decimal.Decimal `json:"calculated_company_dollar"`
	VarianceAmount     decimal.Decimal `json:"variance_amount"`
	VariancePercentage decimal.Decimal `json:"variance_percentage"`
	Category           string          `json:"category"`
}

// VarianceSummaryDTO aggregates one reconciliation run.
type VarianceSummaryDTO struct {
	TotalCSV        decimal.Decimal `json:"total_csv"`
	TotalCalculated decimal.Decimal `json:"total_calculated"`
	TotalVariance   decimal.Decimal `json:"total_variance"`
	ExactCount      int             `json:"exact_count"`
	MinorCount      int             `json:"minor_count"`
	MajorCount      int             `json:"major_count"`
}

// AgentVarianceDTO is one agent's reconciliation rollup.
type AgentVarianceDTO struct {
	AgentName         string          `json:"agent_name"`
	RecordCount       int             `json:"record_count"`
	TotalVariance     decimal.Decimal `json:"total_variance"`
	AveragePercentage decimal.Decimal `json:"average_percentage"`
	MajorIssueCount   int             `json:"major_issue_count"`
}

// VarianceResponse is the full reconciliation report.
type VarianceResponse struct {
	Items   []VarianceItemDTO  `json:"items"`
	Summary VarianceSummaryDTO `json:"summary"`
	ByAgent []AgentVarianceDTO `json:"by_agent"`
}

// =============================================================================
// ADJUSTMENTS
// =============================================================================

// CreateAdjustmentRequest is the body of POST /api/adjustments.
type CreateAdjustmentRequest struct {
	LoopID        string  `json:"loop_id"`
	AgentName     string  `json:"agent_name"`
	OriginalValue float64 `json:"original_value"`
	AdjustedValue float64 `json:"adjusted_value"`
	Reason        string  `json:"reason"`
	CreatedBy     string  `json:"created_by"`
}

// UpdateAdjustmentRequest is the body of PUT /api/adjustments/{id}.
type UpdateAdjustmentRequest struct {
	AdjustedValue float64 `json:"adjusted_value"`
	Reason        string  `json:"reason,omitempty"`
	Actor         string  `json:"actor"`
}

// ResolveAdjustmentRequest approves or rejects a pending adjustment.
type ResolveAdjustmentRequest struct {
	Actor string `json:"actor"`
}

// AdjustmentDTO is one adjustment in API responses.
type AdjustmentDTO struct {
	ID               string          `json:"id"`
	LoopID           string          `json:"loop_id"`
	AgentName        string          `json:"agent_name"`
	OriginalValue    decimal.Decimal `json:"original_value"`
	AdjustedValue    decimal.Decimal `json:"adjusted_value"`
	AdjustmentAmount decimal.Decimal `json:"adjustment_amount"`
	Reason           string          `json:"reason"`
	Status           string          `json:"status"`
	CreatedBy        string          `json:"created_by"`
	ApprovedBy       string          `json:"approved_by,omitempty"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

// AuditEntryDTO is one audit log entry.
type AuditEntryDTO struct {
	ID            string           `json:"id"`
	AdjustmentID  string           `json:"adjustment_id"`
	Action        string           `json:"action"`
	Actor         string           `json:"actor"`
	Timestamp     string           `json:"timestamp"`
	PreviousValue *decimal.Decimal `json:"previous_value,omitempty"`
	NewValue      *decimal.Decimal `json:"new_value,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the JSON shape of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func (t TransactionDTO) toEngine() (engine.Transaction, error) {
	closing, err := engine.ParseDate(t.ClosingDate)
	if err != nil {
		return engine.Transaction{}, err
	}
	return engine.Transaction{
		LoopID:                t.LoopID,
		LoopName:              t.LoopName,
		Agents:                t.Agents,
		SalePrice:             decimal.NewFromFloat(t.SalePrice),
		CommissionRate:        decimal.NewFromFloat(t.CommissionRate),
		CommissionTotal:       decimal.NewFromFloat(t.CommissionTotal),
		ReportedAgentNet:      decimal.NewFromFloat(t.ReportedAgentNet),
		ReportedCompanyDollar: decimal.NewFromFloat(t.ReportedCompanyDollar),
		ClosingDate:           closing,
	}, nil
}

func toBreakdownDTO(b engine.CommissionBreakdown) BreakdownDTO {
	return BreakdownDTO{
		LoopID:                b.LoopID,
		AgentName:             b.AgentName,
		GrossCommissionIncome: b.GrossCommissionIncome,
		BrokerageSplitAmount:  b.BrokerageSplitAmount,
		AgentNetCommission:    b.AgentNetCommission,
		DeductionsTotal:       b.DeductionsTotal,
		TeamLeadName:          b.TeamLeadName,
		TeamLeadShare:         b.TeamLeadShare,
		RoyaltyAmount:         b.RoyaltyAmount,
		SplitType:             string(b.SplitType),
		YTDCompanyDollarAfter: b.YTDCompanyDollarAfter,
		ClosingDate:           b.ClosingDate.String(),
	}
}

func toSummaryDTO(s engine.YTDSummary) YTDSummaryDTO {
	return YTDSummaryDTO{
		AgentName:            s.AgentName,
		WindowStart:          s.WindowStart.String(),
		WindowEnd:            s.WindowEnd.String(),
		TotalAgentCommission: s.TotalAgentCommission,
		TotalCompanyDollar:   s.TotalCompanyDollar,
		TransactionCount:     s.TransactionCount,
	}
}

func (v VarianceRecordDTO) toEngine() engine.VarianceRecord {
	return engine.VarianceRecord{
		LoopID:                  v.LoopID,
		AgentName:               v.AgentName,
		SalePrice:               decimal.NewFromFloat(v.SalePrice),
		CommissionRate:          decimal.NewFromFloat(v.CommissionRate),
		CommissionTotal:         decimal.NewFromFloat(v.CommissionTotal),
		ReportedSplitPercentage: decimal.NewFromFloat(v.ReportedSplitPercentage),
		CSVCompanyDollar:        decimal.NewFromFloat(v.CSVCompanyDollar),
	}
}
