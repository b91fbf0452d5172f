/*
anniversary.go - YTD accumulation windows and anniversary tracking

PURPOSE:
  An agent's cap/tier progress resets to zero at each plan anniversary.
  This file determines which 12-month window a closing date belongs to and
  maintains the running YTD totals per agent across a temporally ordered
  transaction stream.

ANNIVERSARY SEMANTICS:
  An assignment's anniversary is an MM-DD value. A transaction's window is
  the 12-month period starting at the most recent anniversary on/before its
  closing date - possibly in the PREVIOUS calendar year (anniversary 06-01,
  transaction in January => window started June 1st of last year). Feb-29
  anniversaries clamp to Feb-28 in non-leap years.

ORDERING REQUIREMENT:
  The tracker folds each agent's transactions in strictly ascending
  closing-date order. The orchestrator sorts before dispatch; the tracker
  itself does not sort. Out-of-order folding changes cap/tier results.

SEE ALSO:
  - date.go: Date / MonthDay / Period primitives
  - batch.go: Sorts per-agent groups before folding through the tracker
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WINDOW COMPUTATION
// =============================================================================

// AnniversaryWindow returns the 12-month accumulation window containing the
// closing date: it starts at the most recent anniversary on/before the date
// and ends the day before the next anniversary.
func AnniversaryWindow(anniversary MonthDay, closing Date) Period {
	if anniversary.IsZero() {
		// No anniversary configured: calendar-year window.
		anniversary = MonthDay{Month: 1, Day: 1}
	}

	start := anniversary.DateIn(closing.Year())
	if closing.Before(start) {
		start = anniversary.DateIn(closing.Year() - 1)
	}
	end := anniversary.DateIn(start.Year() + 1).AddDays(-1)
	return Period{Start: start, End: end}
}

// =============================================================================
// YTD TRACKER - Running totals per agent, reset at anniversary boundaries
// =============================================================================

// YTDTracker carries each agent's running company-dollar progress and
// summary totals across a batch run. Not safe for concurrent use; the
// orchestrator gives each agent fold its own tracker or serializes access.
type YTDTracker struct {
	current map[string]*agentWindow // active window per agent
	closed  []YTDSummary            // windows completed by a boundary crossing
}

type agentWindow struct {
	agent    string
	period   Period
	progress decimal.Decimal // cap/tier trackable amount (GCI convention)
	summary  YTDSummary
}

func NewYTDTracker() *YTDTracker {
	return &YTDTracker{current: make(map[string]*agentWindow)}
}

// Enter resolves the window for a transaction and returns the agent's YTD
// trackable amount entering it. Crossing an anniversary boundary closes the
// previous window and resets YTD to zero.
//
// REQUIRES: per agent, calls arrive in ascending closing-date order.
func (t *YTDTracker) Enter(agent string, anniversary MonthDay, closing Date) decimal.Decimal {
	w, ok := t.current[agent]
	if ok && w.period.Contains(closing) {
		return w.progress
	}

	if ok {
		// Boundary crossed: the old window is complete.
		t.closed = append(t.closed, w.summary)
	}

	period := AnniversaryWindow(anniversary, closing)
	t.current[agent] = &agentWindow{
		agent:  agent,
		period: period,
		summary: YTDSummary{
			AgentName:            agent,
			WindowStart:          period.Start,
			WindowEnd:            period.End,
			TotalAgentCommission: decimal.Zero,
			TotalCompanyDollar:   decimal.Zero,
		},
	}
	return decimal.Zero
}

// Record books one processed transaction into the agent's active window.
// trackable advances cap/tier progress; agentNet and companyDollar feed the
// window summary.
func (t *YTDTracker) Record(agent string, trackable, agentNet, companyDollar decimal.Decimal) {
	w, ok := t.current[agent]
	if !ok {
		return
	}
	w.progress = w.progress.Add(trackable)
	w.summary.TotalAgentCommission = w.summary.TotalAgentCommission.Add(agentNet)
	w.summary.TotalCompanyDollar = w.summary.TotalCompanyDollar.Add(companyDollar)
	w.summary.TransactionCount++
}

// Progress returns the agent's current trackable YTD amount.
func (t *YTDTracker) Progress(agent string) decimal.Decimal {
	if w, ok := t.current[agent]; ok {
		return w.progress
	}
	return decimal.Zero
}

// Summaries returns every window seen, closed and active, with monetary
// totals rounded. Ordered by agent name then window start for determinism.
func (t *YTDTracker) Summaries() []YTDSummary {
	out := make([]YTDSummary, 0, len(t.closed)+len(t.current))
	out = append(out, t.closed...)
	for _, w := range t.current {
		out = append(out, w.summary)
	}

	for i := range out {
		out[i].TotalAgentCommission = RoundMoney(out[i].TotalAgentCommission)
		out[i].TotalCompanyDollar = RoundMoney(out[i].TotalCompanyDollar)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AgentName != out[j].AgentName {
			return out[i].AgentName < out[j].AgentName
		}
		return out[i].WindowStart.Before(out[j].WindowStart)
	})
	return out
}
