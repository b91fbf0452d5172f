/*
batch.go - Batch orchestration across agents

PURPOSE:
  Processes an ordered list of closed transactions into commission
  breakdowns and YTD summaries for every listed agent. The orchestrator
  resolves each agent's plan and team, sorts each agent's transactions by
  closing date, and folds through them maintaining YTD state via the
  tracker while the calculator does the per-transaction math.

FAILURE POLICY:
  - Configuration errors (invalid tier lists, assignments referencing
    unknown plans/teams) fail the batch BEFORE any calculation runs.
  - Data errors (missing loop id, missing agent names, bad closing date)
    are recorded per record and skipped; the batch continues. Partial
    success is the default.
  - Agents with no assignment still produce breakdowns using the record's
    own CSV-reported figures and are listed by AgentsWithoutPlans.

CONCURRENCY:
  Each agent's fold is independent of every other agent's, so agent groups
  are processed on separate goroutines. Within one agent's group the fold
  is strictly ordered by closing date - that ordering guarantee is
  non-negotiable, since out-of-order folding changes cap/tier results.
  Output is re-sorted after the join so results are deterministic.

SEE ALSO:
  - calculator.go: Per-transaction math
  - anniversary.go: Window resolution and YTD state
  - variance.go: Consumes breakdowns (or recomputes) for reconciliation
*/
package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// BatchInput bundles a calculation run's transactions and configuration.
type BatchInput struct {
	Transactions []Transaction
	Plans        []CommissionPlan
	Teams        []Team
	Assignments  []AgentAssignment
}

// BatchResult is the output of one calculation run.
type BatchResult struct {
	Breakdowns []CommissionBreakdown
	Summaries  []YTDSummary

	// Per-record data failures. Never fatal to the batch.
	Errors []RecordError

	unassigned []string
}

// AgentsWithoutPlans returns agents that appeared in the input but have no
// assignment, sorted by name. Their breakdowns used the CSV-reported
// figures with no plan-derived cap/tier logic.
func (r *BatchResult) AgentsWithoutPlans() []string {
	return r.unassigned
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator drives a batch calculation run.
type Orchestrator struct {
	Calculator *Calculator

	// MaxParallelAgents bounds concurrent agent folds. Zero or negative
	// means one goroutine per agent.
	MaxParallelAgents int
}

func NewOrchestrator() *Orchestrator {
	return &Orchestrator{Calculator: NewCalculator()}
}

// Calculate runs the full batch. Configuration errors return immediately;
// data errors are collected into the result.
func (o *Orchestrator) Calculate(input BatchInput) (*BatchResult, error) {
	plans := make(map[PlanID]CommissionPlan, len(input.Plans))
	for _, p := range input.Plans {
		if p.UseSliding {
			if violations := ValidateTiers(p.Tiers); len(violations) > 0 {
				return nil, &InvalidTierConfigError{PlanID: p.ID, Violations: violations}
			}
		}
		plans[p.ID] = p
	}

	teams := make(map[TeamID]Team, len(input.Teams))
	for _, t := range input.Teams {
		teams[t.ID] = t
	}

	assignments := make(map[string]AgentAssignment, len(input.Assignments))
	for _, a := range input.Assignments {
		if _, ok := plans[a.PlanID]; !ok {
			return nil, fmt.Errorf("assignment for %s references plan %s: %w", a.AgentName, a.PlanID, ErrPlanNotFound)
		}
		if a.TeamID != "" {
			if _, ok := teams[a.TeamID]; !ok {
				return nil, fmt.Errorf("assignment for %s references team %s: %w", a.AgentName, a.TeamID, ErrTeamNotFound)
			}
		}
		assignments[a.AgentName] = a
	}

	result := &BatchResult{}
	groups := o.groupByAgent(input.Transactions, result)

	// Deterministic agent ordering for the fan-out.
	agents := make([]string, 0, len(groups))
	for agent := range groups {
		agents = append(agents, agent)
	}
	sort.Strings(agents)

	outputs := o.foldAgents(agents, groups, plans, teams, assignments)

	var credits []teamCredit
	unassignedSet := make(map[string]bool)
	for _, out := range outputs {
		result.Breakdowns = append(result.Breakdowns, out.breakdowns...)
		result.Summaries = append(result.Summaries, out.summaries...)
		result.Errors = append(result.Errors, out.errors...)
		credits = append(credits, out.credits...)
		if out.unassigned {
			unassignedSet[out.agent] = true
		}
	}

	o.applyTeamCredits(result, credits, assignments)

	for agent := range unassignedSet {
		result.unassigned = append(result.unassigned, agent)
	}
	sort.Strings(result.unassigned)

	sort.Slice(result.Breakdowns, func(i, j int) bool {
		a, b := result.Breakdowns[i], result.Breakdowns[j]
		if !a.ClosingDate.Equal(b.ClosingDate) {
			return a.ClosingDate.Before(b.ClosingDate)
		}
		if a.LoopID != b.LoopID {
			return a.LoopID < b.LoopID
		}
		return a.AgentName < b.AgentName
	})
	sort.Slice(result.Summaries, func(i, j int) bool {
		a, b := result.Summaries[i], result.Summaries[j]
		if a.AgentName != b.AgentName {
			return a.AgentName < b.AgentName
		}
		return a.WindowStart.Before(b.WindowStart)
	})

	return result, nil
}

// groupByAgent validates records and produces one transaction group per
// listed agent. A transaction with N agents lands in N groups.
func (o *Orchestrator) groupByAgent(txs []Transaction, result *BatchResult) map[string][]Transaction {
	groups := make(map[string][]Transaction)
	for _, tx := range txs {
		if tx.LoopID == "" {
			result.Errors = append(result.Errors, RecordError{Reason: ErrMissingLoopID.Error()})
			continue
		}
		agents := tx.AgentList()
		if len(agents) == 0 {
			result.Errors = append(result.Errors, RecordError{LoopID: tx.LoopID, Reason: ErrMissingAgent.Error()})
			continue
		}
		if tx.ClosingDate.IsZero() {
			result.Errors = append(result.Errors, RecordError{LoopID: tx.LoopID, Reason: "missing or unparseable closing date"})
			continue
		}
		for _, agent := range agents {
			groups[agent] = append(groups[agent], tx)
		}
	}
	return groups
}

// =============================================================================
// PER-AGENT FOLD
// =============================================================================

type agentOutput struct {
	agent      string
	breakdowns []CommissionBreakdown
	summaries  []YTDSummary
	errors     []RecordError
	credits    []teamCredit
	unassigned bool
}

type teamCredit struct {
	Lead    string
	Closing Date
	Amount  decimal.Decimal
}

func (o *Orchestrator) foldAgents(
	agents []string,
	groups map[string][]Transaction,
	plans map[PlanID]CommissionPlan,
	teams map[TeamID]Team,
	assignments map[string]AgentAssignment,
) []agentOutput {
	outputs := make([]agentOutput, len(agents))

	limit := o.MaxParallelAgents
	if limit <= 0 {
		limit = len(agents)
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i, agent := range agents {
		wg.Add(1)
		go func(slot int, agent string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outputs[slot] = o.foldAgent(agent, groups[agent], plans, teams, assignments)
		}(i, agent)
	}
	wg.Wait()

	return outputs
}

// foldAgent processes one agent's transactions in strictly ascending
// closing-date order with its own YTD tracker.
func (o *Orchestrator) foldAgent(
	agent string,
	group []Transaction,
	plans map[PlanID]CommissionPlan,
	teams map[TeamID]Team,
	assignments map[string]AgentAssignment,
) agentOutput {
	out := agentOutput{agent: agent}

	sorted := make([]Transaction, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ClosingDate.Equal(sorted[j].ClosingDate) {
			return sorted[i].ClosingDate.Before(sorted[j].ClosingDate)
		}
		return sorted[i].LoopID < sorted[j].LoopID
	})

	assignment, assigned := assignments[agent]
	var anniversary MonthDay
	var plan CommissionPlan
	var team *Team
	if assigned {
		anniversary = assignment.Anniversary
		plan = plans[assignment.PlanID]
		if assignment.TeamID != "" {
			t := teams[assignment.TeamID]
			team = &t
		}
	} else {
		out.unassigned = true
	}

	tracker := NewYTDTracker()
	for _, tx := range sorted {
		ytdBefore := tracker.Enter(agent, anniversary, tx.ClosingDate)

		var breakdown CommissionBreakdown
		if assigned {
			var err error
			breakdown, err = o.Calculator.CalculateTransactionCommission(tx, agent, plan, team, ytdBefore)
			if err != nil {
				out.errors = append(out.errors, RecordError{LoopID: tx.LoopID, AgentName: agent, Reason: err.Error()})
				continue
			}
		} else {
			breakdown = o.fallbackBreakdown(tx, agent, ytdBefore)
		}

		trackable := o.Calculator.Split.Share(tx.AgentList(), agent, tx.GrossCommission())
		memberNet := breakdown.AgentNetCommission.Sub(breakdown.TeamLeadShare)
		tracker.Record(agent, trackable, memberNet, breakdown.BrokerageSplitAmount)

		if breakdown.TeamLeadShare.IsPositive() {
			out.credits = append(out.credits, teamCredit{
				Lead:    breakdown.TeamLeadName,
				Closing: tx.ClosingDate,
				Amount:  breakdown.TeamLeadShare,
			})
		}

		out.breakdowns = append(out.breakdowns, breakdown)
	}

	out.summaries = tracker.Summaries()
	return out
}

// fallbackBreakdown handles agents with no assignment: the record's own
// CSV-reported figures stand in, with no plan-derived cap/tier logic.
func (o *Orchestrator) fallbackBreakdown(tx Transaction, agent string, ytdBefore decimal.Decimal) CommissionBreakdown {
	agents := tx.AgentList()
	n := decimal.NewFromInt(int64(len(agents)))
	gci := ClampNonNegative(o.Calculator.Split.Share(agents, agent, tx.GrossCommission()))

	net := gci
	companyDollar := decimal.Zero
	if tx.ReportedAgentNet.IsPositive() {
		net = tx.ReportedAgentNet.Div(n)
		companyDollar = gci.Sub(net)
	}
	if tx.ReportedCompanyDollar.IsPositive() {
		companyDollar = tx.ReportedCompanyDollar.Div(n)
		if !tx.ReportedAgentNet.IsPositive() {
			net = ClampNonNegative(gci.Sub(companyDollar))
		}
	}

	return CommissionBreakdown{
		LoopID:                tx.LoopID,
		AgentName:             agent,
		GrossCommissionIncome: RoundMoney(gci),
		BrokerageSplitAmount:  RoundMoney(ClampNonNegative(companyDollar)),
		AgentNetCommission:    RoundMoney(ClampNonNegative(net)),
		SplitType:             SplitSimple,
		YTDCompanyDollarAfter: RoundMoney(ytdBefore.Add(gci)),
		ClosingDate:           tx.ClosingDate,
	}
}

// =============================================================================
// TEAM CREDITS - Book the lead's side of each team split
// =============================================================================

// applyTeamCredits adds each redirect to the lead's summary window. Credits
// are applied serially after the join so concurrent folds never touch
// another agent's summary.
func (o *Orchestrator) applyTeamCredits(result *BatchResult, credits []teamCredit, assignments map[string]AgentAssignment) {
	if len(credits) == 0 {
		return
	}

	sort.Slice(credits, func(i, j int) bool {
		if credits[i].Lead != credits[j].Lead {
			return credits[i].Lead < credits[j].Lead
		}
		return credits[i].Closing.Before(credits[j].Closing)
	})

	for _, credit := range credits {
		applied := false
		for i := range result.Summaries {
			s := &result.Summaries[i]
			if s.AgentName != credit.Lead {
				continue
			}
			window := Period{Start: s.WindowStart, End: s.WindowEnd}
			if window.Contains(credit.Closing) {
				s.TotalAgentCommission = RoundMoney(s.TotalAgentCommission.Add(credit.Amount))
				applied = true
				break
			}
		}
		if applied {
			continue
		}

		// Lead had no activity of their own in this window.
		var anniversary MonthDay
		if a, ok := assignments[credit.Lead]; ok {
			anniversary = a.Anniversary
		}
		window := AnniversaryWindow(anniversary, credit.Closing)
		result.Summaries = append(result.Summaries, YTDSummary{
			AgentName:            credit.Lead,
			WindowStart:          window.Start,
			WindowEnd:            window.End,
			TotalAgentCommission: RoundMoney(credit.Amount),
			TotalCompanyDollar:   decimal.Zero,
		})
	}
}
