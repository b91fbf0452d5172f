/*
errors.go - Centralized error types for the commission engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers wrap these errors with additional context.

ERROR CATEGORIES:
  1. Configuration errors - Invalid plans/tiers; raised before calculation
  2. Data errors - Bad individual records; collected, never fatal to a batch
  3. Not-found errors - Unknown plan/assignment references

PROPAGATION POLICY:
  Configuration and not-found errors propagate to the immediate caller.
  Data errors are recorded as RecordError values in the batch result and
  the batch continues (partial success is the default).

USAGE:
    if errors.Is(err, engine.ErrInvalidTierConfig) {
        // reject the plan before running anything
    }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTierConfig is returned when a sliding plan's tier list fails
	// validation. Calculation must fail rather than fall back to flat split.
	ErrInvalidTierConfig = errors.New("invalid tier configuration")

	// ErrPlanNotFound is returned when an assignment references an unknown plan.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrTeamNotFound is returned when an assignment references an unknown team.
	ErrTeamNotFound = errors.New("team not found")

	// ErrMissingAgent is returned when a transaction lists no agent names.
	ErrMissingAgent = errors.New("transaction has no agent names")

	// ErrMissingLoopID is returned when a transaction has no identifier.
	ErrMissingLoopID = errors.New("transaction has no loop id")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TierValidationError describes one rule violation in a tier list.
// ValidateTiers reports every violation, not just the first.
type TierValidationError struct {
	TierIndex int // -1 for list-level violations
	Field     string
	Message   string
}

func (e TierValidationError) Error() string {
	if e.TierIndex < 0 {
		return fmt.Sprintf("tiers: %s", e.Message)
	}
	return fmt.Sprintf("tier %d: %s: %s", e.TierIndex, e.Field, e.Message)
}

// InvalidTierConfigError wraps the full set of violations for a plan.
type InvalidTierConfigError struct {
	PlanID     PlanID
	Violations []TierValidationError
}

func (e *InvalidTierConfigError) Error() string {
	return fmt.Sprintf("plan %s: %d tier validation error(s)", e.PlanID, len(e.Violations))
}

func (e *InvalidTierConfigError) Unwrap() error { return ErrInvalidTierConfig }

// RecordError is a per-record data failure collected during a batch run.
// These never abort the batch.
type RecordError struct {
	LoopID    string
	AgentName string
	Reason    string
}

func (e RecordError) Error() string {
	if e.AgentName != "" {
		return fmt.Sprintf("record %s (agent %s): %s", e.LoopID, e.AgentName, e.Reason)
	}
	return fmt.Sprintf("record %s: %s", e.LoopID, e.Reason)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigError returns true if the error stems from bad plan configuration.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidTierConfig)
}

// IsNotFound returns true if the error indicates a missing reference.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlanNotFound) || errors.Is(err, ErrTeamNotFound)
}
