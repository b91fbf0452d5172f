/*
Package config loads commission configuration from YAML files.

PURPOSE:
  Plans, teams, and assignments are operator-managed configuration,
  created and updated out of band. This package parses a YAML file into
  engine types and validates it up front, so configuration errors surface
  before any calculation runs - a plan that fails tier validation is
  rejected at load time, never silently degraded.

FILE SHAPE:
  plans:
    - id: tiered-pro
      name: Tiered Producer
      use_sliding: true
      tiers:
        - threshold: 0
          split_percentage: 60
          description: Tier 1
  teams:
    - id: north
      lead_agent: Sarah Miller
      team_split_percentage: 10
  assignments:
    - agent_name: James Wilson
      plan_id: tiered-pro
      team_id: north
      anniversary: 03-15
      start_date: 2023-03-15

SEE ALSO:
  - engine/types.go: Target types
  - engine/tiers.go: Tier validation applied at load
*/
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/commission-engine/engine"
)

// =============================================================================
// YAML SCHEMA TYPES
// =============================================================================

// The schema types carry both yaml and json tags: the API layer accepts
// the same shapes over HTTP that the file loader accepts from disk.

type File struct {
	Plans       []PlanYAML       `yaml:"plans" json:"plans"`
	Teams       []TeamYAML       `yaml:"teams" json:"teams"`
	Assignments []AssignmentYAML `yaml:"assignments" json:"assignments"`
}

type PlanYAML struct {
	ID                string          `yaml:"id" json:"id"`
	Name              string          `yaml:"name" json:"name"`
	SplitPercentage   float64         `yaml:"split_percentage" json:"split_percentage"`
	CapAmount         float64         `yaml:"cap_amount" json:"cap_amount"`
	PostCapSplit      float64         `yaml:"post_cap_split" json:"post_cap_split"`
	UseSliding        bool            `yaml:"use_sliding" json:"use_sliding"`
	Tiers             []TierYAML      `yaml:"tiers" json:"tiers,omitempty"`
	Deductions        []DeductionYAML `yaml:"deductions" json:"deductions,omitempty"`
	RoyaltyPercentage float64         `yaml:"royalty_percentage" json:"royalty_percentage"`
	RoyaltyCap        float64         `yaml:"royalty_cap" json:"royalty_cap"`
}

type TierYAML struct {
	ID              string  `yaml:"id" json:"id"`
	Threshold       float64 `yaml:"threshold" json:"threshold"`
	SplitPercentage float64 `yaml:"split_percentage" json:"split_percentage"`
	Description     string  `yaml:"description" json:"description"`
}

type DeductionYAML struct {
	Type        string  `yaml:"type" json:"type"` // fixed | percentage
	Amount      float64 `yaml:"amount" json:"amount"`
	Description string  `yaml:"description" json:"description"`
}

type TeamYAML struct {
	ID                  string  `yaml:"id" json:"id"`
	Name                string  `yaml:"name" json:"name"`
	LeadAgent           string  `yaml:"lead_agent" json:"lead_agent"`
	TeamSplitPercentage float64 `yaml:"team_split_percentage" json:"team_split_percentage"`
}

type AssignmentYAML struct {
	AgentName   string `yaml:"agent_name" json:"agent_name"`
	PlanID      string `yaml:"plan_id" json:"plan_id"`
	TeamID      string `yaml:"team_id" json:"team_id"`
	Anniversary string `yaml:"anniversary" json:"anniversary"` // MM-DD
	StartDate   string `yaml:"start_date" json:"start_date"`   // YYYY-MM-DD
}

// =============================================================================
// LOADING
// =============================================================================

// Config is the validated, engine-ready configuration.
type Config struct {
	Plans       []engine.CommissionPlan
	Teams       []engine.Team
	Assignments []engine.AgentAssignment
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse converts raw YAML into validated engine configuration.
func Parse(data []byte) (*Config, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg := &Config{}
	planIDs := make(map[engine.PlanID]bool)
	teamIDs := make(map[engine.TeamID]bool)

	for i, p := range file.Plans {
		plan, err := ConvertPlan(p)
		if err != nil {
			return nil, fmt.Errorf("plan %d (%s): %w", i, p.ID, err)
		}
		if planIDs[plan.ID] {
			return nil, fmt.Errorf("plan %d: duplicate id %q", i, p.ID)
		}
		planIDs[plan.ID] = true
		cfg.Plans = append(cfg.Plans, plan)
	}

	for i, t := range file.Teams {
		team, err := ConvertTeam(t)
		if err != nil {
			return nil, fmt.Errorf("team %d (%s): %w", i, t.ID, err)
		}
		if teamIDs[team.ID] {
			return nil, fmt.Errorf("team %d: duplicate id %q", i, t.ID)
		}
		teamIDs[team.ID] = true
		cfg.Teams = append(cfg.Teams, team)
	}

	for i, a := range file.Assignments {
		assignment, err := ConvertAssignment(a)
		if err != nil {
			return nil, fmt.Errorf("assignment %d (%s): %w", i, a.AgentName, err)
		}
		if !planIDs[assignment.PlanID] {
			return nil, fmt.Errorf("assignment %d (%s): unknown plan %q", i, a.AgentName, a.PlanID)
		}
		if assignment.TeamID != "" && !teamIDs[assignment.TeamID] {
			return nil, fmt.Errorf("assignment %d (%s): unknown team %q", i, a.AgentName, a.TeamID)
		}
		cfg.Assignments = append(cfg.Assignments, assignment)
	}

	return cfg, nil
}

// =============================================================================
// CONVERSION / VALIDATION
// =============================================================================

// ConvertPlan validates one plan definition and converts it to the engine
// type. Sliding plans must pass tier validation; a zero post_cap_split
// defaults to 100 (agent keeps everything past the cap).
func ConvertPlan(p PlanYAML) (engine.CommissionPlan, error) {
	if p.ID == "" {
		return engine.CommissionPlan{}, fmt.Errorf("id is required")
	}
	if p.SplitPercentage < 0 || p.SplitPercentage > 100 {
		return engine.CommissionPlan{}, fmt.Errorf("split_percentage must be between 0 and 100")
	}

	postCap := p.PostCapSplit
	if postCap == 0 {
		postCap = 100
	}

	plan := engine.CommissionPlan{
		ID:                engine.PlanID(p.ID),
		Name:              p.Name,
		SplitPercentage:   decimal.NewFromFloat(p.SplitPercentage),
		CapAmount:         decimal.NewFromFloat(p.CapAmount),
		PostCapSplit:      decimal.NewFromFloat(postCap),
		UseSliding:        p.UseSliding,
		RoyaltyPercentage: decimal.NewFromFloat(p.RoyaltyPercentage),
		RoyaltyCap:        decimal.NewFromFloat(p.RoyaltyCap),
	}

	for _, t := range p.Tiers {
		plan.Tiers = append(plan.Tiers, engine.CommissionTier{
			ID:              t.ID,
			Threshold:       decimal.NewFromFloat(t.Threshold),
			SplitPercentage: decimal.NewFromFloat(t.SplitPercentage),
			Description:     t.Description,
		})
	}

	if plan.UseSliding {
		if violations := engine.ValidateTiers(plan.Tiers); len(violations) > 0 {
			return engine.CommissionPlan{}, &engine.InvalidTierConfigError{
				PlanID:     plan.ID,
				Violations: violations,
			}
		}
	}

	for _, d := range p.Deductions {
		var dtype engine.DeductionType
		switch d.Type {
		case "fixed":
			dtype = engine.DeductionFixed
		case "percentage":
			dtype = engine.DeductionPercentage
		default:
			return engine.CommissionPlan{}, fmt.Errorf("deduction type must be fixed or percentage, got %q", d.Type)
		}
		plan.Deductions = append(plan.Deductions, engine.Deduction{
			Type:        dtype,
			Amount:      decimal.NewFromFloat(d.Amount),
			Description: d.Description,
		})
	}

	return plan, nil
}

// ConvertTeam validates one team definition.
func ConvertTeam(t TeamYAML) (engine.Team, error) {
	if t.ID == "" {
		return engine.Team{}, fmt.Errorf("id is required")
	}
	if t.LeadAgent == "" {
		return engine.Team{}, fmt.Errorf("lead_agent is required")
	}
	if t.TeamSplitPercentage < 0 || t.TeamSplitPercentage > 100 {
		return engine.Team{}, fmt.Errorf("team_split_percentage must be between 0 and 100")
	}
	return engine.Team{
		ID:                  engine.TeamID(t.ID),
		Name:                t.Name,
		LeadAgent:           t.LeadAgent,
		TeamSplitPercentage: decimal.NewFromFloat(t.TeamSplitPercentage),
	}, nil
}

// ConvertAssignment validates one assignment definition.
func ConvertAssignment(a AssignmentYAML) (engine.AgentAssignment, error) {
	if a.AgentName == "" {
		return engine.AgentAssignment{}, fmt.Errorf("agent_name is required")
	}
	if a.PlanID == "" {
		return engine.AgentAssignment{}, fmt.Errorf("plan_id is required")
	}

	anniversary, err := engine.ParseMonthDay(a.Anniversary)
	if err != nil {
		return engine.AgentAssignment{}, err
	}

	var start engine.Date
	if a.StartDate != "" {
		if start, err = engine.ParseDate(a.StartDate); err != nil {
			return engine.AgentAssignment{}, err
		}
	}

	return engine.AgentAssignment{
		AgentName:   a.AgentName,
		PlanID:      engine.PlanID(a.PlanID),
		TeamID:      engine.TeamID(a.TeamID),
		Anniversary: anniversary,
		StartDate:   start,
	}, nil
}
