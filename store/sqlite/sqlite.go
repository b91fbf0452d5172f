/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements ledger.Store (adjustments + append-only audit log) and a
  configuration store for plans, teams, and assignments. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The audit_log table is append-only:
  - No UPDATE statements, no DELETE statements
  - Reverting an adjustment deletes the adjustment row but its audit
    entries remain forever

KEY TABLES:
  adjustments:  Mutable manual-override records (the only mutable state)
  audit_log:    Immutable trail of every adjustment mutation
  plans:        Commission plan definitions (config JSON)
  teams:        Team definitions
  assignments:  Agent-to-plan/team bindings

READ-YOUR-WRITES:
  SQLite in WAL mode over a single *sql.DB gives the reviewer UI
  read-your-writes consistency out of the box.

USAGE:
  st, err := sqlite.New("./data/commission.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

  led := ledger.New(st)

SEE ALSO:
  - ledger/store.go: Interface definition
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/engine"
	"github.com/warp/commission-engine/ledger"
)

// Store implements ledger.Store plus configuration persistence using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Adjustments (the only mutable state the engine owns)
	CREATE TABLE IF NOT EXISTS adjustments (
		id TEXT PRIMARY KEY,
		loop_id TEXT NOT NULL,
		agent_name TEXT NOT NULL,
		original_value TEXT NOT NULL,
		adjusted_value TEXT NOT NULL,
		adjustment_amount TEXT NOT NULL,
		reason TEXT NOT NULL,
		status TEXT NOT NULL,
		created_by TEXT NOT NULL,
		approved_by TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_adjustments_loop
		ON adjustments(loop_id);
	CREATE INDEX IF NOT EXISTS idx_adjustments_agent
		ON adjustments(agent_name);
	CREATE INDEX IF NOT EXISTS idx_adjustments_status
		ON adjustments(status);

	-- Audit log (append-only; entries outlive their adjustments)
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		adjustment_id TEXT NOT NULL,
		action TEXT NOT NULL,
		actor TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		previous_value TEXT,
		new_value TEXT,
		seq INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_audit_adjustment
		ON audit_log(adjustment_id, seq);

	-- Commission plans
	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Teams
	CREATE TABLE IF NOT EXISTS teams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lead_agent TEXT NOT NULL,
		team_split_percentage TEXT NOT NULL
	);

	-- Agent assignments
	CREATE TABLE IF NOT EXISTS assignments (
		agent_name TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL,
		team_id TEXT,
		anniversary TEXT NOT NULL,
		start_date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_plan
		ON assignments(plan_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEDGER STORE - Adjustments
// =============================================================================

func (s *Store) PutAdjustment(ctx context.Context, adj ledger.VarianceAdjustment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO adjustments
			(id, loop_id, agent_name, original_value, adjusted_value,
			 adjustment_amount, reason, status, created_by, approved_by,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			adjusted_value = excluded.adjusted_value,
			adjustment_amount = excluded.adjustment_amount,
			reason = excluded.reason,
			status = excluded.status,
			approved_by = excluded.approved_by,
			updated_at = excluded.updated_at`,
		adj.ID, adj.LoopID, adj.AgentName,
		adj.OriginalValue.String(), adj.AdjustedValue.String(),
		adj.AdjustmentAmount.String(), adj.Reason, string(adj.Status),
		adj.CreatedBy, adj.ApprovedBy,
		adj.CreatedAt.UTC().Format(time.RFC3339Nano),
		adj.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *Store) GetAdjustment(ctx context.Context, id string) (*ledger.VarianceAdjustment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, loop_id, agent_name, original_value, adjusted_value,
		       adjustment_amount, reason, status, created_by, approved_by,
		       created_at, updated_at
		FROM adjustments WHERE id = ?`, id)

	adj, err := scanAdjustment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return adj, nil
}

func (s *Store) DeleteAdjustment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM adjustments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &ledger.NotFoundError{ID: id}
	}
	return nil
}

func (s *Store) ListAdjustments(ctx context.Context) ([]ledger.VarianceAdjustment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, loop_id, agent_name, original_value, adjusted_value,
		       adjustment_amount, reason, status, created_by, approved_by,
		       created_at, updated_at
		FROM adjustments ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.VarianceAdjustment
	for rows.Next() {
		adj, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *adj)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAdjustment(row scanner) (*ledger.VarianceAdjustment, error) {
	var adj ledger.VarianceAdjustment
	var original, adjusted, amount, status, createdAt, updatedAt string
	var approvedBy sql.NullString

	err := row.Scan(&adj.ID, &adj.LoopID, &adj.AgentName,
		&original, &adjusted, &amount, &adj.Reason, &status,
		&adj.CreatedBy, &approvedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if adj.OriginalValue, err = decimal.NewFromString(original); err != nil {
		return nil, fmt.Errorf("corrupt original_value for %s: %w", adj.ID, err)
	}
	if adj.AdjustedValue, err = decimal.NewFromString(adjusted); err != nil {
		return nil, fmt.Errorf("corrupt adjusted_value for %s: %w", adj.ID, err)
	}
	if adj.AdjustmentAmount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("corrupt adjustment_amount for %s: %w", adj.ID, err)
	}
	adj.Status = ledger.AdjustmentStatus(status)
	adj.ApprovedBy = approvedBy.String
	if adj.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if adj.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}
	return &adj, nil
}

// =============================================================================
// LEDGER STORE - Audit log (append-only)
// =============================================================================

func (s *Store) AppendAudit(ctx context.Context, entry ledger.AuditLogEntry) error {
	var prev, next sql.NullString
	if entry.PreviousValue != nil {
		prev = sql.NullString{String: entry.PreviousValue.String(), Valid: true}
	}
	if entry.NewValue != nil {
		next = sql.NullString{String: entry.NewValue.String(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log
			(id, adjustment_id, action, actor, timestamp, previous_value, new_value, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM audit_log))`,
		entry.ID, entry.AdjustmentID, string(entry.Action), entry.Actor,
		entry.Timestamp.UTC().Format(time.RFC3339Nano), prev, next,
	)
	return err
}

func (s *Store) AuditEntries(ctx context.Context, adjustmentID string) ([]ledger.AuditLogEntry, error) {
	return s.queryAudit(ctx, `
		SELECT id, adjustment_id, action, actor, timestamp, previous_value, new_value
		FROM audit_log WHERE adjustment_id = ? ORDER BY seq`, adjustmentID)
}

func (s *Store) AllAuditEntries(ctx context.Context) ([]ledger.AuditLogEntry, error) {
	return s.queryAudit(ctx, `
		SELECT id, adjustment_id, action, actor, timestamp, previous_value, new_value
		FROM audit_log ORDER BY seq`)
}

func (s *Store) queryAudit(ctx context.Context, query string, args ...any) ([]ledger.AuditLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.AuditLogEntry
	for rows.Next() {
		var e ledger.AuditLogEntry
		var ts string
		var prev, next sql.NullString
		if err := rows.Scan(&e.ID, &e.AdjustmentID, &e.Action, &e.Actor, &ts, &prev, &next); err != nil {
			return nil, err
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, err
		}
		if prev.Valid {
			d, err := decimal.NewFromString(prev.String)
			if err != nil {
				return nil, err
			}
			e.PreviousValue = &d
		}
		if next.Valid {
			d, err := decimal.NewFromString(next.String)
			if err != nil {
				return nil, err
			}
			e.NewValue = &d
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// CONFIG STORE - Plans, teams, assignments
// =============================================================================

// SavePlan persists a plan as a config JSON blob.
func (s *Store) SavePlan(ctx context.Context, plan engine.CommissionPlan) error {
	blob, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plans (id, name, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			updated_at = excluded.updated_at`,
		string(plan.ID), plan.Name, string(blob), now, now)
	return err
}

// LoadPlans returns every stored plan.
func (s *Store) LoadPlans(ctx context.Context) ([]engine.CommissionPlan, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT config_json FROM plans ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.CommissionPlan
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var plan engine.CommissionPlan
		if err := json.Unmarshal([]byte(blob), &plan); err != nil {
			return nil, fmt.Errorf("corrupt plan config: %w", err)
		}
		out = append(out, plan)
	}
	return out, rows.Err()
}

// SaveTeam persists one team.
func (s *Store) SaveTeam(ctx context.Context, team engine.Team) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, lead_agent, team_split_percentage)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			lead_agent = excluded.lead_agent,
			team_split_percentage = excluded.team_split_percentage`,
		string(team.ID), team.Name, team.LeadAgent, team.TeamSplitPercentage.String())
	return err
}

// LoadTeams returns every stored team.
func (s *Store) LoadTeams(ctx context.Context) ([]engine.Team, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, lead_agent, team_split_percentage FROM teams ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Team
	for rows.Next() {
		var team engine.Team
		var id, split string
		if err := rows.Scan(&id, &team.Name, &team.LeadAgent, &split); err != nil {
			return nil, err
		}
		team.ID = engine.TeamID(id)
		if team.TeamSplitPercentage, err = decimal.NewFromString(split); err != nil {
			return nil, fmt.Errorf("corrupt team split for %s: %w", id, err)
		}
		out = append(out, team)
	}
	return out, rows.Err()
}

// SaveAssignment persists one agent assignment.
func (s *Store) SaveAssignment(ctx context.Context, a engine.AgentAssignment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assignments (agent_name, plan_id, team_id, anniversary, start_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(agent_name) DO UPDATE SET
			plan_id = excluded.plan_id,
			team_id = excluded.team_id,
			anniversary = excluded.anniversary,
			start_date = excluded.start_date`,
		a.AgentName, string(a.PlanID), string(a.TeamID), a.Anniversary.String(), a.StartDate.String())
	return err
}

// LoadAssignments returns every stored assignment.
func (s *Store) LoadAssignments(ctx context.Context) ([]engine.AgentAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT agent_name, plan_id, team_id, anniversary, start_date FROM assignments ORDER BY agent_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.AgentAssignment
	for rows.Next() {
		var a engine.AgentAssignment
		var planID, teamID, anniversary, startDate string
		if err := rows.Scan(&a.AgentName, &planID, &teamID, &anniversary, &startDate); err != nil {
			return nil, err
		}
		a.PlanID = engine.PlanID(planID)
		a.TeamID = engine.TeamID(teamID)
		if a.Anniversary, err = engine.ParseMonthDay(anniversary); err != nil {
			return nil, fmt.Errorf("corrupt anniversary for %s: %w", a.AgentName, err)
		}
		if a.StartDate, err = engine.ParseDate(startDate); err != nil {
			return nil, fmt.Errorf("corrupt start date for %s: %w", a.AgentName, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
