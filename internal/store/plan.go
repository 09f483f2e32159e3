package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fitweek/internal/contract"
	"fitweek/internal/database"
)

// PlanRepository stores weekly plan snapshots. Plans are append-only:
// regenerating a week adds a new row, and the most recent row by
// creation time is the current plan.
type PlanRepository struct {
	db *sql.DB
}

func NewPlanRepository(db *database.DB) *PlanRepository {
	return &PlanRepository{db: db.SQL}
}

// PlanRecord is a stored plan snapshot with its identity.
type PlanRecord struct {
	ID        string
	WeekStart string
	CreatedAt time.Time
	Plan      contract.WeeklyPlan
}

// Save appends a new snapshot and returns its id.
func (r *PlanRepository) Save(ctx context.Context, userID string, plan *contract.WeeklyPlan) (string, error) {
	blob, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO weekly_plans (id, user_id, week_start_date, plan_json)
		VALUES (?, ?, ?, ?)`,
		id, userID, plan.WeekStart, string(blob),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save plan: %w", err)
	}
	return id, nil
}

// CurrentForWeek returns the latest snapshot for the week, or nil when
// no plan has been generated yet. Snapshots created in the same second
// fall back to insert order.
func (r *PlanRepository) CurrentForWeek(ctx context.Context, userID, weekStart string) (*contract.WeeklyPlan, error) {
	var blob string
	err := r.db.QueryRowContext(ctx, `
		SELECT plan_json FROM weekly_plans
		WHERE user_id = ? AND week_start_date = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`,
		userID, weekStart,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current plan: %w", err)
	}

	plan := &contract.WeeklyPlan{}
	if err := json.Unmarshal([]byte(blob), plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return plan, nil
}

// ListRecent returns up to limit snapshots, newest first.
func (r *PlanRepository) ListRecent(ctx context.Context, userID string, limit int) ([]PlanRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, week_start_date, created_at, plan_json FROM weekly_plans
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var records []PlanRecord
	for rows.Next() {
		var rec PlanRecord
		var blob string
		if err := rows.Scan(&rec.ID, &rec.WeekStart, &rec.CreatedAt, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		if err := json.Unmarshal([]byte(blob), &rec.Plan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
