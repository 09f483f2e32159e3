package store

import (
	"context"
	"database/sql"
	"fmt"

	"fitweek/internal/contract"
	"fitweek/internal/database"
)

// AdherenceRepository stores one log row per user per date. Saving a
// second log for the same date overwrites the first.
type AdherenceRepository struct {
	db *sql.DB
}

func NewAdherenceRepository(db *database.DB) *AdherenceRepository {
	return &AdherenceRepository{db: db.SQL}
}

// Upsert writes the log for its date. Zero RPE or soreness means the
// user did not report them and is stored as NULL.
func (r *AdherenceRepository) Upsert(ctx context.Context, userID string, log contract.AdherenceLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO adherence_logs (user_id, date, workout_done, rpe, soreness, meals_done, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			workout_done = excluded.workout_done,
			rpe = excluded.rpe,
			soreness = excluded.soreness,
			meals_done = excluded.meals_done,
			notes = excluded.notes`,
		userID, log.Date, log.WorkoutDone, nullableScore(log.RPE), nullableScore(log.Soreness), log.MealsDone, log.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to save adherence log: %w", err)
	}
	return nil
}

// RecentSince returns up to limit logs on or after the given date,
// newest first.
func (r *AdherenceRepository) RecentSince(ctx context.Context, userID, since string, limit int) ([]contract.AdherenceLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, workout_done, rpe, soreness, meals_done, notes
		FROM adherence_logs
		WHERE user_id = ? AND date >= ?
		ORDER BY date DESC
		LIMIT ?`,
		userID, since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list adherence logs: %w", err)
	}
	defer rows.Close()

	var logs []contract.AdherenceLog
	for rows.Next() {
		var log contract.AdherenceLog
		var rpe, soreness sql.NullInt64
		var notes sql.NullString
		if err := rows.Scan(&log.Date, &log.WorkoutDone, &rpe, &soreness, &log.MealsDone, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan adherence row: %w", err)
		}
		log.RPE = int(rpe.Int64)
		log.Soreness = int(soreness.Int64)
		log.Notes = notes.String
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func nullableScore(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
