package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"fitweek/internal/contract"
	"fitweek/internal/database"
)

// PantryRepository stores the single pantry snapshot per user.
type PantryRepository struct {
	db *sql.DB
}

func NewPantryRepository(db *database.DB) *PantryRepository {
	return &PantryRepository{db: db.SQL}
}

// Save upserts the pantry snapshot.
func (r *PantryRepository) Save(ctx context.Context, userID string, snapshot *contract.PantrySnapshot) error {
	items, err := json.Marshal(snapshot.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal pantry items: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pantry (user_id, items_json, last_shopping_date, next_shopping_date, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			items_json = excluded.items_json,
			last_shopping_date = excluded.last_shopping_date,
			next_shopping_date = excluded.next_shopping_date,
			updated_at = CURRENT_TIMESTAMP`,
		userID, string(items), nullableDate(snapshot.LastShoppingDate), nullableDate(snapshot.NextShoppingDate),
	)
	if err != nil {
		return fmt.Errorf("failed to save pantry: %w", err)
	}
	return nil
}

// Get returns the pantry snapshot, or nil when the user has none.
func (r *PantryRepository) Get(ctx context.Context, userID string) (*contract.PantrySnapshot, error) {
	var items string
	var last, next sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT items_json, last_shopping_date, next_shopping_date
		FROM pantry WHERE user_id = ?`, userID,
	).Scan(&items, &last, &next)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pantry: %w", err)
	}

	snapshot := &contract.PantrySnapshot{
		LastShoppingDate: last.String,
		NextShoppingDate: next.String,
	}
	if err := json.Unmarshal([]byte(items), &snapshot.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pantry items: %w", err)
	}
	return snapshot, nil
}

func nullableDate(v string) any {
	if v == "" {
		return nil
	}
	return v
}
