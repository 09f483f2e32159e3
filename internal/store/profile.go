// Package store persists user setup data, plan snapshots, and
// adherence logs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"fitweek/internal/contract"
	"fitweek/internal/database"
)

// Store bundles the repositories over one database connection.
type Store struct {
	Profiles  *ProfileRepository
	Plans     *PlanRepository
	Adherence *AdherenceRepository
	Pantry    *PantryRepository
}

func New(db *database.DB) *Store {
	return &Store{
		Profiles:  &ProfileRepository{db: db.SQL},
		Plans:     &PlanRepository{db: db.SQL},
		Adherence: &AdherenceRepository{db: db.SQL},
		Pantry:    &PantryRepository{db: db.SQL},
	}
}

// LoadPlanInput assembles a generation input from everything stored
// for the user. Missing setup sections come back as nil fields so the
// validator can name them, rather than as an error here.
func (s *Store) LoadPlanInput(ctx context.Context, userID, weekStart, fallbackTimezone string) (*contract.PlanInput, error) {
	in := &contract.PlanInput{
		Version:   contract.InputContractVersion,
		WeekStart: weekStart,
		Timezone:  fallbackTimezone,
	}

	user, timezone, err := s.Profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	in.User = user
	if timezone != "" {
		in.Timezone = timezone
	}

	if in.Questionnaire, err = s.Profiles.GetQuestionnaire(ctx, userID); err != nil {
		return nil, err
	}
	if in.Equipment, err = s.Profiles.GetEquipment(ctx, userID); err != nil {
		return nil, err
	}
	if in.Availability, err = s.Profiles.GetAvailability(ctx, userID); err != nil {
		return nil, err
	}

	snapshot, err := s.Pantry.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snapshot != nil {
		in.Pantry = &contract.Pantry{Items: snapshot.Items}
	}

	return in, nil
}

// ProfileRepository stores the user identity and setup sections.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db.SQL}
}

// Save upserts the profile row for a user.
func (r *ProfileRepository) Save(ctx context.Context, user contract.User, timezone string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, email, timezone)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET email = excluded.email, timezone = excluded.timezone`,
		user.ID, user.Email, timezone,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Get returns the user and timezone, or nil when no profile exists.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*contract.User, string, error) {
	var user contract.User
	var timezone string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, email, timezone FROM profiles WHERE user_id = ?`, userID,
	).Scan(&user.ID, &user.Email, &timezone)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get profile: %w", err)
	}
	return &user, timezone, nil
}

// SaveQuestionnaire upserts the questionnaire for a user.
func (r *ProfileRepository) SaveQuestionnaire(ctx context.Context, userID string, q *contract.Questionnaire) error {
	cols := []struct {
		name string
		src  any
	}{
		{"bio_json", q.Bio},
		{"goals_json", q.Goals},
		{"diet_json", q.Diet},
		{"allergens_json", q.Allergens},
		{"cuisine_json", q.Cuisine},
		{"work_hours_json", q.WorkHours},
		{"reminder_prefs_json", q.ReminderPrefs},
	}
	blobs := make([]string, len(cols))
	for i, c := range cols {
		b, err := json.Marshal(c.src)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", c.name, err)
		}
		blobs[i] = string(b)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO questionnaire (
			user_id, bio_json, goals_json, diet_json, allergens_json,
			cuisine_json, work_hours_json, gym_frequency, grocery_frequency,
			reminder_prefs_json, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			bio_json = excluded.bio_json,
			goals_json = excluded.goals_json,
			diet_json = excluded.diet_json,
			allergens_json = excluded.allergens_json,
			cuisine_json = excluded.cuisine_json,
			work_hours_json = excluded.work_hours_json,
			gym_frequency = excluded.gym_frequency,
			grocery_frequency = excluded.grocery_frequency,
			reminder_prefs_json = excluded.reminder_prefs_json,
			updated_at = CURRENT_TIMESTAMP`,
		userID, blobs[0], blobs[1], blobs[2], blobs[3], blobs[4], blobs[5],
		q.GymFrequency, q.GroceryFrequency, blobs[6],
	)
	if err != nil {
		return fmt.Errorf("failed to save questionnaire: %w", err)
	}
	return nil
}

// GetQuestionnaire returns the stored questionnaire, or nil when the
// user has not completed it yet.
func (r *ProfileRepository) GetQuestionnaire(ctx context.Context, userID string) (*contract.Questionnaire, error) {
	var bio, goals, diet, allergens, cuisine, workHours, reminders string
	q := &contract.Questionnaire{}
	err := r.db.QueryRowContext(ctx, `
		SELECT bio_json, goals_json, diet_json, allergens_json, cuisine_json,
		       work_hours_json, gym_frequency, grocery_frequency, reminder_prefs_json
		FROM questionnaire WHERE user_id = ?`, userID,
	).Scan(&bio, &goals, &diet, &allergens, &cuisine, &workHours, &q.GymFrequency, &q.GroceryFrequency, &reminders)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get questionnaire: %w", err)
	}

	for _, col := range []struct {
		blob string
		dst  any
	}{
		{bio, &q.Bio},
		{goals, &q.Goals},
		{diet, &q.Diet},
		{allergens, &q.Allergens},
		{cuisine, &q.Cuisine},
		{workHours, &q.WorkHours},
		{reminders, &q.ReminderPrefs},
	} {
		if err := json.Unmarshal([]byte(col.blob), col.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal questionnaire: %w", err)
		}
	}
	return q, nil
}

// SaveEquipment upserts the equipment list for a user. Items are
// unique by case-insensitive name; later duplicates are dropped and
// the first spelling wins.
func (r *ProfileRepository) SaveEquipment(ctx context.Context, userID string, equipment *contract.Equipment) error {
	seen := make(map[string]bool, len(equipment.Items))
	deduped := make([]string, 0, len(equipment.Items))
	for _, item := range equipment.Items {
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, item)
	}

	items, err := json.Marshal(deduped)
	if err != nil {
		return fmt.Errorf("failed to marshal equipment: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO equipment (user_id, items_json, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET items_json = excluded.items_json, updated_at = CURRENT_TIMESTAMP`,
		userID, string(items),
	)
	if err != nil {
		return fmt.Errorf("failed to save equipment: %w", err)
	}
	return nil
}

// GetEquipment returns the equipment list, or nil when unset.
func (r *ProfileRepository) GetEquipment(ctx context.Context, userID string) (*contract.Equipment, error) {
	var items string
	err := r.db.QueryRowContext(ctx,
		`SELECT items_json FROM equipment WHERE user_id = ?`, userID,
	).Scan(&items)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}

	equipment := &contract.Equipment{}
	if err := json.Unmarshal([]byte(items), &equipment.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal equipment: %w", err)
	}
	return equipment, nil
}

// SaveAvailability upserts the free-block list for a user.
func (r *ProfileRepository) SaveAvailability(ctx context.Context, userID string, availability *contract.Availability) error {
	blocks, err := json.Marshal(availability.FreeBlocks)
	if err != nil {
		return fmt.Errorf("failed to marshal availability: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO availability (user_id, free_blocks_json, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET free_blocks_json = excluded.free_blocks_json, updated_at = CURRENT_TIMESTAMP`,
		userID, string(blocks),
	)
	if err != nil {
		return fmt.Errorf("failed to save availability: %w", err)
	}
	return nil
}

// GetAvailability returns the free-block list, or nil when unset.
func (r *ProfileRepository) GetAvailability(ctx context.Context, userID string) (*contract.Availability, error) {
	var blocks string
	err := r.db.QueryRowContext(ctx,
		`SELECT free_blocks_json FROM availability WHERE user_id = ?`, userID,
	).Scan(&blocks)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}

	availability := &contract.Availability{}
	if err := json.Unmarshal([]byte(blocks), &availability.FreeBlocks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal availability: %w", err)
	}
	return availability, nil
}
