package contract

// Contract version tags. Any structural change to the shapes below must
// introduce a new tag; consumers reject tags they do not recognize.
const (
	InputContractVersion = "input_contract_v1"
	WeeklyPlanVersion    = "weekly_plan_v1"
)

// Gym access patterns accepted by the questionnaire.
const (
	GymNever        = "never"
	GymWeekendsOnly = "weekends_only"
	GymDaily        = "daily"
)

// Grocery shopping frequencies accepted by the questionnaire.
const (
	GroceryDaily  = "daily"
	GroceryTwice  = "2-3x_weekly"
	GroceryWeekly = "weekly"
)

// User identifies the requesting account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Questionnaire carries the onboarding answers used to steer generation.
type Questionnaire struct {
	Bio              map[string]any `json:"bio_json"`
	Goals            map[string]any `json:"goals_json"`
	Diet             map[string]any `json:"diet_json"`
	Allergens        []string       `json:"allergens_json"`
	Cuisine          map[string]any `json:"cuisine_json"`
	WorkHours        map[string]any `json:"work_hours_json"`
	GymFrequency     string         `json:"gym_frequency"`
	GroceryFrequency string         `json:"grocery_frequency"`
	ReminderPrefs    map[string]any `json:"reminder_prefs_json"`
}

// Equipment is the user's available equipment, unique by case-insensitive name.
type Equipment struct {
	Items []string `json:"items"`
}

// PantryItem is a single pantry entry.
type PantryItem struct {
	Name    string `json:"name"`
	QtyUnit string `json:"qty_unit"`
}

// Pantry is the pantry portion of a plan request.
type Pantry struct {
	Items []PantryItem `json:"items"`
}

// PantrySnapshot is the stored pantry including the shopping schedule.
// A next_shopping_date in the past marks the snapshot stale; replanning
// against a stale pantry is refused.
type PantrySnapshot struct {
	Items            []PantryItem `json:"items"`
	LastShoppingDate string       `json:"last_shopping_date,omitempty"`
	NextShoppingDate string       `json:"next_shopping_date,omitempty"`
}

// FreeBlock is one free time window on a given day.
type FreeBlock struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Availability is the user's free time blocks.
type Availability struct {
	FreeBlocks []FreeBlock `json:"free_blocks"`
}

// PlanInput is the transient request assembled per generation call.
// Sections the user has not set up yet are nil; the validator names
// them instead of generation crashing on them. All seven top-level
// sections must be present before generation is attempted; absence of
// any is a precondition failure, not a retryable error.
type PlanInput struct {
	Version       string         `json:"version,omitempty"`
	User          *User          `json:"user"`
	Questionnaire *Questionnaire `json:"questionnaire"`
	Equipment     *Equipment     `json:"equipment"`
	Pantry        *Pantry        `json:"pantry"`
	Availability  *Availability  `json:"availability"`
	WeekStart     string         `json:"week_start"`
	Timezone      string         `json:"timezone"`
}

// ExerciseBlock is a single exercise within a workout. Reps stays a
// string so non-numeric schemes ("AMRAP", "8-12") survive round trips.
type ExerciseBlock struct {
	Name    string `json:"name"`
	Sets    int    `json:"sets"`
	Reps    string `json:"reps"`
	RestSec int    `json:"rest_sec"`
}

// Workout is one day's training block.
type Workout struct {
	Start         string          `json:"start"`
	DurationMin   int             `json:"duration_min"`
	Location      string          `json:"location"`
	Blocks        []ExerciseBlock `json:"blocks"`
	IntensityNote string          `json:"intensity_note"`
	Fallbacks     []string        `json:"fallbacks"`
}

// Meal is one planned meal. Ingredients are display strings; any richer
// source structure is flattened before storage.
type Meal struct {
	Time        string   `json:"time"`
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	MacroNote   string   `json:"macro_note"`
	RecipeSteps []string `json:"recipe_steps,omitempty"`
}

// Recovery is one day's recovery targets.
type Recovery struct {
	SleepTargetHr float64 `json:"sleep_target_hr"`
	MobilityMin   int     `json:"mobility_min"`
	HydrationL    float64 `json:"hydration_l"`
}

// DayPlan is one calendar day of the weekly plan.
type DayPlan struct {
	Date     string   `json:"date"`
	Workout  Workout  `json:"workout"`
	Meals    []Meal   `json:"meals"`
	Recovery Recovery `json:"recovery"`
}

// Summary aggregates plan-wide numbers.
type Summary struct {
	GroceryGap       []string `json:"grocery_gap"`
	TotalTrainingMin int      `json:"total_training_min"`
	Notes            string   `json:"notes"`
}

// WeeklyPlan is the persisted output of one generation: exactly seven
// days starting at WeekStart, dates increasing by one day.
type WeeklyPlan struct {
	Version       string    `json:"version,omitempty"`
	WeekStart     string    `json:"week_start"`
	Days          []DayPlan `json:"days"`
	Summary       Summary   `json:"summary"`
	Justification string    `json:"justification"`
}

// AdherenceLog is one user-submitted record per calendar date. A zero
// RPE or Soreness means "not reported" (valid values are 1-10).
type AdherenceLog struct {
	Date        string `json:"date"`
	WorkoutDone bool   `json:"workout_done"`
	RPE         int    `json:"rpe,omitempty"`
	Soreness    int    `json:"soreness,omitempty"`
	MealsDone   int    `json:"meals_done"`
	Notes       string `json:"notes,omitempty"`
}

// SummaryUpdate is the summary-level portion of a patch.
type SummaryUpdate struct {
	GroceryGap []string `json:"grocery_gap"`
}

// DayPatch is a partial overlay produced by the adaptation engine. A nil
// Date marks a plan-wide patch (summary level) rather than a specific
// day. Patches are merged into a WeeklyPlan snapshot and never persisted
// on their own.
type DayPatch struct {
	Date          *string        `json:"date"`
	Workout       *Workout       `json:"workout,omitempty"`
	SummaryUpdate *SummaryUpdate `json:"summary_update,omitempty"`
}
