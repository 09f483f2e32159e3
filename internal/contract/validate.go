package contract

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO date form used for week_start, day dates, and
// adherence log dates throughout the system.
const DateLayout = "2006-01-02"

// inputField pairs a contract field path with its presence check. The
// required-field list is the input schema: the validator walks it, and
// tests enumerate it.
type inputField struct {
	path    string
	present func(in *PlanInput) bool
}

var inputRequired = []inputField{
	{"user", func(in *PlanInput) bool {
		return in.User != nil && (in.User.ID != "" || in.User.Email != "")
	}},
	{"user.id", func(in *PlanInput) bool { return in.User != nil && in.User.ID != "" }},
	{"user.email", func(in *PlanInput) bool { return in.User != nil && in.User.Email != "" }},
	{"questionnaire", func(in *PlanInput) bool {
		return in.Questionnaire != nil &&
			in.Questionnaire.GymFrequency != "" && in.Questionnaire.GroceryFrequency != ""
	}},
	{"equipment.items", func(in *PlanInput) bool { return in.Equipment != nil && len(in.Equipment.Items) > 0 }},
	{"pantry.items", func(in *PlanInput) bool { return in.Pantry != nil && len(in.Pantry.Items) > 0 }},
	{"availability.free_blocks", func(in *PlanInput) bool {
		return in.Availability != nil && len(in.Availability.FreeBlocks) > 0
	}},
	{"week_start", func(in *PlanInput) bool { return in.WeekStart != "" }},
	{"timezone", func(in *PlanInput) bool { return in.Timezone != "" }},
}

// ValidateInput checks a PlanInput candidate against input_contract_v1.
// Failures are user-setup gaps (INFO_NEEDED), reported with the full
// list of missing field paths.
func ValidateInput(in *PlanInput) *ValidationError {
	if in.Version != "" && in.Version != InputContractVersion {
		return &ValidationError{
			Kind:    KindInfoNeeded,
			Message: fmt.Sprintf("unrecognized input contract version %q", in.Version),
		}
	}

	var missing []string
	for _, f := range inputRequired {
		if !f.present(in) {
			missing = append(missing, f.path)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{
			Kind:          KindInfoNeeded,
			MissingFields: missing,
			Message:       "missing required fields: " + strings.Join(missing, ", "),
		}
	}

	if _, err := time.Parse(DateLayout, in.WeekStart); err != nil {
		return &ValidationError{
			Kind:    KindInfoNeeded,
			Message: fmt.Sprintf("week_start %q is not a valid date", in.WeekStart),
		}
	}
	return nil
}

// ValidatePlan checks a normalized WeeklyPlan candidate against
// weekly_plan_v1. A failure means the plan must not be persisted.
func ValidatePlan(plan *WeeklyPlan) *ValidationError {
	if plan.Version != "" && plan.Version != WeeklyPlanVersion {
		return planInvalid(fmt.Sprintf("unrecognized plan contract version %q", plan.Version))
	}
	if plan.WeekStart == "" {
		return planInvalid("week_start is required")
	}
	weekStart, err := time.Parse(DateLayout, plan.WeekStart)
	if err != nil {
		return planInvalid(fmt.Sprintf("week_start %q is not a valid date", plan.WeekStart))
	}
	if plan.Justification == "" {
		return planInvalid("justification is required")
	}

	if len(plan.Days) != 7 {
		return planInvalid(fmt.Sprintf("days must contain exactly 7 entries, got %d", len(plan.Days)))
	}
	for i, day := range plan.Days {
		prefix := fmt.Sprintf("days[%d]", i)

		date, err := time.Parse(DateLayout, day.Date)
		if err != nil {
			return planInvalid(fmt.Sprintf("%s.date %q is not a valid date", prefix, day.Date))
		}
		if want := weekStart.AddDate(0, 0, i); !date.Equal(want) {
			return planInvalid(fmt.Sprintf("%s.date %q does not follow week_start by %d days", prefix, day.Date, i))
		}

		w := day.Workout
		if w.Start == "" {
			return planInvalid(prefix + ".workout.start is required")
		}
		if w.DurationMin < 0 {
			return planInvalid(prefix + ".workout.duration_min must be non-negative")
		}
		if w.Location != "gym" && w.Location != "home" {
			return planInvalid(fmt.Sprintf("%s.workout.location %q must be \"gym\" or \"home\"", prefix, w.Location))
		}
		if w.IntensityNote == "" {
			return planInvalid(prefix + ".workout.intensity_note is required")
		}
		for j, b := range w.Blocks {
			bp := fmt.Sprintf("%s.workout.blocks[%d]", prefix, j)
			if b.Name == "" {
				return planInvalid(bp + ".name is required")
			}
			if b.Sets < 1 {
				return planInvalid(bp + ".sets must be at least 1")
			}
			if b.Reps == "" {
				return planInvalid(bp + ".reps is required")
			}
			if b.RestSec < 0 {
				return planInvalid(bp + ".rest_sec must be non-negative")
			}
		}

		for j, m := range day.Meals {
			mp := fmt.Sprintf("%s.meals[%d]", prefix, j)
			if m.Time == "" {
				return planInvalid(mp + ".time is required")
			}
			if m.Name == "" {
				return planInvalid(mp + ".name is required")
			}
			if m.MacroNote == "" {
				return planInvalid(mp + ".macro_note is required")
			}
		}

		if day.Recovery.SleepTargetHr <= 0 {
			return planInvalid(prefix + ".recovery.sleep_target_hr must be positive")
		}
		if day.Recovery.MobilityMin < 0 {
			return planInvalid(prefix + ".recovery.mobility_min must be non-negative")
		}
	}

	if plan.Summary.TotalTrainingMin < 0 {
		return planInvalid("summary.total_training_min must be non-negative")
	}
	return nil
}

func planInvalid(msg string) *ValidationError {
	return &ValidationError{Kind: KindInvalidGeneration, Message: msg}
}
