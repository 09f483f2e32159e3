package adapt

import "fitweek/internal/contract"

// ApplyPatches merges an ordered patch list into a copy of the plan.
// The original plan is left untouched. Patches carrying a date replace
// that day's workout; dateless patches update the summary, where new
// grocery-gap entries are unioned in without duplicating existing
// ones. Patches naming an unknown date are ignored.
func ApplyPatches(plan *contract.WeeklyPlan, patches []contract.DayPatch) *contract.WeeklyPlan {
	merged := *plan
	merged.Days = make([]contract.DayPlan, len(plan.Days))
	copy(merged.Days, plan.Days)
	merged.Summary.GroceryGap = append([]string(nil), plan.Summary.GroceryGap...)

	for _, patch := range patches {
		if patch.Date == nil {
			if patch.SummaryUpdate != nil {
				mergeGroceryGap(&merged.Summary, patch.SummaryUpdate.GroceryGap)
			}
			continue
		}
		for i := range merged.Days {
			if merged.Days[i].Date != *patch.Date {
				continue
			}
			if patch.Workout != nil {
				merged.Days[i].Workout = *patch.Workout
			}
			break
		}
	}

	merged.Summary.TotalTrainingMin = 0
	for _, day := range merged.Days {
		merged.Summary.TotalTrainingMin += day.Workout.DurationMin
	}
	return &merged
}

func mergeGroceryGap(summary *contract.Summary, items []string) {
	seen := make(map[string]bool, len(summary.GroceryGap))
	for _, item := range summary.GroceryGap {
		seen[item] = true
	}
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			summary.GroceryGap = append(summary.GroceryGap, item)
		}
	}
}
