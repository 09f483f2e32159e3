package adapt

import (
	"fmt"
	"testing"
	"time"

	"fitweek/internal/contract"
)

func weekPlan() *contract.WeeklyPlan {
	plan := &contract.WeeklyPlan{
		Version:       contract.WeeklyPlanVersion,
		WeekStart:     "2025-01-13",
		Justification: "Test plan",
		Summary: contract.Summary{
			GroceryGap:       []string{},
			TotalTrainingMin: 7 * 60,
			Notes:            "Test week",
		},
	}
	for i := 0; i < 7; i++ {
		plan.Days = append(plan.Days, contract.DayPlan{
			Date: fmt.Sprintf("2025-01-%02d", 13+i),
			Workout: contract.Workout{
				Start:       "18:00",
				DurationMin: 60,
				Location:    "home",
				Blocks: []contract.ExerciseBlock{
					{Name: "Squats", Sets: 3, Reps: "10", RestSec: 60},
					{Name: "Plank", Sets: 1, Reps: "45 sec", RestSec: 30},
				},
				IntensityNote: "Moderate intensity",
			},
			Meals: []contract.Meal{
				{Time: "Dinner", Name: "Chicken Bowl", Ingredients: []string{"Chicken Breast", "Rice"}, MacroNote: "High protein"},
			},
			Recovery: contract.Recovery{SleepTargetHr: 8, MobilityMin: 10, HydrationL: 3},
		})
	}
	return plan
}

func logsFor(soreness, rpe []int) []contract.AdherenceLog {
	var logs []contract.AdherenceLog
	for i := range soreness {
		logs = append(logs, contract.AdherenceLog{
			Date:        fmt.Sprintf("2025-01-%02d", 13+i),
			WorkoutDone: true,
			Soreness:    soreness[i],
			RPE:         rpe[i],
			MealsDone:   3,
		})
	}
	return logs
}

func TestEvaluateOvertrainingTrigger(t *testing.T) {
	plan := weekPlan()
	logs := logsFor([]int{9, 9, 3}, []int{6, 7, 5})
	today := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	res := Evaluate(plan, logs, nil, today)

	if res.Status != contract.StatusAdapted {
		t.Fatalf("Expected status %q, got %q", contract.StatusAdapted, res.Status)
	}
	if res.Reason != "High soreness detected in recent workouts" {
		t.Errorf("Unexpected reason: %q", res.Reason)
	}

	// Wednesday through Sunday: 5 remaining days, one patch each.
	if len(res.Patches) != 5 {
		t.Fatalf("Expected 5 patches, got %d", len(res.Patches))
	}
	for _, patch := range res.Patches {
		if patch.Date == nil {
			t.Fatal("Expected every overtraining patch to carry a date")
		}
		if *patch.Date < "2025-01-15" {
			t.Errorf("Patch targets a past day: %s", *patch.Date)
		}
		if patch.Workout.DurationMin != 45 {
			t.Errorf("Expected duration 45, got %d", patch.Workout.DurationMin)
		}
		if patch.Workout.IntensityNote != recoveryNote {
			t.Errorf("Expected recovery note, got %q", patch.Workout.IntensityNote)
		}
		if patch.Workout.Blocks[0].Sets != 2 {
			t.Errorf("Expected sets reduced to 2, got %d", patch.Workout.Blocks[0].Sets)
		}
		if patch.Workout.Blocks[0].RestSec != 75 {
			t.Errorf("Expected rest 75, got %d", patch.Workout.Blocks[0].RestSec)
		}
		// Single-set time-based block: reps scheme is non-numeric, left alone.
		if patch.Workout.Blocks[1].Reps != "45 sec" {
			t.Errorf("Expected non-numeric reps unchanged, got %q", patch.Workout.Blocks[1].Reps)
		}
	}

	if res.Adapted == nil {
		t.Fatal("Expected merged plan alongside patches")
	}
	if res.Adapted.Days[0].Workout.DurationMin != 60 {
		t.Error("Merged plan changed a past day")
	}
	if res.Adapted.Days[6].Workout.DurationMin != 45 {
		t.Error("Merged plan did not apply the patch to Sunday")
	}
	if plan.Days[6].Workout.DurationMin != 60 {
		t.Error("Original plan was mutated")
	}
}

func TestEvaluateHighRPETrigger(t *testing.T) {
	plan := weekPlan()
	logs := logsFor([]int{3, 2, 4}, []int{9, 10, 5})
	today := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	res := Evaluate(plan, logs, nil, today)
	if res.Status != contract.StatusAdapted {
		t.Fatalf("Expected status %q, got %q", contract.StatusAdapted, res.Status)
	}
	if res.Reason != "Consistently high RPE indicating potential overtraining" {
		t.Errorf("Unexpected reason: %q", res.Reason)
	}
}

func TestEvaluateNoTrigger(t *testing.T) {
	plan := weekPlan()
	logs := logsFor([]int{3, 4, 2}, []int{5, 6, 4})
	today := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	res := Evaluate(plan, logs, nil, today)

	if res.Status != contract.StatusNoChange {
		t.Fatalf("Expected status %q, got %q", contract.StatusNoChange, res.Status)
	}
	if len(res.Patches) != 0 {
		t.Errorf("Expected empty patch list, got %d patches", len(res.Patches))
	}
	if res.Reason != NoChangeReason {
		t.Errorf("Unexpected reason: %q", res.Reason)
	}
}

func TestEvaluateCombinedRules(t *testing.T) {
	plan := weekPlan()
	logs := logsFor([]int{9, 8, 3}, []int{9, 9, 5})
	delta := &Delta{
		Items:             []contract.PantryItem{{Name: "rice", QtyUnit: "1 kg"}},
		DaysUntilShopping: 4,
	}
	today := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	res := Evaluate(plan, logs, delta, today)

	if res.Status != contract.StatusAdapted {
		t.Fatalf("Expected status %q, got %q", contract.StatusAdapted, res.Status)
	}
	want := "High soreness detected in recent workouts; Consistently high RPE indicating potential overtraining; Pantry is missing ingredients for upcoming meals"
	if res.Reason != want {
		t.Errorf("Expected combined reason %q, got %q", want, res.Reason)
	}

	// 5 day patches plus one summary-level pantry patch.
	if len(res.Patches) != 6 {
		t.Fatalf("Expected 6 patches, got %d", len(res.Patches))
	}
	last := res.Patches[5]
	if last.Date != nil {
		t.Error("Expected the pantry patch to be summary-level (nil date)")
	}
	if last.SummaryUpdate == nil || len(last.SummaryUpdate.GroceryGap) != 1 || last.SummaryUpdate.GroceryGap[0] != "Chicken Breast" {
		t.Errorf("Unexpected grocery gap patch: %+v", last.SummaryUpdate)
	}
	if res.Adapted.Summary.GroceryGap[0] != "Chicken Breast" {
		t.Error("Merged plan is missing the grocery gap entry")
	}
}

func TestEvaluateSkipsUnparseableDates(t *testing.T) {
	plan := weekPlan()
	plan.Days[4].Date = "someday"
	logs := logsFor([]int{9, 9, 9}, []int{5, 5, 5})
	today := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)

	res := Evaluate(plan, logs, nil, today)
	if res.Status != contract.StatusAdapted {
		t.Fatalf("Expected status %q, got %q", contract.StatusAdapted, res.Status)
	}
	if len(res.Patches) != 6 {
		t.Errorf("Expected the bad day to be skipped, got %d patches", len(res.Patches))
	}
}

func TestReduceReps(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"10", "8"},
		{"8-12", "6-9"},
		{"1", "1"},
		{"45 sec", "45 sec"},
		{"AMRAP", "AMRAP"},
	}
	for _, tt := range tests {
		if got := reduceReps(tt.in); got != tt.want {
			t.Errorf("reduceReps(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReduceWorkoutDurationFloor(t *testing.T) {
	w := reduceWorkout(contract.Workout{DurationMin: 6})
	if w.DurationMin != 5 {
		t.Errorf("Expected the 5 minute floor, got %d", w.DurationMin)
	}
}

func TestReplanAfterRestockStaleGuard(t *testing.T) {
	plan := weekPlan()
	today := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	snapshot := &contract.PantrySnapshot{
		Items:            []contract.PantryItem{{Name: "rice", QtyUnit: "1 kg"}},
		NextShoppingDate: "2025-01-14",
	}

	res := ReplanAfterRestock(plan, snapshot, today)

	if res.Status != contract.StatusNoChange {
		t.Fatalf("Expected status %q, got %q", contract.StatusNoChange, res.Status)
	}
	if res.Reason != "Shopping day has passed" {
		t.Errorf("Unexpected reason: %q", res.Reason)
	}
	if len(res.Patches) != 0 {
		t.Errorf("Expected no patches, got %d", len(res.Patches))
	}
}

func TestReplanAfterRestockFindsGaps(t *testing.T) {
	plan := weekPlan()
	today := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	snapshot := &contract.PantrySnapshot{
		Items:            []contract.PantryItem{{Name: "rice", QtyUnit: "1 kg"}},
		NextShoppingDate: "2025-01-18",
	}

	res := ReplanAfterRestock(plan, snapshot, today)

	if res.Status != contract.StatusAdapted {
		t.Fatalf("Expected status %q, got %q", contract.StatusAdapted, res.Status)
	}
	if len(res.Patches) != 1 || res.Patches[0].SummaryUpdate == nil {
		t.Fatalf("Expected a single summary patch, got %+v", res.Patches)
	}
}

func TestApplyPatchesUnionsGroceryGap(t *testing.T) {
	plan := weekPlan()
	plan.Summary.GroceryGap = []string{"Olive Oil"}

	patches := []contract.DayPatch{
		{SummaryUpdate: &contract.SummaryUpdate{GroceryGap: []string{"Olive Oil", "Chicken Breast"}}},
	}
	merged := ApplyPatches(plan, patches)

	if len(merged.Summary.GroceryGap) != 2 {
		t.Errorf("Expected union without duplicates, got %v", merged.Summary.GroceryGap)
	}
	if len(plan.Summary.GroceryGap) != 1 {
		t.Error("Original plan summary was mutated")
	}
}
