package telegram

import (
	"strings"
	"testing"

	"fitweek/internal/contract"
)

func TestFormatPlanMarkdown(t *testing.T) {
	plan := &contract.WeeklyPlan{
		WeekStart: "2025-01-13",
		Days: []contract.DayPlan{
			{
				Date: "2025-01-13",
				Workout: contract.Workout{
					Start: "18:00", DurationMin: 45, Location: "home",
					IntensityNote: "Moderate intensity",
				},
				Meals: []contract.Meal{
					{Time: "Dinner", Name: "Chicken Bowl", MacroNote: "High protein"},
				},
			},
		},
		Summary: contract.Summary{
			GroceryGap:       []string{"Olive Oil"},
			TotalTrainingMin: 45,
		},
	}

	out := formatPlanMarkdown(plan)

	if !strings.Contains(out, "📅 *Weekly Plan* (from 2025-01-13)") {
		t.Error("Missing plan header")
	}
	if !strings.Contains(out, "*2025-01-13* — 18:00, 45 min (home)") {
		t.Error("Missing day line")
	}
	if !strings.Contains(out, "_Moderate intensity_") {
		t.Error("Missing intensity note")
	}
	if !strings.Contains(out, "🍽 Dinner: Chicken Bowl") {
		t.Error("Missing meal line")
	}
	if !strings.Contains(out, "⏱ *Total training:* 45 min") {
		t.Error("Missing total training line")
	}
	if !strings.Contains(out, "• Olive Oil") {
		t.Error("Missing grocery gap item")
	}
}

func TestFormatDayMarkdown(t *testing.T) {
	day := &contract.DayPlan{
		Date: "2025-01-15",
		Workout: contract.Workout{
			Start: "07:00", DurationMin: 30, Location: "gym",
			Blocks: []contract.ExerciseBlock{
				{Name: "Squats", Sets: 3, Reps: "10", RestSec: 60},
			},
			IntensityNote: "Easy pace",
		},
		Meals: []contract.Meal{
			{Time: "Lunch", Name: "Rice Bowl", MacroNote: "Carbs"},
		},
		Recovery: contract.Recovery{SleepTargetHr: 8, MobilityMin: 10, HydrationL: 3},
	}

	out := formatDayMarkdown(day)

	if !strings.Contains(out, "• Squats: 3 x 10, rest 60s") {
		t.Error("Missing exercise block line")
	}
	if !strings.Contains(out, "• Lunch: Rice Bowl (Carbs)") {
		t.Error("Missing meal line")
	}
	if !strings.Contains(out, "• Sleep: 8.0 hr") {
		t.Error("Missing sleep target")
	}
	if !strings.Contains(out, "• Hydration: 3.0 L") {
		t.Error("Missing hydration target")
	}
}
