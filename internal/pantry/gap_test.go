package pantry

import (
	"reflect"
	"testing"
	"time"

	"fitweek/internal/contract"
)

func dayWithIngredients(date string, ingredients ...string) contract.DayPlan {
	return contract.DayPlan{
		Date: date,
		Meals: []contract.Meal{
			{Time: "Dinner", Name: "Meal", Ingredients: ingredients, MacroNote: "Balanced macros"},
		},
	}
}

func TestGapListSubstringMatching(t *testing.T) {
	plan := &contract.WeeklyPlan{
		Days: []contract.DayPlan{
			dayWithIngredients("2025-01-15", "Chicken Breast", "Olive Oil"),
		},
	}
	items := []contract.PantryItem{
		{Name: "chicken", QtyUnit: "500 g"},
		{Name: "EVOO", QtyUnit: "1 bottle"},
	}

	today := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	gaps := GapList(plan, items, today)

	want := []string{"Olive Oil"}
	if !reflect.DeepEqual(gaps, want) {
		t.Errorf("Expected gaps %v, got %v", want, gaps)
	}
}

func TestGapListSkipsPastDays(t *testing.T) {
	plan := &contract.WeeklyPlan{
		Days: []contract.DayPlan{
			dayWithIngredients("2025-01-13", "Salmon"),
			dayWithIngredients("2025-01-15", "Quinoa"),
			dayWithIngredients("2025-01-16", "Quinoa", "Spinach"),
		},
	}

	today := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	gaps := GapList(plan, nil, today)

	// Salmon falls on a past day; Quinoa appears twice but is listed once.
	want := []string{"Quinoa", "Spinach"}
	if !reflect.DeepEqual(gaps, want) {
		t.Errorf("Expected gaps %v, got %v", want, gaps)
	}
}

func TestGapListDedupeIsExactString(t *testing.T) {
	plan := &contract.WeeklyPlan{
		Days: []contract.DayPlan{
			dayWithIngredients("2025-01-15", "Olive Oil", "olive oil"),
		},
	}

	today := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	gaps := GapList(plan, nil, today)

	if len(gaps) != 2 {
		t.Errorf("Expected spelling variants to be kept, got %v", gaps)
	}
}

func TestGapListEmptyWhenCovered(t *testing.T) {
	plan := &contract.WeeklyPlan{
		Days: []contract.DayPlan{
			dayWithIngredients("2025-01-15", "Greek Yogurt"),
		},
	}
	items := []contract.PantryItem{{Name: "greek yogurt", QtyUnit: "1 kg"}}

	gaps := GapList(plan, items, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	if len(gaps) != 0 {
		t.Errorf("Expected no gaps, got %v", gaps)
	}
}

func TestDaysUntilShopping(t *testing.T) {
	today := time.Date(2025, 1, 15, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		next string
		want int
	}{
		{name: "Future", next: "2025-01-18", want: 3},
		{name: "Today", next: "2025-01-15", want: 0},
		{name: "Passed", next: "2025-01-10", want: -5},
		{name: "Unparseable", next: "soon", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := &contract.PantrySnapshot{NextShoppingDate: tt.next}
			if got := DaysUntilShopping(snapshot, today); got != tt.want {
				t.Errorf("Expected %d days, got %d", tt.want, got)
			}
		})
	}
}
