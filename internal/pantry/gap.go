// Package pantry compares the ingredients a weekly plan calls for
// against what is actually on the shelf.
package pantry

import (
	"strings"
	"time"

	"fitweek/internal/contract"
)

// Covered reports whether an ingredient is satisfied by any pantry item.
// Matching is case-insensitive and runs substring containment in both
// directions, so "chicken" on the shelf covers "Chicken Breast" in the
// plan and vice versa.
func Covered(ingredient string, items []contract.PantryItem) bool {
	ing := strings.ToLower(strings.TrimSpace(ingredient))
	if ing == "" {
		return true
	}
	for _, item := range items {
		name := strings.ToLower(strings.TrimSpace(item.Name))
		if name == "" {
			continue
		}
		if strings.Contains(ing, name) || strings.Contains(name, ing) {
			return true
		}
	}
	return false
}

// GapList returns the plan ingredients that no pantry item covers.
// Only days on or after today count; meals already eaten are not worth
// shopping for. Results keep first-seen order and are deduplicated on
// the exact ingredient string, so "Olive Oil" and "olive oil" appear
// as two entries if the plan spells them both ways.
func GapList(plan *contract.WeeklyPlan, items []contract.PantryItem, today time.Time) []string {
	gaps := []string{}
	seen := make(map[string]bool)
	day := today.Format(contract.DateLayout)

	for _, d := range plan.Days {
		if d.Date < day {
			continue
		}
		for _, meal := range d.Meals {
			for _, ing := range meal.Ingredients {
				if seen[ing] {
					continue
				}
				seen[ing] = true
				if !Covered(ing, items) {
					gaps = append(gaps, ing)
				}
			}
		}
	}
	return gaps
}

// DaysUntilShopping returns the number of days from today until the
// snapshot's next shopping date. Zero or negative means the shopping
// day has already passed. An unparseable or empty date counts as
// passed as well, so callers fall back to a fresh grocery run.
func DaysUntilShopping(snapshot *contract.PantrySnapshot, today time.Time) int {
	next, err := time.Parse(contract.DateLayout, snapshot.NextShoppingDate)
	if err != nil {
		return 0
	}
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(next.Sub(midnight).Hours() / 24)
}
