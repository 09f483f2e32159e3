// Package normalize repairs loosely-shaped generator output into the
// canonical weekly plan contract. It never fails: every missing or
// mistyped field is replaced with a documented default, and final
// acceptance is deferred to the contract validator.
package normalize

import (
	"time"

	"fitweek/internal/contract"
)

// Defaults substituted for absent fields.
const (
	defaultWorkoutStart  = "18:00"
	defaultDurationMin   = 60
	defaultLocation      = "home"
	defaultIntensity     = "Moderate intensity"
	restDayIntensity     = "Rest day"
	defaultSets          = 3
	defaultReps          = "10"
	defaultRestSec       = 60
	defaultMealTime      = "Breakfast"
	defaultMacroNote     = "Balanced macros"
	defaultBlockName     = "Exercise"
	defaultMobilityMin   = 10
	defaultSleepTargetHr = 8.0
	defaultHydrationL    = 3.0
	defaultSummaryNotes  = "Generated weekly plan"
	defaultJustification = "Plan generated from your profile, equipment, pantry, and availability."
)

// fieldAliases maps canonical plan fields to the synonyms generators
// use for them. The first present name wins; the canonical name is
// always listed first.
var fieldAliases = map[string][]string{
	"week_start":      {"week_start", "start_date"},
	"blocks":          {"blocks", "exercises"},
	"sleep_target_hr": {"sleep_target_hr", "sleep_hours"},
	"hydration_l":     {"hydration_l", "hydration_liters"},
}

func pick(m map[string]any, canonical string) (any, bool) {
	names, ok := fieldAliases[canonical]
	if !ok {
		names = []string{canonical}
	}
	for _, k := range names {
		if v, present := m[k]; present {
			return v, true
		}
	}
	return nil, false
}

// Plan reshapes an untrusted parsed object into a weekly_plan_v1
// structure. weekStart is the requested week start date, used when the
// source omits its own and when inferring missing day dates.
func Plan(raw map[string]any, weekStart string) contract.WeeklyPlan {
	raw = unwrap(raw)

	ws := weekStart
	if v, ok := pick(raw, "week_start"); ok {
		ws = asString(v, weekStart)
	}
	wsDate, err := time.Parse(contract.DateLayout, ws)
	if err != nil {
		// Unusable source date; fall back to the requested one.
		ws = weekStart
		wsDate, err = time.Parse(contract.DateLayout, weekStart)
	}

	plan := contract.WeeklyPlan{
		Version:   contract.WeeklyPlanVersion,
		WeekStart: ws,
	}

	rawDays := asList(raw["days"])
	plan.Days = make([]contract.DayPlan, 0, len(rawDays))
	for i, rd := range rawDays {
		fallbackDate := ""
		if err == nil {
			fallbackDate = wsDate.AddDate(0, 0, i).Format(contract.DateLayout)
		}
		plan.Days = append(plan.Days, Day(asMap(rd), fallbackDate))
	}

	sm := asMap(raw["summary"])
	plan.Summary = contract.Summary{
		GroceryGap: asStringList(sm["grocery_gap"]),
		Notes:      asString(sm["notes"], defaultSummaryNotes),
	}
	trainingSum := 0
	for _, d := range plan.Days {
		trainingSum += d.Workout.DurationMin
	}
	if v, ok := sm["total_training_min"]; ok {
		plan.Summary.TotalTrainingMin = asInt(v, trainingSum)
	} else {
		plan.Summary.TotalTrainingMin = trainingSum
	}

	plan.Justification = asString(raw["justification"], defaultJustification)
	return plan
}

// Day reshapes a single day object. fallbackDate fills a missing or
// empty date field; it may itself be empty when no usable week start
// exists, in which case validation will reject the result.
func Day(m map[string]any, fallbackDate string) contract.DayPlan {
	day := contract.DayPlan{
		Date:    asString(m["date"], fallbackDate),
		Workout: workout(m),
		Meals:   meals(m["meals"]),
	}

	rm := asMap(m["recovery"])
	sleep, _ := pick(rm, "sleep_target_hr")
	hydration, _ := pick(rm, "hydration_l")
	day.Recovery = contract.Recovery{
		SleepTargetHr: asFloat(sleep, defaultSleepTargetHr),
		MobilityMin:   asInt(rm["mobility_min"], defaultMobilityMin),
		HydrationL:    asFloat(hydration, defaultHydrationL),
	}
	return day
}

// unwrap removes a single enclosing container key when the whole plan
// was nested one level deep (e.g. {"weekly_plan": {...}}).
func unwrap(raw map[string]any) map[string]any {
	if len(raw) != 1 {
		return raw
	}
	for _, v := range raw {
		if inner, ok := v.(map[string]any); ok {
			return inner
		}
	}
	return raw
}

func workout(day map[string]any) contract.Workout {
	var wm map[string]any
	if v, ok := day["workout"]; ok {
		wm = asMap(v)
	} else if v, ok := day["workouts"]; ok {
		// Plural variant: take the first entry.
		switch t := v.(type) {
		case []any:
			if len(t) > 0 {
				wm = asMap(t[0])
			}
		case map[string]any:
			wm = t
		}
	}
	if wm == nil {
		wm = map[string]any{}
	}

	w := contract.Workout{
		Start:       asString(wm["start"], defaultWorkoutStart),
		DurationMin: asInt(wm["duration_min"], defaultDurationMin),
		Location:    location(wm["location"]),
		Blocks:      blocks(wm),
		Fallbacks:   asStringList(wm["fallbacks"]),
	}

	note := defaultIntensity
	if len(w.Blocks) == 0 {
		note = restDayIntensity
	}
	w.IntensityNote = asString(wm["intensity_note"], note)
	return w
}

func location(v any) string {
	switch asString(v, defaultLocation) {
	case "gym", "Gym", "GYM":
		return "gym"
	default:
		return defaultLocation
	}
}

func blocks(wm map[string]any) []contract.ExerciseBlock {
	v, _ := pick(wm, "blocks")
	items := asList(v)
	out := make([]contract.ExerciseBlock, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			// Bare exercise name with default prescription.
			out = append(out, contract.ExerciseBlock{
				Name: s, Sets: defaultSets, Reps: defaultReps, RestSec: defaultRestSec,
			})
			continue
		}
		bm := asMap(item)
		out = append(out, contract.ExerciseBlock{
			Name:    asString(bm["name"], defaultBlockName),
			Sets:    clampMin(asInt(bm["sets"], defaultSets), 1),
			Reps:    asString(bm["reps"], defaultReps),
			RestSec: clampMin(asInt(bm["rest_sec"], defaultRestSec), 0),
		})
	}
	return out
}

func meals(v any) []contract.Meal {
	items := asList(v)
	out := make([]contract.Meal, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, contract.Meal{
				Time: defaultMealTime, Name: s, Ingredients: []string{}, MacroNote: defaultMacroNote,
			})
			continue
		}
		mm := asMap(item)
		meal := contract.Meal{
			Time:        asString(mm["time"], defaultMealTime),
			Name:        asString(mm["name"], "Meal"),
			Ingredients: ingredients(mm["ingredients"]),
			MacroNote:   asString(mm["macro_note"], defaultMacroNote),
		}
		if steps := asStringList(mm["recipe_steps"]); len(steps) > 0 {
			meal.RecipeSteps = steps
		}
		out = append(out, meal)
	}
	return out
}

// ingredients flattens each entry to a display string. Structured
// entries become "name (qty unit)", with the unit omitted when absent.
func ingredients(v any) []string {
	items := asList(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			if s := asString(item, ""); s != "" {
				out = append(out, s)
			}
			continue
		}

		name := asString(m["name"], "")
		if name == "" {
			if s := asString(m, ""); s != "" {
				out = append(out, s)
			}
			continue
		}
		qty := asString(m["qty"], asString(m["quantity"], ""))
		unit := asString(m["unit"], "")
		switch {
		case qty != "" && unit != "":
			out = append(out, name+" ("+qty+" "+unit+")")
		case qty != "":
			out = append(out, name+" ("+qty+")")
		default:
			out = append(out, name)
		}
	}
	return out
}

func clampMin(n, min int) int {
	if n < min {
		return min
	}
	return n
}
