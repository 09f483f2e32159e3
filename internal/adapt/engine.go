// Package adapt revises an existing weekly plan in place of a full
// regeneration. The rule engine here is deterministic: given the same
// plan, logs, and pantry delta it always produces the same patches.
package adapt

import (
	"strconv"
	"strings"
	"time"

	"fitweek/internal/contract"
	"fitweek/internal/pantry"
)

// Reason strings surfaced to the user when a rule fires.
const (
	reasonHighSoreness = "High soreness detected in recent workouts"
	reasonHighRPE      = "Consistently high RPE indicating potential overtraining"
	reasonPantryGap    = "Pantry is missing ingredients for upcoming meals"

	// NoChangeReason accompanies a NO_CHANGE result.
	NoChangeReason = "No adaptation needed"

	// ShoppingPassedReason signals stale pantry data to the replan path.
	ShoppingPassedReason = "Shopping day has passed"

	recoveryNote = "Reduced intensity for recovery"

	minDurationMin = 5
)

// Delta describes a pantry change relevant to adaptation.
type Delta struct {
	Items             []contract.PantryItem
	DaysUntilShopping int
}

// Result is the outcome of one evaluation.
type Result struct {
	Status  contract.Status
	Patches []contract.DayPatch
	Reason  string

	// Adapted is the plan with all patches already applied. Nil unless
	// Status is ADAPTED.
	Adapted *contract.WeeklyPlan
}

// Evaluate inspects recent adherence logs and an optional pantry delta
// against the current plan and decides whether to revise it. Rules are
// evaluated independently and their patches accumulate, so a single
// call can reduce workout load and flag grocery gaps at once. Days
// strictly before today are never touched.
func Evaluate(plan *contract.WeeklyPlan, logs []contract.AdherenceLog, delta *Delta, today time.Time) Result {
	var patches []contract.DayPatch
	var reasons []string

	if logs := lastN(logs, 3); overtrained(logs, &reasons) {
		patches = append(patches, reduceLoad(plan, today)...)
	}

	if delta != nil {
		if gaps := pantry.GapList(plan, delta.Items, today); len(gaps) > 0 {
			patches = append(patches, contract.DayPatch{
				SummaryUpdate: &contract.SummaryUpdate{GroceryGap: gaps},
			})
			reasons = append(reasons, reasonPantryGap)
		}
	}

	if len(patches) == 0 {
		return Result{Status: contract.StatusNoChange, Patches: []contract.DayPatch{}, Reason: NoChangeReason}
	}

	return Result{
		Status:  contract.StatusAdapted,
		Patches: patches,
		Reason:  strings.Join(reasons, "; "),
		Adapted: ApplyPatches(plan, patches),
	}
}

// ReplanAfterRestock runs the pantry rule after a shopping trip. When
// the snapshot's next shopping date is today or already past, the
// pantry data is considered stale and the call refuses to adapt.
func ReplanAfterRestock(plan *contract.WeeklyPlan, snapshot *contract.PantrySnapshot, today time.Time) Result {
	days := pantry.DaysUntilShopping(snapshot, today)
	if days <= 0 {
		return Result{Status: contract.StatusNoChange, Patches: []contract.DayPatch{}, Reason: ShoppingPassedReason}
	}
	return Evaluate(plan, nil, &Delta{Items: snapshot.Items, DaysUntilShopping: days}, today)
}

// overtrained checks the recent logs for the reduce-load triggers and
// appends the matching reason strings.
func overtrained(logs []contract.AdherenceLog, reasons *[]string) bool {
	var soreCount, rpeCount int
	for _, log := range logs {
		if log.Soreness >= 8 {
			soreCount++
		}
		if log.RPE >= 9 {
			rpeCount++
		}
	}

	fired := false
	if soreCount >= 2 {
		*reasons = append(*reasons, reasonHighSoreness)
		fired = true
	}
	if rpeCount >= 2 {
		*reasons = append(*reasons, reasonHighRPE)
		fired = true
	}
	return fired
}

// reduceLoad builds one patch per remaining day with a lightened
// workout. A day whose date does not parse is skipped so the rest of
// the week can still be adapted.
func reduceLoad(plan *contract.WeeklyPlan, today time.Time) []contract.DayPatch {
	cutoff := today.Format(contract.DateLayout)
	var patches []contract.DayPatch

	for _, day := range plan.Days {
		if _, err := time.Parse(contract.DateLayout, day.Date); err != nil {
			continue
		}
		if day.Date < cutoff {
			continue
		}
		reduced := reduceWorkout(day.Workout)
		date := day.Date
		patches = append(patches, contract.DayPatch{Date: &date, Workout: &reduced})
	}
	return patches
}

// reduceWorkout lowers duration by 25%, drops a set from every block
// (falling back to a reps cut when only one set remains), and extends
// rest periods.
func reduceWorkout(w contract.Workout) contract.Workout {
	out := w
	out.DurationMin = w.DurationMin * 3 / 4
	if out.DurationMin < minDurationMin {
		out.DurationMin = minDurationMin
	}
	out.IntensityNote = recoveryNote

	out.Blocks = make([]contract.ExerciseBlock, len(w.Blocks))
	for i, b := range w.Blocks {
		rb := b
		if rb.Sets > 1 {
			rb.Sets--
		} else {
			rb.Reps = reduceReps(rb.Reps)
		}
		rb.RestSec = b.RestSec * 5 / 4
		out.Blocks[i] = rb
	}
	return out
}

// reduceReps cuts a rep prescription by roughly 20%. Plain numbers and
// "lo-hi" ranges are reduced; anything else (time-based schemes, AMRAP
// and the like) is returned unchanged.
func reduceReps(reps string) string {
	reps = strings.TrimSpace(reps)

	if n, err := strconv.Atoi(reps); err == nil {
		return strconv.Itoa(scaleReps(n))
	}

	if lo, hi, ok := strings.Cut(reps, "-"); ok {
		nLo, errLo := strconv.Atoi(strings.TrimSpace(lo))
		nHi, errHi := strconv.Atoi(strings.TrimSpace(hi))
		if errLo == nil && errHi == nil {
			return strconv.Itoa(scaleReps(nLo)) + "-" + strconv.Itoa(scaleReps(nHi))
		}
	}

	return reps
}

func scaleReps(n int) int {
	scaled := n * 4 / 5
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}

// lastN returns the most recent n logs assuming the slice is ordered
// newest-first; shorter slices are returned as-is.
func lastN(logs []contract.AdherenceLog, n int) []contract.AdherenceLog {
	if len(logs) <= n {
		return logs
	}
	return logs[:n]
}
