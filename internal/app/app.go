// Package app wires the subsystems together behind one facade shared
// by the CLI, the HTTP server, and the Telegram bot.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"fitweek/internal/adapt"
	"fitweek/internal/clipper"
	"fitweek/internal/config"
	"fitweek/internal/contract"
	"fitweek/internal/llm"
	"fitweek/internal/metrics"
	"fitweek/internal/pantry"
	"fitweek/internal/planner"
	"fitweek/internal/store"
)

// App holds the application's dependencies.
type App struct {
	cfg          *config.Config
	store        *store.Store
	metricsStore *metrics.Store
	planner      *planner.Planner
	clipper      *clipper.Clipper
}

// New creates and initializes a new App instance.
func New(
	cfg *config.Config,
	st *store.Store,
	metricsStore *metrics.Store,
	textGen llm.TextGenerator,
) *App {
	return &App{
		cfg:          cfg,
		store:        st,
		metricsStore: metricsStore,
		planner:      planner.New(textGen),
		clipper:      clipper.NewClipper(textGen),
	}
}

// Store exposes the persistence layer for setup flows (profile,
// questionnaire, equipment, pantry, availability).
func (a *App) Store() *store.Store {
	return a.store
}

// WeekStartOf returns the Monday of the week containing the date.
func WeekStartOf(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(contract.DateLayout)
}

// GeneratePlan runs one full generation for the user's week and
// persists the plan when it comes back valid. Incomplete setup and
// generation failures come back in the result status, not as errors.
func (a *App) GeneratePlan(ctx context.Context, userID, weekStart string) (planner.Result, error) {
	in, err := a.store.LoadPlanInput(ctx, userID, weekStart, a.cfg.DefaultTimezone)
	if err != nil {
		return planner.Result{}, err
	}

	res := a.planner.Generate(ctx, in)
	a.recordUsage(ctx, userID, "generate_plan", string(res.Status), res.Usage, res.Latency)

	if res.Status != contract.StatusOK {
		return res, nil
	}

	if _, err := a.store.Plans.Save(ctx, userID, res.Plan); err != nil {
		return planner.Result{}, err
	}
	return res, nil
}

// CurrentPlan returns the latest plan for the week containing today,
// or nil when none has been generated.
func (a *App) CurrentPlan(ctx context.Context, userID string, today time.Time) (*contract.WeeklyPlan, error) {
	return a.store.Plans.CurrentForWeek(ctx, userID, WeekStartOf(today))
}

// LogAdherence saves the day's log and, when it reports heavy strain,
// immediately checks whether the plan should be adapted. RPE and
// soreness are 1-10 when reported; zero means not reported.
func (a *App) LogAdherence(ctx context.Context, userID string, entry contract.AdherenceLog, today time.Time) (adapt.Result, error) {
	if entry.RPE < 0 || entry.RPE > 10 {
		return adapt.Result{}, fmt.Errorf("rpe %d is out of range 1-10", entry.RPE)
	}
	if entry.Soreness < 0 || entry.Soreness > 10 {
		return adapt.Result{}, fmt.Errorf("soreness %d is out of range 1-10", entry.Soreness)
	}

	if err := a.store.Adherence.Upsert(ctx, userID, entry); err != nil {
		return adapt.Result{}, err
	}

	if entry.Soreness < 8 && entry.RPE < 9 {
		return adapt.Result{Status: contract.StatusNoChange, Patches: []contract.DayPatch{}, Reason: adapt.NoChangeReason}, nil
	}
	return a.CheckAndAdapt(ctx, userID, today)
}

// CheckAndAdapt evaluates the rule engine against this week's plan and
// the recent logs, and persists the adapted plan when a rule fires.
func (a *App) CheckAndAdapt(ctx context.Context, userID string, today time.Time) (adapt.Result, error) {
	weekStart := WeekStartOf(today)

	plan, err := a.store.Plans.CurrentForWeek(ctx, userID, weekStart)
	if err != nil {
		return adapt.Result{}, err
	}
	if plan == nil {
		return adapt.Result{}, fmt.Errorf("no current week plan found")
	}

	logs, err := a.store.Adherence.RecentSince(ctx, userID, weekStart, 3)
	if err != nil {
		return adapt.Result{}, err
	}

	res := adapt.Evaluate(plan, logs, nil, today)
	if res.Status == contract.StatusAdapted {
		if _, err := a.store.Plans.Save(ctx, userID, res.Adapted); err != nil {
			return adapt.Result{}, err
		}
		log.Printf("plan adapted for user %s: %s", userID, res.Reason)
	}
	return res, nil
}

// RestockReplan re-checks the plan against the pantry after a shopping
// trip. Stale pantry data (next shopping date already passed) refuses
// to replan rather than working from known-wrong assumptions.
func (a *App) RestockReplan(ctx context.Context, userID string, today time.Time) (adapt.Result, error) {
	plan, err := a.store.Plans.CurrentForWeek(ctx, userID, WeekStartOf(today))
	if err != nil {
		return adapt.Result{}, err
	}
	if plan == nil {
		return adapt.Result{}, fmt.Errorf("no current plan")
	}

	snapshot, err := a.store.Pantry.Get(ctx, userID)
	if err != nil {
		return adapt.Result{}, err
	}
	if snapshot == nil {
		return adapt.Result{}, fmt.Errorf("no pantry data")
	}

	res := adapt.ReplanAfterRestock(plan, snapshot, today)
	if res.Status == contract.StatusAdapted {
		if _, err := a.store.Plans.Save(ctx, userID, res.Adapted); err != nil {
			return adapt.Result{}, err
		}
	}
	return res, nil
}

// PantryGaps lists the ingredients the rest of the week's meals need
// that the pantry does not cover.
func (a *App) PantryGaps(ctx context.Context, userID string, today time.Time) ([]string, error) {
	plan, err := a.store.Plans.CurrentForWeek(ctx, userID, WeekStartOf(today))
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("no current plan")
	}

	snapshot, err := a.store.Pantry.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	var items []contract.PantryItem
	if snapshot != nil {
		items = snapshot.Items
	}
	return pantry.GapList(plan, items, today), nil
}

// RegenerateDay replaces a single day in the current plan, for example
// after a missed workout, and persists the patched plan.
func (a *App) RegenerateDay(ctx context.Context, userID, targetDate, reason string, today time.Time) (*contract.WeeklyPlan, error) {
	weekStart := WeekStartOf(today)

	plan, err := a.store.Plans.CurrentForWeek(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, fmt.Errorf("no current plan")
	}

	in, err := a.store.LoadPlanInput(ctx, userID, weekStart, a.cfg.DefaultTimezone)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	day, usage, err := a.planner.RegenerateDay(ctx, in, targetDate, reason)
	status := "OK"
	if err != nil {
		status = "ERROR"
	}
	a.recordUsage(ctx, userID, "regenerate_day", status, usage, time.Since(start))
	if err != nil {
		return nil, err
	}

	patched := *plan
	patched.Days = make([]contract.DayPlan, len(plan.Days))
	copy(patched.Days, plan.Days)
	replaced := false
	for i := range patched.Days {
		if patched.Days[i].Date == targetDate {
			patched.Days[i] = day
			replaced = true
			break
		}
	}
	if !replaced {
		return nil, fmt.Errorf("date %s is not in the current plan", targetDate)
	}

	if _, err := a.store.Plans.Save(ctx, userID, &patched); err != nil {
		return nil, err
	}
	return &patched, nil
}

// ClipRecipe imports a recipe from a URL and merges its ingredients
// into the user's pantry. Ingredients the pantry already covers are
// not duplicated.
func (a *App) ClipRecipe(ctx context.Context, userID, url string) (*clipper.ExtractedRecipe, error) {
	start := time.Now()
	recipe, usage, err := a.clipper.ClipURL(ctx, url)
	status := "OK"
	if err != nil {
		status = "ERROR"
	}
	a.recordUsage(ctx, userID, "clip_recipe", status, usage, time.Since(start))
	if err != nil {
		return nil, err
	}

	snapshot, err := a.store.Pantry.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		snapshot = &contract.PantrySnapshot{}
	}

	for _, item := range recipe.PantryItems() {
		if !pantry.Covered(item.Name, snapshot.Items) {
			snapshot.Items = append(snapshot.Items, item)
		}
	}
	if err := a.store.Pantry.Save(ctx, userID, snapshot); err != nil {
		return nil, err
	}
	return recipe, nil
}

// DailyUsage reports token usage totals for the last N days.
func (a *App) DailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	return a.metricsStore.GetDailyUsage(ctx, days)
}

// CleanupMetrics removes metric rows older than the given age.
func (a *App) CleanupMetrics(ctx context.Context, olderThanDays int) (int64, error) {
	return a.metricsStore.Cleanup(ctx, olderThanDays)
}

func (a *App) recordUsage(ctx context.Context, userID, operation, status string, usage llm.TokenUsage, latency time.Duration) {
	if a.metricsStore == nil {
		return
	}
	if err := a.metricsStore.RecordUsage(ctx, userID, operation, status, usage, latency); err != nil {
		log.Printf("failed to record %s metric: %v", operation, err)
	}
}
