package adapt

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"text/template"

	"fitweek/internal/contract"
	"fitweek/internal/llm"
	"fitweek/internal/normalize"
)

//go:embed adapt_prompt.md
var adaptPrompt string

// Adapter is the model-delegated alternative to Evaluate. It hands the
// adaptation rules to the text generator as instructions and maps the
// days_patch response back onto the plan. Unlike the rule engine it is
// not deterministic, so callers treat its output as best-effort.
type Adapter struct {
	textGen llm.TextGenerator
}

func NewAdapter(textGen llm.TextGenerator) *Adapter {
	return &Adapter{textGen: textGen}
}

// Evaluate asks the model for a patch list and applies whatever it can
// interpret. Patch entries naming unknown dates are dropped silently.
func (a *Adapter) Evaluate(
	ctx context.Context,
	plan *contract.WeeklyPlan,
	logs []contract.AdherenceLog,
	delta *Delta,
) (Result, llm.TokenUsage, error) {
	prompt, err := buildAdaptPrompt(plan, logs, delta)
	if err != nil {
		return Result{}, llm.TokenUsage{}, err
	}

	resp, err := a.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return Result{}, llm.TokenUsage{}, fmt.Errorf("adaptation call failed: %w", err)
	}

	obj, err := normalize.ExtractObject(resp.Content)
	if err != nil {
		return Result{}, resp.Usage, err
	}

	patches, reason := mapDaysPatch(obj, plan)
	if len(patches) == 0 {
		return Result{Status: contract.StatusNoChange, Patches: []contract.DayPatch{}, Reason: NoChangeReason}, resp.Usage, nil
	}

	if reason == "" {
		reason = "Plan adjusted based on recent adherence"
	}
	return Result{
		Status:  contract.StatusAdapted,
		Patches: patches,
		Reason:  reason,
		Adapted: ApplyPatches(plan, patches),
	}, resp.Usage, nil
}

func buildAdaptPrompt(plan *contract.WeeklyPlan, logs []contract.AdherenceLog, delta *Delta) (string, error) {
	summaryJSON, err := json.MarshalIndent(plan.Summary, "", "  ")
	if err != nil {
		return "", err
	}
	logsJSON, err := json.MarshalIndent(logs, "", "  ")
	if err != nil {
		return "", err
	}
	deltaJSON := []byte("None")
	if delta != nil {
		if deltaJSON, err = json.MarshalIndent(delta, "", "  "); err != nil {
			return "", err
		}
	}

	tmpl, err := template.New("Adapt").Parse(adaptPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]string{
		"Summary": string(summaryJSON),
		"Logs":    string(logsJSON),
		"Delta":   string(deltaJSON),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// mapDaysPatch reads the model's days_patch entries, tolerating type
// drift the same way plan normalization does.
func mapDaysPatch(obj map[string]any, plan *contract.WeeklyPlan) ([]contract.DayPatch, string) {
	reason, _ := obj["reason"].(string)

	rawPatches, ok := obj["days_patch"].([]any)
	if !ok {
		return nil, reason
	}

	var patches []contract.DayPatch
	for _, rp := range rawPatches {
		entry, ok := rp.(map[string]any)
		if !ok {
			continue
		}
		date, _ := entry["date"].(string)
		day := findDay(plan, date)
		if day == nil {
			continue
		}

		delta, ok := entry["workout_delta"].(map[string]any)
		if !ok {
			continue
		}
		workout := overlayWorkout(day.Workout, delta)
		d := date
		patches = append(patches, contract.DayPatch{Date: &d, Workout: &workout})
	}
	return patches, reason
}

func findDay(plan *contract.WeeklyPlan, date string) *contract.DayPlan {
	for i := range plan.Days {
		if plan.Days[i].Date == date {
			return &plan.Days[i]
		}
	}
	return nil
}

// overlayWorkout applies the fields the model chose to change on top
// of the existing workout, ignoring values of the wrong type.
func overlayWorkout(base contract.Workout, delta map[string]any) contract.Workout {
	out := base
	if v, ok := delta["start"].(string); ok && v != "" {
		out.Start = v
	}
	if v, ok := delta["duration_min"].(float64); ok && v >= 0 {
		out.DurationMin = int(v)
	}
	if v, ok := delta["location"].(string); ok && (v == "gym" || v == "home") {
		out.Location = v
	}
	if v, ok := delta["intensity_note"].(string); ok && v != "" {
		out.IntensityNote = v
	}
	return out
}
