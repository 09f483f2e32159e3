// Package planner coordinates one end-to-end plan generation: input
// validation, prompt construction, the model call, normalization of
// whatever came back, and final contract validation. The planner never
// persists anything itself.
package planner

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"text/template"
	"time"

	"fitweek/internal/contract"
	"fitweek/internal/llm"
	"fitweek/internal/normalize"
)

//go:embed plan_prompt.md
var planPrompt string

//go:embed day_prompt.md
var dayPrompt string

// Planner generates weekly plans through a text generator.
type Planner struct {
	textGen llm.TextGenerator
}

func New(textGen llm.TextGenerator) *Planner {
	return &Planner{textGen: textGen}
}

// Result is the outcome of one generation attempt, discriminated by
// Status: OK carries the plan, INFO_NEEDED carries the missing field
// list, ERROR carries a message.
type Result struct {
	Status  contract.Status
	Plan    *contract.WeeklyPlan
	Missing []string
	Message string
	Usage   llm.TokenUsage
	Latency time.Duration
}

// Generate runs one generation attempt. Incomplete input is an
// INFO_NEEDED result, never an ERROR: the user fixes it by finishing
// setup, not by retrying. A model response that cannot be parsed or
// that fails plan validation even after normalization is a terminal
// ERROR for this attempt; retrying is the caller's decision.
func (p *Planner) Generate(ctx context.Context, in *contract.PlanInput) Result {
	start := time.Now()

	if verr := contract.ValidateInput(in); verr != nil {
		if verr.Kind == contract.KindInfoNeeded {
			return Result{Status: contract.StatusInfoNeeded, Missing: verr.MissingFields, Message: verr.Message}
		}
		return Result{Status: contract.StatusError, Message: verr.Message}
	}

	weekStart, err := time.Parse(contract.DateLayout, in.WeekStart)
	if err != nil {
		return Result{Status: contract.StatusError, Message: fmt.Sprintf("invalid week_start: %v", err)}
	}

	prompt, err := buildPlanPrompt(in)
	if err != nil {
		return Result{Status: contract.StatusError, Message: fmt.Sprintf("failed to build prompt: %v", err)}
	}

	resp, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return Result{Status: contract.StatusError, Message: fmt.Sprintf("generation failed: %v", err), Latency: time.Since(start)}
	}

	obj, err := normalize.ExtractObject(resp.Content)
	if err != nil {
		log.Printf("plan generation returned unusable text: %v (%s)", err, normalize.Truncate(resp.Content, 200))
		return Result{Status: contract.StatusError, Message: err.Error(), Usage: resp.Usage, Latency: time.Since(start)}
	}

	plan := normalize.Plan(obj, weekStart.Format(contract.DateLayout))
	if verr := contract.ValidatePlan(&plan); verr != nil {
		return Result{Status: contract.StatusError, Message: verr.Message, Usage: resp.Usage, Latency: time.Since(start)}
	}

	return Result{
		Status:  contract.StatusOK,
		Plan:    &plan,
		Usage:   resp.Usage,
		Latency: time.Since(start),
	}
}

// RegenerateDay asks for a single replacement day, for example after a
// missed workout or a meal swap request. The result is normalized with
// the same defaults as a full plan.
func (p *Planner) RegenerateDay(
	ctx context.Context,
	in *contract.PlanInput,
	targetDate string,
	reason string,
) (contract.DayPlan, llm.TokenUsage, error) {
	if _, err := time.Parse(contract.DateLayout, targetDate); err != nil {
		return contract.DayPlan{}, llm.TokenUsage{}, fmt.Errorf("invalid target date %q: %w", targetDate, err)
	}

	prompt, err := buildDayPrompt(in, targetDate, reason)
	if err != nil {
		return contract.DayPlan{}, llm.TokenUsage{}, err
	}

	resp, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return contract.DayPlan{}, llm.TokenUsage{}, fmt.Errorf("day regeneration failed: %w", err)
	}

	obj, err := normalize.ExtractObject(resp.Content)
	if err != nil {
		return contract.DayPlan{}, resp.Usage, err
	}

	day := normalize.Day(obj, targetDate)
	day.Date = targetDate
	return day, resp.Usage, nil
}

// promptData carries the JSON-rendered sections of the generation
// request. Lists the user supplied (equipment, pantry, allergens, free
// blocks) are embedded verbatim so the model sees the exact strings.
type promptData struct {
	WeekStart        string
	Timezone         string
	TargetDate       string
	Reason           string
	Equipment        string
	Pantry           string
	Diet             string
	Allergens        string
	Injuries         string
	GymFrequency     string
	GroceryFrequency string
	FreeBlocks       string
	Goals            string
	Cuisine          string
	Bio              string
}

func newPromptData(in *contract.PlanInput) (promptData, error) {
	q := in.Questionnaire

	data := promptData{
		WeekStart:        in.WeekStart,
		Timezone:         in.Timezone,
		GymFrequency:     q.GymFrequency,
		GroceryFrequency: q.GroceryFrequency,
	}

	sections := []struct {
		dst *string
		src any
	}{
		{&data.Equipment, in.Equipment.Items},
		{&data.Pantry, in.Pantry.Items},
		{&data.Diet, q.Diet},
		{&data.Allergens, q.Allergens},
		{&data.Injuries, q.Bio["injuries"]},
		{&data.FreeBlocks, in.Availability.FreeBlocks},
		{&data.Goals, q.Goals},
		{&data.Cuisine, q.Cuisine},
		{&data.Bio, q.Bio},
	}
	for _, s := range sections {
		b, err := json.Marshal(s.src)
		if err != nil {
			return promptData{}, fmt.Errorf("failed to render prompt section: %w", err)
		}
		*s.dst = string(b)
	}
	return data, nil
}

func buildPlanPrompt(in *contract.PlanInput) (string, error) {
	return renderPrompt("Plan", planPrompt, in, "", "")
}

func buildDayPrompt(in *contract.PlanInput, targetDate, reason string) (string, error) {
	return renderPrompt("Day", dayPrompt, in, targetDate, reason)
}

func renderPrompt(name, text string, in *contract.PlanInput, targetDate, reason string) (string, error) {
	data, err := newPromptData(in)
	if err != nil {
		return "", err
	}
	data.TargetDate = targetDate
	data.Reason = reason

	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
