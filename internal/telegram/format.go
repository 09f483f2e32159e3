package telegram

import (
	"fmt"
	"strings"

	"fitweek/internal/contract"
)

func formatPlanMarkdown(plan *contract.WeeklyPlan) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Weekly Plan* (from %s)\n\n", plan.WeekStart))

	for _, day := range plan.Days {
		sb.WriteString(fmt.Sprintf("*%s* — %s, %d min (%s)\n",
			day.Date, day.Workout.Start, day.Workout.DurationMin, day.Workout.Location))
		if day.Workout.IntensityNote != "" {
			sb.WriteString(fmt.Sprintf("_%s_\n", day.Workout.IntensityNote))
		}
		for _, meal := range day.Meals {
			sb.WriteString(fmt.Sprintf("  🍽 %s: %s\n", meal.Time, meal.Name))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("⏱ *Total training:* %d min\n", plan.Summary.TotalTrainingMin))
	if len(plan.Summary.GroceryGap) > 0 {
		sb.WriteString("\n🛒 *To buy*\n")
		for _, item := range plan.Summary.GroceryGap {
			sb.WriteString(fmt.Sprintf("• %s\n", item))
		}
	}
	return sb.String()
}

func formatDayMarkdown(day *contract.DayPlan) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *%s*\n\n", day.Date))

	sb.WriteString(fmt.Sprintf("🏋️ *Workout* — %s, %d min (%s)\n",
		day.Workout.Start, day.Workout.DurationMin, day.Workout.Location))
	for _, block := range day.Workout.Blocks {
		sb.WriteString(fmt.Sprintf("• %s: %d x %s, rest %ds\n", block.Name, block.Sets, block.Reps, block.RestSec))
	}
	if day.Workout.IntensityNote != "" {
		sb.WriteString(fmt.Sprintf("_%s_\n", day.Workout.IntensityNote))
	}

	sb.WriteString("\n🍽 *Meals*\n")
	for _, meal := range day.Meals {
		sb.WriteString(fmt.Sprintf("• %s: %s (%s)\n", meal.Time, meal.Name, meal.MacroNote))
	}

	sb.WriteString("\n😴 *Recovery*\n")
	sb.WriteString(fmt.Sprintf("• Sleep: %.1f hr\n", day.Recovery.SleepTargetHr))
	sb.WriteString(fmt.Sprintf("• Mobility: %d min\n", day.Recovery.MobilityMin))
	sb.WriteString(fmt.Sprintf("• Hydration: %.1f L\n", day.Recovery.HydrationL))
	return sb.String()
}
