package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"fitweek/internal/app"
	"fitweek/internal/config"
	"fitweek/internal/contract"
	"fitweek/internal/database"
	"fitweek/internal/llm"
	"fitweek/internal/metrics"
	"fitweek/internal/store"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	textGen, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	if closer, ok := textGen.(llm.Closer); ok {
		defer closer.Close()
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	st := store.New(db)
	metricsStore := metrics.NewStore(db.SQL)
	application := app.New(cfg, st, metricsStore, textGen)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		cmd := flag.NewFlagSet("generate", flag.ExitOnError)
		user := cmd.String("user", "", "User ID")
		week := cmd.String("week", app.WeekStartOf(time.Now()), "Week start date (Monday, YYYY-MM-DD)")
		cmd.Parse(os.Args[2:])
		requireUser(*user)

		res, err := application.GeneratePlan(ctx, *user, *week)
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}
		switch res.Status {
		case contract.StatusOK:
			printJSON(res.Plan)
		case contract.StatusInfoNeeded:
			fmt.Println("Setup incomplete. Missing:")
			for _, field := range res.Missing {
				fmt.Printf("  - %s\n", field)
			}
			os.Exit(1)
		default:
			log.Fatalf("Generation failed: %s", res.Message)
		}

	case "plan":
		cmd := flag.NewFlagSet("plan", flag.ExitOnError)
		user := cmd.String("user", "", "User ID")
		cmd.Parse(os.Args[2:])
		requireUser(*user)

		plan, err := application.CurrentPlan(ctx, *user, time.Now())
		if err != nil {
			log.Fatalf("Failed to load plan: %v", err)
		}
		if plan == nil {
			fmt.Println("No plan for the current week. Run 'generate' first.")
			os.Exit(1)
		}
		printJSON(plan)

	case "log":
		cmd := flag.NewFlagSet("log", flag.ExitOnError)
		user := cmd.String("user", "", "User ID")
		date := cmd.String("date", time.Now().Format(contract.DateLayout), "Log date (YYYY-MM-DD)")
		done := cmd.Bool("done", true, "Workout completed")
		rpe := cmd.Int("rpe", 0, "Rate of perceived exertion 1-10 (0 = not reported)")
		soreness := cmd.Int("soreness", 0, "Soreness 1-10 (0 = not reported)")
		meals := cmd.Int("meals", 0, "Meals completed")
		notes := cmd.String("notes", "", "Free-form notes")
		cmd.Parse(os.Args[2:])
		requireUser(*user)

		res, err := application.LogAdherence(ctx, *user, contract.AdherenceLog{
			Date:        *date,
			WorkoutDone: *done,
			RPE:         *rpe,
			Soreness:    *soreness,
			MealsDone:   *meals,
			Notes:       *notes,
		}, time.Now())
		if err != nil {
			log.Fatalf("Failed to save log: %v", err)
		}
		fmt.Printf("Logged %s. %s\n", *date, res.Reason)

	case "adapt":
		cmd := flag.NewFlagSet("adapt", flag.ExitOnError)
		user := cmd.String("user", "", "User ID")
		cmd.Parse(os.Args[2:])
		requireUser(*user)

		res, err := application.CheckAndAdapt(ctx, *user, time.Now())
		if err != nil {
			log.Fatalf("Adaptation failed: %v", err)
		}
		fmt.Println(res.Reason)
		if res.Status == contract.StatusAdapted {
			printJSON(res.Patches)
		}

	case "replan":
		cmd := flag.NewFlagSet("replan", flag.ExitOnError)
		user := cmd.String("user", "", "User ID")
		cmd.Parse(os.Args[2:])
		requireUser(*user)

		res, err := application.RestockReplan(ctx, *user, time.Now())
		if err != nil {
			log.Fatalf("Replanning failed: %v", err)
		}
		fmt.Println(res.Reason)

	case "gaps":
		cmd := flag.NewFlagSet("gaps", flag.ExitOnError)
		user := cmd.String("user", "", "User ID")
		cmd.Parse(os.Args[2:])
		requireUser(*user)

		gaps, err := application.PantryGaps(ctx, *user, time.Now())
		if err != nil {
			log.Fatalf("Gap detection failed: %v", err)
		}
		if len(gaps) == 0 {
			fmt.Println("Pantry covers the rest of the week.")
			return
		}
		for _, item := range gaps {
			fmt.Printf("  - %s\n", item)
		}

	case "clip":
		cmd := flag.NewFlagSet("clip", flag.ExitOnError)
		user := cmd.String("user", "", "User ID")
		url := cmd.String("url", "", "Recipe URL")
		cmd.Parse(os.Args[2:])
		requireUser(*user)
		if *url == "" {
			log.Fatal("-url is required")
		}

		recipe, err := application.ClipRecipe(ctx, *user, *url)
		if err != nil {
			log.Fatalf("Clipping failed: %v", err)
		}
		fmt.Printf("Clipped %q: %d ingredients added to pantry.\n", recipe.Title, len(recipe.Ingredients))

	case "usage":
		cmd := flag.NewFlagSet("usage", flag.ExitOnError)
		days := cmd.Int("days", 7, "Days to report")
		cmd.Parse(os.Args[2:])

		usage, err := application.DailyUsage(ctx, *days)
		if err != nil {
			log.Fatalf("Failed to fetch usage: %v", err)
		}
		for _, d := range usage {
			fmt.Printf("%s  %6d prompt  %6d completion  (%d calls)\n", d.Date, d.TotalPrompt, d.TotalCompletion, d.TotalExecution)
		}

	case "metrics-cleanup":
		cmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cmd.Int("days", 30, "Keep records for the last N days")
		cmd.Parse(os.Args[2:])

		affected, err := application.CleanupMetrics(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func requireUser(user string) {
	if user == "" {
		log.Fatal("-user is required")
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
	fmt.Println(string(out))
}

func printUsage() {
	fmt.Println("Usage: fitweek <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  generate         Generate a weekly plan")
	fmt.Println("  plan             Show the current week's plan")
	fmt.Println("  log              Record today's adherence")
	fmt.Println("  adapt            Re-evaluate the plan against recent logs")
	fmt.Println("  replan           Re-check meals after a shopping trip")
	fmt.Println("  gaps             List missing pantry ingredients")
	fmt.Println("  clip             Import a recipe URL into the pantry")
	fmt.Println("  usage            Show recent token usage")
	fmt.Println("  metrics-cleanup  Remove old metric records")
}
