// Package telegram exposes the planner over a Telegram bot. Commands
// cover plan generation, daily logging, pantry gaps, and replanning;
// a bare URL is treated as a recipe to clip into the pantry.
package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitweek/internal/app"
	"fitweek/internal/config"
	"fitweek/internal/contract"
	"fitweek/internal/metrics"
)

// Bot wraps the Telegram API and the application facade.
type Bot struct {
	api *tgbotapi.BotAPI
	app *app.App
	cfg *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, a *app.App) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{api: bot, app: a, cfg: cfg}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}

	if !isAllowed {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleClip(msg, text)
		return
	}

	command, args, _ := strings.Cut(text, " ")
	switch command {
	case "/plan":
		b.handlePlan(msg)
	case "/today":
		b.handleToday(msg)
	case "/log":
		b.handleLog(msg, args)
	case "/gaps":
		b.handleGaps(msg)
	case "/replan":
		b.handleReplan(msg)
	case "/metrics":
		b.handleMetrics(msg)
	default:
		b.reply(msg.Chat.ID,
			"Commands:\n"+
				"/plan — generate this week's plan\n"+
				"/today — today's workout and meals\n"+
				"/log <rpe> <soreness> <meals> [notes] — log today\n"+
				"/gaps — missing pantry ingredients\n"+
				"/replan — re-check meals after shopping\n"+
				"Or send a recipe URL to clip it into your pantry.")
	}
}

func (b *Bot) handlePlan(msg *tgbotapi.Message) {
	sent := b.reply(msg.Chat.ID, "🏋️ *Thinking...* \n(Generating your weekly plan)")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	userID := fmt.Sprintf("%d", msg.From.ID)
	res, err := b.app.GeneratePlan(ctx, userID, app.WeekStartOf(time.Now()))
	if err != nil {
		b.edit(msg.Chat.ID, sent, "❌ *Error generating plan:*\n```\n"+safeErr(err)+"\n```")
		return
	}

	switch res.Status {
	case contract.StatusOK:
		b.edit(msg.Chat.ID, sent, formatPlanMarkdown(res.Plan))
	case contract.StatusInfoNeeded:
		b.edit(msg.Chat.ID, sent, "ℹ️ *Setup incomplete.* Missing:\n• "+strings.Join(res.Missing, "\n• "))
	default:
		b.edit(msg.Chat.ID, sent, "❌ *Generation failed:* "+res.Message)
	}
}

func (b *Bot) handleToday(msg *tgbotapi.Message) {
	ctx := context.Background()
	userID := fmt.Sprintf("%d", msg.From.ID)

	plan, err := b.app.CurrentPlan(ctx, userID, time.Now())
	if err != nil || plan == nil {
		b.reply(msg.Chat.ID, "No plan for this week yet. Send /plan to generate one.")
		return
	}

	today := time.Now().Format(contract.DateLayout)
	for _, day := range plan.Days {
		if day.Date == today {
			b.reply(msg.Chat.ID, formatDayMarkdown(&day))
			return
		}
	}
	b.reply(msg.Chat.ID, "Today is not covered by the current plan.")
}

// handleLog parses "/log <rpe> <soreness> <meals> [notes]" and saves
// the day's adherence entry, reporting back if the plan was adapted.
func (b *Bot) handleLog(msg *tgbotapi.Message, args string) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		b.reply(msg.Chat.ID, "Usage: /log <rpe 1-10> <soreness 1-10> <meals done> [notes]")
		return
	}

	rpe, err1 := strconv.Atoi(fields[0])
	soreness, err2 := strconv.Atoi(fields[1])
	meals, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		b.reply(msg.Chat.ID, "Usage: /log <rpe 1-10> <soreness 1-10> <meals done> [notes]")
		return
	}

	entry := contract.AdherenceLog{
		Date:        time.Now().Format(contract.DateLayout),
		WorkoutDone: true,
		RPE:         rpe,
		Soreness:    soreness,
		MealsDone:   meals,
		Notes:       strings.Join(fields[3:], " "),
	}

	ctx := context.Background()
	userID := fmt.Sprintf("%d", msg.From.ID)
	res, err := b.app.LogAdherence(ctx, userID, entry, time.Now())
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Failed to save log: "+safeErr(err))
		return
	}

	if res.Status == contract.StatusAdapted {
		b.reply(msg.Chat.ID, "✅ Logged. 🔄 *Plan adapted:* "+res.Reason)
		return
	}
	b.reply(msg.Chat.ID, "✅ Logged. "+res.Reason)
}

func (b *Bot) handleGaps(msg *tgbotapi.Message) {
	ctx := context.Background()
	userID := fmt.Sprintf("%d", msg.From.ID)

	gaps, err := b.app.PantryGaps(ctx, userID, time.Now())
	if err != nil {
		b.reply(msg.Chat.ID, "❌ "+safeErr(err))
		return
	}
	if len(gaps) == 0 {
		b.reply(msg.Chat.ID, "🛒 Your pantry covers the rest of the week.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Missing ingredients*\n\n")
	for _, item := range gaps {
		sb.WriteString(fmt.Sprintf("• %s\n", item))
	}
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handleReplan(msg *tgbotapi.Message) {
	ctx := context.Background()
	userID := fmt.Sprintf("%d", msg.From.ID)

	res, err := b.app.RestockReplan(ctx, userID, time.Now())
	if err != nil {
		b.reply(msg.Chat.ID, "❌ "+safeErr(err))
		return
	}

	if res.Status == contract.StatusAdapted {
		b.reply(msg.Chat.ID, "🔄 *Plan updated:* "+res.Reason)
		return
	}
	b.reply(msg.Chat.ID, res.Reason)
}

func (b *Bot) handleClip(msg *tgbotapi.Message, url string) {
	sent := b.reply(msg.Chat.ID, "✂️ *Clipping recipe...* \n(Extracting ingredients into your pantry)")

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	userID := fmt.Sprintf("%d", msg.From.ID)
	recipe, err := b.app.ClipRecipe(ctx, userID, url)
	if err != nil {
		b.edit(msg.Chat.ID, sent, "❌ *Error clipping recipe:*\n```\n"+safeErr(err)+"\n```")
		return
	}
	b.edit(msg.Chat.ID, sent, fmt.Sprintf("✅ *Recipe clipped!*\n\n*%s*\n%d ingredients added to your pantry.", recipe.Title, len(recipe.Ingredients)))
}

func (b *Bot) handleMetrics(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.app.DailyUsage(context.Background(), 7)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth("data")

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) reply(chatID int64, text string) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	sent, err := b.api.Send(msg)
	if err != nil {
		log.Printf("Failed to send message: %v", err)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if messageID == 0 {
		b.reply(chatID, text)
		return
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

func safeErr(err error) string {
	return strings.ReplaceAll(err.Error(), "`", "'")
}
