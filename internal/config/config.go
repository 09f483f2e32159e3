package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LLM provider selection values.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	LLMProvider  string
	GeminiAPIKey string
	GroqAPIKey   string

	DatabasePath string

	// API server config
	JWTSecret string

	// Telegram config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64

	DefaultTimezone string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = ProviderGemini
	}
	if provider != ProviderGemini && provider != ProviderGroq {
		return nil, fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderGroq, provider)
	}

	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	groqAPIKey := os.Getenv("GROQ_API_KEY")
	if provider == ProviderGemini && geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	if provider == ProviderGroq && groqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = "data/fitweek.db"
	}

	timezone := os.Getenv("DEFAULT_TIMEZONE")
	if timezone == "" {
		timezone = "UTC"
	}

	// Telegram config (optional for CLI, required for the bot)
	var allowedIDs []int64
	for _, raw := range strings.Split(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS contains invalid id %q", raw)
		}
		allowedIDs = append(allowedIDs, id)
	}

	var adminID int64
	if raw := os.Getenv("ADMIN_TELEGRAM_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not a valid id: %w", err)
		}
		adminID = id
	}

	return &Config{
		LLMProvider:            provider,
		GeminiAPIKey:           geminiAPIKey,
		GroqAPIKey:             groqAPIKey,
		DatabasePath:           databasePath,
		JWTSecret:              os.Getenv("JWT_SECRET"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowedIDs,
		AdminTelegramID:        adminID,
		DefaultTimezone:        timezone,
	}, nil
}
