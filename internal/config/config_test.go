package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("GeminiDefaults", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		os.Unsetenv("LLM_PROVIDER")
		os.Unsetenv("DATABASE_PATH")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.LLMProvider != ProviderGemini {
			t.Errorf("Expected provider %q, got %q", ProviderGemini, cfg.LLMProvider)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if cfg.DatabasePath != "data/fitweek.db" {
			t.Errorf("Expected default database path, got '%s'", cfg.DatabasePath)
		}
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		os.Unsetenv("GEMINI_API_KEY")
		os.Unsetenv("LLM_PROVIDER")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GEMINI_API_KEY, got nil")
		}
	})

	t.Run("GroqProvider", func(t *testing.T) {
		setEnv("LLM_PROVIDER", "groq")
		setEnv("GROQ_API_KEY", "groq_key")
		os.Unsetenv("GEMINI_API_KEY")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GroqAPIKey != "groq_key" {
			t.Errorf("Expected GroqAPIKey to be 'groq_key', got '%s'", cfg.GroqAPIKey)
		}
	})

	t.Run("MissingGroqAPIKey", func(t *testing.T) {
		setEnv("LLM_PROVIDER", "groq")
		os.Unsetenv("GROQ_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GROQ_API_KEY, got nil")
		}
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		setEnv("LLM_PROVIDER", "claude")
		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for unknown provider, got nil")
		}
	})

	t.Run("TelegramAllowedIDs", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		os.Unsetenv("LLM_PROVIDER")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "123, 456")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[1] != 456 {
			t.Errorf("Unexpected allowed IDs: %v", cfg.TelegramAllowedUserIDs)
		}
	})

	t.Run("BadTelegramAllowedIDs", func(t *testing.T) {
		setEnv("GEMINI_API_KEY", "gemini_key")
		os.Unsetenv("LLM_PROVIDER")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "123,abc")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for invalid allowed id, got nil")
		}
	})
}
