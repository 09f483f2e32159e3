package llm

import (
	"context"

	"fitweek/internal/config"
)

// NewFromConfig returns the text generator selected by LLM_PROVIDER.
func NewFromConfig(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	if cfg.LLMProvider == config.ProviderGroq {
		return NewGroqClient(cfg), nil
	}
	return NewGeminiClient(ctx, cfg)
}
