package capability

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/dyike/hedgehog/config"
)

// NewGenerator builds the generator selected by cfg.LLMProvider.
func NewGenerator(ctx context.Context, cfg *config.Config) (Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderScripted:
		return NewScripted(), nil
	case config.ProviderDeepSeek:
		return newDeepSeek(ctx, cfg)
	case config.ProviderOpenAI:
		return newOpenAI(ctx, cfg)
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model(), cfg.MaxTokens)
	}
	return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
}

func newDeepSeek(ctx context.Context, cfg *config.Config) (Generator, error) {
	if cfg.DeepSeekAPIKey == "" {
		return nil, fmt.Errorf("deepseek provider needs DEEPSEEK_API_KEY")
	}
	chatModel, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
		APIKey:    cfg.DeepSeekAPIKey,
		Model:     cfg.Model(),
		MaxTokens: cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DeepSeek model: %w", err)
	}
	return chatModel, nil
}

// newOpenAI serves any OpenAI-compatible endpoint selected by BackendURL.
func newOpenAI(ctx context.Context, cfg *config.Config) (Generator, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("openai provider needs OPENAI_API_KEY")
	}
	maxTokens := cfg.MaxTokens
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:   cfg.BackendURL,
		APIKey:    cfg.OpenAIAPIKey,
		Model:     cfg.Model(),
		MaxTokens: &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI model: %w", err)
	}
	return chatModel, nil
}
