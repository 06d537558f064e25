package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/logging"
)

const (
	GroqBaseURL   = "https://api.groq.com/openai/v1"
	OpenAIBaseURL = "https://api.openai.com/v1"

	defaultMaxTokens = 1024
)

var defaultModels = map[string]string{
	config.ProviderGroq:     "llama-3.1-8b-instant",
	config.ProviderOpenAI:   "gpt-4o-mini",
	config.ProviderDeepSeek: "deepseek-chat",
	config.ProviderGemini:   DefaultGeminiModel,
}

// NewCompleter builds the completer for cfg.LLMProvider. A missing API key is
// not an error here; the returned completer fails each call with
// ErrMissingAPIKey instead.
func NewCompleter(ctx context.Context, cfg *config.Config, logger *logging.Logger) (Completer, error) {
	provider := cfg.LLMProvider
	if provider == "" {
		provider = config.ProviderGroq
	}
	modelName := ModelName(cfg)

	apiKey := cfg.CompletionAPIKey()
	if apiKey == "" {
		logging.OrSilent(logger).Warn().Str("provider", provider).Msg("completion API key not configured")
		return &unavailableCompleter{provider: provider, model: modelName, err: ErrMissingAPIKey}, nil
	}

	maxTokens := defaultMaxTokens
	switch provider {
	case config.ProviderGroq, config.ProviderOpenAI:
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   baseURL(cfg, provider),
			APIKey:    apiKey,
			Model:     modelName,
			MaxTokens: &maxTokens,
			Timeout:   cfg.RequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s chat model: %w", provider, err)
		}
		return NewChatModelCompleter(chatModel, provider, modelName, 0, logger), nil

	case config.ProviderDeepSeek:
		chatModel, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    apiKey,
			Model:     modelName,
			MaxTokens: maxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("create deepseek chat model: %w", err)
		}
		return NewChatModelCompleter(chatModel, provider, modelName, cfg.RequestTimeout, logger), nil

	case config.ProviderGemini:
		return NewGeminiCompleter(ctx, apiKey, modelName, cfg.RequestTimeout, logger)

	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}

// ModelName returns the configured model, or the provider default when the
// configured one belongs to another provider's default.
func ModelName(cfg *config.Config) string {
	provider := cfg.LLMProvider
	if provider == "" {
		provider = config.ProviderGroq
	}
	name := cfg.ChatModel
	if name == "" {
		return defaultModels[provider]
	}
	if provider != config.ProviderGroq && name == defaultModels[config.ProviderGroq] {
		return defaultModels[provider]
	}
	return name
}

func baseURL(cfg *config.Config, provider string) string {
	if provider == config.ProviderOpenAI {
		if cfg.BackendURL == "" || cfg.BackendURL == GroqBaseURL {
			return OpenAIBaseURL
		}
		return cfg.BackendURL
	}
	if cfg.BackendURL == "" {
		return GroqBaseURL
	}
	return cfg.BackendURL
}
