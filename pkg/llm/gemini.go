package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/logging"
	"github.com/dyike/FinSage/models"
)

const DefaultGeminiModel = "gemini-2.0-flash"

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiCompleter sends messages to the Gemini API. System messages become
// the system instruction and assistant turns use the "model" role.
type GeminiCompleter struct {
	generate generateFunc
	model    string
	timeout  time.Duration
	logger   *logging.Logger
}

func NewGeminiCompleter(ctx context.Context, apiKey, model string, timeout time.Duration, logger *logging.Logger) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiCompleter{
		generate: client.Models.GenerateContent,
		model:    model,
		timeout:  timeout,
		logger:   logging.OrSilent(logger).Component("llm"),
	}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, messages []models.Message) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if err := checkRoles(messages); err != nil {
		return "", g.wrap(err)
	}

	system, contents := geminiContents(messages)
	var reqConfig *genai.GenerateContentConfig
	if system != nil {
		reqConfig = &genai.GenerateContentConfig{SystemInstruction: system}
	}

	logger := logging.OrSilent(g.logger)
	logger.Debug().Str("model", g.model).Int("messages", len(messages)).Msg("Generating content")
	result, err := g.generate(ctx, g.model, contents, reqConfig)
	if err != nil {
		logger.Error().Err(err).Str("provider", config.ProviderGemini).Msg("completion failed")
		return "", g.wrap(err)
	}

	text, err := extractText(result)
	if err != nil {
		return "", g.wrap(err)
	}
	return text, nil
}

func (g *GeminiCompleter) wrap(err error) error {
	return &CompletionError{Provider: config.ProviderGemini, Model: g.model, Err: err}
}

func geminiContents(messages []models.Message) (*genai.Content, []*genai.Content) {
	var systemParts []*genai.Part
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			systemParts = append(systemParts, &genai.Part{Text: msg.Content})
		case models.RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: msg.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: msg.Content}}})
		}
	}
	if len(systemParts) == 0 {
		return nil, contents
	}
	return &genai.Content{Parts: systemParts}, contents
}

func extractText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", errors.New("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
