// Package llm adapts hosted chat-completion models to the Completer interface
// used by the portfolio, news and chat flows.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/FinSage/internal/logging"
	"github.com/dyike/FinSage/models"
)

// Completer returns one assistant reply for an ordered message context.
type Completer interface {
	Complete(ctx context.Context, messages []models.Message) (string, error)
}

var (
	ErrMissingAPIKey = errors.New("completion API key not configured")
	ErrUnknownRole   = errors.New("unknown message role")
)

// CompletionError wraps any failure of a completion call.
type CompletionError struct {
	Provider string
	Model    string
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s completion (%s) failed: %v", e.Provider, e.Model, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// ChatModelCompleter sends messages to an eino chat model.
type ChatModelCompleter struct {
	chatModel model.BaseChatModel
	provider  string
	modelName string
	timeout   time.Duration
	logger    *logging.Logger
}

func NewChatModelCompleter(chatModel model.BaseChatModel, provider, modelName string, timeout time.Duration, logger *logging.Logger) *ChatModelCompleter {
	return &ChatModelCompleter{
		chatModel: chatModel,
		provider:  provider,
		modelName: modelName,
		timeout:   timeout,
		logger:    logging.OrSilent(logger).Component("llm"),
	}
}

func (c *ChatModelCompleter) Complete(ctx context.Context, messages []models.Message) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	input, err := ToSchemaMessages(messages)
	if err != nil {
		return "", c.wrap(err)
	}

	start := time.Now()
	resp, err := c.chatModel.Generate(ctx, input)
	if err != nil {
		c.logger.Error().Err(err).Str("provider", c.provider).Msg("completion failed")
		return "", c.wrap(err)
	}
	if resp == nil {
		return "", c.wrap(errors.New("empty response"))
	}

	c.logger.Debug().
		Str("provider", c.provider).
		Int("messages", len(messages)).
		Dur("elapsed", time.Since(start)).
		Msg("completion done")
	return resp.Content, nil
}

func (c *ChatModelCompleter) wrap(err error) error {
	return &CompletionError{Provider: c.provider, Model: c.modelName, Err: err}
}

// ToSchemaMessages converts role-tagged messages to eino messages.
func ToSchemaMessages(messages []models.Message) ([]*schema.Message, error) {
	if err := checkRoles(messages); err != nil {
		return nil, err
	}

	out := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			out = append(out, schema.SystemMessage(msg.Content))
		case models.RoleAssistant:
			out = append(out, schema.AssistantMessage(msg.Content, nil))
		default:
			out = append(out, schema.UserMessage(msg.Content))
		}
	}
	return out, nil
}

// checkRoles rejects a context that contains a role no provider understands.
func checkRoles(messages []models.Message) error {
	for i, msg := range messages {
		if !msg.Role.Valid() {
			return fmt.Errorf("message %d: %w %q", i, ErrUnknownRole, msg.Role)
		}
	}
	return nil
}

// unavailableCompleter fails every call with the same error. It stands in
// for a provider whose credentials are missing.
type unavailableCompleter struct {
	provider string
	model    string
	err      error
}

func (u *unavailableCompleter) Complete(context.Context, []models.Message) (string, error) {
	return "", &CompletionError{Provider: u.provider, Model: u.model, Err: u.err}
}
