package chat

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/docuchat/docuchat-backend/internal/config"
	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConnector completes chats via the OpenAI chat-completions API
type OpenAIConnector struct {
	config config.ChatConfig
	client *openai.Client
	logger *zap.Logger
}

var _ Client = (*OpenAIConnector)(nil)

func NewOpenAIConnector(cfg config.ChatConfig, logger *zap.Logger) *OpenAIConnector {
	return &OpenAIConnector{
		config: cfg,
		client: openai.NewClient(cfg.APIKey),
		logger: logger,
	}
}

func (c *OpenAIConnector) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: empty message sequence", entity.ErrChatUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	apiMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		apiMessages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	var resp openai.ChatCompletionResponse
	err := retry.Do(func() error {
		var apiErr error
		resp, apiErr = c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.config.Model,
			Messages: apiMessages,
		})
		return apiErr
	}, c.config.Retry.ToRetryOptions()...)
	if err != nil {
		ctxzap.Warn(ctx, "openai chat request failed",
			zap.String("model", c.config.Model),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %v", entity.ErrChatUnavailable, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion response", entity.ErrChatUnavailable)
	}

	return resp.Choices[0].Message.Content, nil
}
