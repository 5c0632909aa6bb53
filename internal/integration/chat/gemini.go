package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/docuchat/docuchat-backend/internal/config"
	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiConnector completes chats via the Gemini API
type GeminiConnector struct {
	config config.ChatConfig
	client *genai.Client
	logger *zap.Logger
}

var _ Client = (*GeminiConnector)(nil)

func NewGeminiConnector(ctx context.Context, cfg config.ChatConfig, logger *zap.Logger) (*GeminiConnector, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize genai client: %w", err)
	}

	return &GeminiConnector{
		config: cfg,
		client: client,
		logger: logger,
	}, nil
}

func (c *GeminiConnector) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: empty message sequence", entity.ErrChatUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	contents, systemText := convertMessages(messages)
	if len(contents) == 0 {
		return "", fmt.Errorf("%w: no user messages in sequence", entity.ErrChatUnavailable)
	}

	genCfg := &genai.GenerateContentConfig{}
	if systemText != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	var resp *genai.GenerateContentResponse
	err := retry.Do(func() error {
		var apiErr error
		resp, apiErr = c.client.Models.GenerateContent(ctx, c.config.Model, contents, genCfg)
		return apiErr
	}, c.config.Retry.ToRetryOptions()...)
	if err != nil {
		ctxzap.Warn(ctx, "gemini chat request failed",
			zap.String("model", c.config.Model),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %v", entity.ErrChatUnavailable, err)
	}

	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("%w: empty completion response", entity.ErrChatUnavailable)
	}

	return response.String(), nil
}

// convertMessages maps the capability message sequence to Gemini contents.
// System messages are pulled out for the SystemInstruction slot; the first
// one wins. Assistant turns map to the model role.
func convertMessages(messages []entity.ChatMessage) ([]*genai.Content, string) {
	contents := make([]*genai.Content, 0, len(messages))
	var systemText string

	for _, msg := range messages {
		if msg.Role == entity.ChatRoleSystem {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		role := genai.RoleUser
		if msg.Role == entity.ChatRoleAssistant {
			role = genai.RoleModel
		}

		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	return contents, systemText
}
