package chat

import (
	"context"
	"fmt"

	"github.com/docuchat/docuchat-backend/internal/config"
	"github.com/docuchat/docuchat-backend/internal/entity"
	"go.uber.org/zap"
)

// Client completes an ordered message sequence into a single response.
// Failures wrap entity.ErrChatUnavailable so callers can fall back to a
// fixed answer instead of surfacing an error.
type Client interface {
	Complete(ctx context.Context, messages []entity.ChatMessage) (string, error)
}

// NewClient builds the configured provider's chat connector
func NewClient(cfg config.ChatConfig, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIConnector(cfg, logger), nil
	case config.ProviderGemini:
		return NewGeminiConnector(context.Background(), cfg, logger)
	default:
		return nil, fmt.Errorf("unknown chat provider: %s", cfg.Provider)
	}
}
