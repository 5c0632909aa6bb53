package chat

import (
	"context"

	"github.com/docuchat/docuchat-backend/internal/entity"
)

// Embedder embeds the user's query for ranking.
// Failures wrap entity.ErrEmbeddingUnavailable.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// ChatClient completes the assembled prompt.
// Failures wrap entity.ErrChatUnavailable.
type ChatClient interface {
	Complete(ctx context.Context, messages []entity.ChatMessage) (string, error)
}
