package chat

import (
	"context"

	"github.com/docuchat/docuchat-backend/internal/entity"
)

// ChatUsecase defines the conversation operations the handler depends on
type ChatUsecase interface {
	HandleChat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error)
	GetConversation(ctx context.Context, id string) (*entity.Conversation, error)
	ListConversations(ctx context.Context, skip, limit int) ([]*entity.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error)
}

// TranscriptFormatter renders a conversation transcript for download
type TranscriptFormatter interface {
	Format(title string, messages []*entity.Message) ([]byte, error)
	ContentType() string
	FileExtension() string
}
