package chat

import (
	"context"
	"fmt"

	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is a canned chat client for local runs and tests
type MockConnector struct {
	logger *zap.Logger
}

var _ Client = (*MockConnector)(nil)

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "[MOCK] completing chat", zap.Int("message_count", len(messages)))

	if len(messages) == 0 {
		return "", fmt.Errorf("%w: empty message sequence", entity.ErrChatUnavailable)
	}

	last := messages[len(messages)-1]
	return fmt.Sprintf("This is a mock answer to: %s", last.Content), nil
}
