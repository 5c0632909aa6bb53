package chat

import "github.com/docuchat/docuchat-backend/internal/entity"

func toConversationDTO(c *entity.Conversation) *entity.ConversationDTO {
	return &entity.ConversationDTO{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
	}
}

func toMessageDTO(m *entity.Message) *entity.MessageDTO {
	return &entity.MessageDTO{
		ID:        m.ID,
		Sender:    m.Sender,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
