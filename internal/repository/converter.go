package repository

import (
	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var (
		id         pgtype.UUID
		title      string
		filePath   string
		processed  bool
		status     string
		uploadedAt pgtype.Timestamptz
	)

	if err := row.Scan(&id, &title, &filePath, &processed, &status, &uploadedAt); err != nil {
		return nil, err
	}

	return &entity.Document{
		ID:         uuid.UUID(id.Bytes).String(),
		Title:      title,
		FilePath:   filePath,
		Processed:  processed,
		Status:     entity.DocumentStatus(status),
		UploadedAt: uploadedAt.Time,
	}, nil
}

func scanConversation(row rowScanner) (*entity.Conversation, error) {
	var (
		id        pgtype.UUID
		title     string
		createdAt pgtype.Timestamptz
	)

	if err := row.Scan(&id, &title, &createdAt); err != nil {
		return nil, err
	}

	return &entity.Conversation{
		ID:        uuid.UUID(id.Bytes).String(),
		Title:     title,
		CreatedAt: createdAt.Time,
	}, nil
}

func scanMessage(row rowScanner) (*entity.Message, error) {
	var (
		id             pgtype.UUID
		conversationID pgtype.UUID
		sender         string
		content        string
		createdAt      pgtype.Timestamptz
	)

	if err := row.Scan(&id, &conversationID, &sender, &content, &createdAt); err != nil {
		return nil, err
	}

	return &entity.Message{
		ID:             uuid.UUID(id.Bytes).String(),
		ConversationID: uuid.UUID(conversationID.Bytes).String(),
		Sender:         entity.Sender(sender),
		Content:        content,
		CreatedAt:      createdAt.Time,
	}, nil
}
