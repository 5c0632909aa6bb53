package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConversationRepository persists chat threads and their messages
type ConversationRepository interface {
	Create(ctx context.Context, conversation entity.Conversation) (*entity.Conversation, error)
	Get(ctx context.Context, id string) (*entity.Conversation, error)
	List(ctx context.Context, skip, limit int) ([]*entity.Conversation, error)
	AddMessage(ctx context.Context, message entity.Message) (*entity.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error)
}

var _ ConversationRepository = &ConversationPostgres{}

// ConversationPostgres implements ConversationRepository using PostgreSQL
type ConversationPostgres struct {
	db *pgxpool.Pool
}

func NewConversationPostgres(db *pgxpool.Pool) *ConversationPostgres {
	return &ConversationPostgres{db: db}
}

func (r *ConversationPostgres) Create(ctx context.Context, conversation entity.Conversation) (*entity.Conversation, error) {
	conversationID, err := uuid.Parse(conversation.ID)
	if err != nil {
		return nil, fmt.Errorf("parse conversation ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO conversations (id, title)
		VALUES ($1, $2)
		RETURNING id, title, created_at`,
		pgtype.UUID{Bytes: conversationID, Valid: true},
		conversation.Title,
	)

	created, err := scanConversation(row)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	return created, nil
}

func (r *ConversationPostgres) Get(ctx context.Context, id string) (*entity.Conversation, error) {
	conversationID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse conversation ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		SELECT id, title, created_at
		FROM conversations
		WHERE id = $1`,
		pgtype.UUID{Bytes: conversationID, Valid: true},
	)

	conversation, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrConversationNotFound
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	return conversation, nil
}

func (r *ConversationPostgres) List(ctx context.Context, skip, limit int) ([]*entity.Conversation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, created_at
		FROM conversations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		int32(limit), int32(skip),
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]*entity.Conversation, 0)
	for rows.Next() {
		conversation, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		conversations = append(conversations, conversation)
	}

	return conversations, rows.Err()
}

func (r *ConversationPostgres) AddMessage(ctx context.Context, message entity.Message) (*entity.Message, error) {
	messageID, err := uuid.Parse(message.ID)
	if err != nil {
		return nil, fmt.Errorf("parse message ID: %w", err)
	}

	conversationID, err := uuid.Parse(message.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("parse conversation ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO messages (id, conversation_id, sender, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, conversation_id, sender, content, created_at`,
		pgtype.UUID{Bytes: messageID, Valid: true},
		pgtype.UUID{Bytes: conversationID, Valid: true},
		string(message.Sender),
		message.Content,
	)

	created, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("add message: %w", err)
	}

	return created, nil
}

func (r *ConversationPostgres) ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	convID, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, fmt.Errorf("parse conversation ID: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, conversation_id, sender, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`,
		pgtype.UUID{Bytes: convID, Valid: true},
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*entity.Message, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}
