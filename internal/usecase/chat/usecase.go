package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/docuchat/docuchat-backend/internal/pkg/logger"
	"github.com/docuchat/docuchat-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// fallbackAnswer is returned whenever the chat capability is unavailable.
// A query always receives prose, never an error.
const fallbackAnswer = "Sorry, I am having trouble thinking right now."

const maxTitleLength = 60

// ChatUsecase answers questions over the knowledge base: embed the query,
// rank stored chunks by cosine distance, assemble a bounded context window
// and hand it to the chat capability. Every stage degrades instead of
// failing: no context and no chat still produce an answer string.
type ChatUsecase struct {
	conversationRepo repository.ConversationRepository
	chunkStore       repository.ChunkStore
	embedder         Embedder
	chatClient       ChatClient

	systemPrompt string
	topK         int

	// Repeated identical questions skip the embed+rank+complete round trip
	// for a short window
	answerCache *gocache.Cache

	logger *zap.Logger
}

func NewUsecase(
	conversationRepo repository.ConversationRepository,
	chunkStore repository.ChunkStore,
	embedder Embedder,
	chatClient ChatClient,
	systemPrompt string,
	topK int,
	answerCacheTTL time.Duration,
	logger *zap.Logger,
) *ChatUsecase {
	return &ChatUsecase{
		conversationRepo: conversationRepo,
		chunkStore:       chunkStore,
		embedder:         embedder,
		chatClient:       chatClient,
		systemPrompt:     systemPrompt,
		topK:             topK,
		answerCache:      gocache.New(answerCacheTTL, 2*answerCacheTTL),
		logger:           logger,
	}
}

// HandleChat persists the user turn, generates the answer and persists the
// AI turn. A missing conversation id starts a new thread titled after the
// first message.
func (uc *ChatUsecase) HandleChat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	var (
		conversation *entity.Conversation
		err          error
	)

	if req.ConversationID != nil {
		conversation, err = uc.conversationRepo.Get(ctx, *req.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("get conversation: %w", err)
		}
	} else {
		conversation, err = uc.conversationRepo.Create(ctx, entity.Conversation{
			ID:    uuid.New().String(),
			Title: truncateTitle(req.Message),
		})
		if err != nil {
			return nil, fmt.Errorf("create conversation: %w", err)
		}
	}

	ctx = logger.AddFields(ctx, zap.String("conversation_id", conversation.ID))

	if _, err := uc.conversationRepo.AddMessage(ctx, entity.Message{
		ID:             uuid.New().String(),
		ConversationID: conversation.ID,
		Sender:         entity.SenderUser,
		Content:        req.Message,
	}); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	answer := uc.AnswerQuery(ctx, req.Message)

	aiMessage, err := uc.conversationRepo.AddMessage(ctx, entity.Message{
		ID:             uuid.New().String(),
		ConversationID: conversation.ID,
		Sender:         entity.SenderAI,
		Content:        answer,
	})
	if err != nil {
		return nil, fmt.Errorf("save ai message: %w", err)
	}

	return &entity.ChatResponse{
		ConversationID: conversation.ID,
		Message: entity.MessageDTO{
			ID:        aiMessage.ID,
			Sender:    aiMessage.Sender,
			Content:   aiMessage.Content,
			CreatedAt: aiMessage.CreatedAt,
		},
	}, nil
}

// AnswerQuery is the synchronous question-answering entry point.
// It always returns a non-empty answer string.
func (uc *ChatUsecase) AnswerQuery(ctx context.Context, query string) string {
	key := cacheKey(query)
	if cached, ok := uc.answerCache.Get(key); ok {
		ctxzap.Debug(ctx, "answer cache hit")
		return cached.(string)
	}

	contextText := uc.Retrieve(ctx, query)
	answer := uc.Answer(ctx, query, contextText)

	uc.answerCache.Set(key, answer, gocache.DefaultExpiration)
	return answer
}

// Retrieve embeds the query, ranks stored chunks and assembles the context
// window: the top-k chunk contents in ranked order, separated by paragraph
// breaks. An unavailable embedder or an empty store degrade to empty
// context rather than blocking the question.
func (uc *ChatUsecase) Retrieve(ctx context.Context, query string) string {
	vector, err := uc.embedder.EmbedOne(ctx, query)
	if err != nil {
		ctxzap.Warn(ctx, "query embedding unavailable, degrading to empty context",
			zap.String("failure", "EmbeddingUnavailable"),
			zap.Error(err),
		)
		return ""
	}

	ranked, err := uc.chunkStore.Nearest(ctx, vector, uc.topK)
	if err != nil {
		ctxzap.Warn(ctx, "chunk ranking failed, degrading to empty context",
			zap.Error(err),
		)
		return ""
	}

	if len(ranked) == 0 {
		return ""
	}

	parts := make([]string, len(ranked))
	for i, scored := range ranked {
		parts[i] = scored.Chunk.Content
	}

	return strings.Join(parts, "\n\n")
}

// Answer builds the two-message prompt and invokes the chat capability.
// With empty context the question goes out context-free so the model falls
// back to general knowledge; an unavailable chat capability yields the
// fixed fallback string.
func (uc *ChatUsecase) Answer(ctx context.Context, query, contextText string) string {
	var userContent string
	if contextText != "" {
		userContent = fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, query)
	} else {
		userContent = fmt.Sprintf("Question: %s", query)
	}

	messages := []entity.ChatMessage{
		{Role: entity.ChatRoleSystem, Content: uc.systemPrompt},
		{Role: entity.ChatRoleUser, Content: userContent},
	}

	answer, err := uc.chatClient.Complete(ctx, messages)
	if err != nil {
		ctxzap.Warn(ctx, "chat capability unavailable, returning fallback answer",
			zap.String("failure", "ChatUnavailable"),
			zap.Error(err),
		)
		return fallbackAnswer
	}

	return answer
}

// GetConversation retrieves one conversation by id
func (uc *ChatUsecase) GetConversation(ctx context.Context, id string) (*entity.Conversation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: invalid conversation ID format", entity.ErrInvalidParameter)
	}
	return uc.conversationRepo.Get(ctx, id)
}

// ListConversations retrieves conversations with pagination
func (uc *ChatUsecase) ListConversations(ctx context.Context, skip, limit int) ([]*entity.Conversation, error) {
	conversations, err := uc.conversationRepo.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return conversations, nil
}

// ListMessages retrieves the transcript of one conversation
func (uc *ChatUsecase) ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	if _, err := uuid.Parse(conversationID); err != nil {
		return nil, fmt.Errorf("%w: invalid conversation ID format", entity.ErrInvalidParameter)
	}

	if _, err := uc.conversationRepo.Get(ctx, conversationID); err != nil {
		return nil, err
	}

	messages, err := uc.conversationRepo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

func cacheKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func truncateTitle(message string) string {
	title := strings.TrimSpace(message)
	runes := []rune(title)
	if len(runes) > maxTitleLength {
		return string(runes[:maxTitleLength])
	}
	return title
}
