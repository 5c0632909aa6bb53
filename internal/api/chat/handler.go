package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/docuchat/docuchat-backend/internal/pkg/logger"
	"github.com/docuchat/docuchat-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   ChatUsecase
	formatter TranscriptFormatter
}

func NewHandler(usecase ChatUsecase, formatter TranscriptFormatter) *Handler {
	return &Handler{
		usecase:   usecase,
		formatter: formatter,
	}
}

// PostMessage handles POST /chat
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "PostMessage")

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		ctxzap.Warn(ctx, "empty message")
		response.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	resp, err := h.usecase.HandleChat(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "chat message answered",
		zap.String("conversation_id", resp.ConversationID),
	)

	response.Success(w, resp)
}

// ListConversations handles GET /chat
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListConversations")

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	conversations, err := h.usecase.ListConversations(ctx, skip, limit)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	dtos := make([]*entity.ConversationDTO, 0, len(conversations))
	for _, c := range conversations {
		dtos = append(dtos, toConversationDTO(c))
	}

	response.Success(w, &entity.ListConversationsResponse{
		Conversations: dtos,
	})
}

// ListMessages handles GET /chat/{conversation_id}/messages
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "conversation_id")

	ctx = logger.AddFields(ctx,
		zap.String("conversation_id", conversationID),
		zap.String("action", "ListMessages"),
	)

	messages, err := h.usecase.ListMessages(ctx, conversationID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	dtos := make([]*entity.MessageDTO, 0, len(messages))
	for _, m := range messages {
		dtos = append(dtos, toMessageDTO(m))
	}

	response.Success(w, &entity.ListMessagesResponse{
		Messages: dtos,
	})
}

// ExportTranscript handles GET /chat/{conversation_id}/export
func (h *Handler) ExportTranscript(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := chi.URLParam(r, "conversation_id")

	ctx = logger.AddFields(ctx,
		zap.String("conversation_id", conversationID),
		zap.String("action", "ExportTranscript"),
	)

	conversation, err := h.usecase.GetConversation(ctx, conversationID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	messages, err := h.usecase.ListMessages(ctx, conversationID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	data, err := h.formatter.Format(conversation.Title, messages)
	if err != nil {
		ctxzap.Error(ctx, "failed to render transcript", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to render transcript")
		return
	}

	ctxzap.Info(ctx, "transcript exported",
		zap.Int("message_count", len(messages)),
		zap.Int("bytes", len(data)),
	)

	w.Header().Set("Content-Type", h.formatter.ContentType())
	w.Header().Set("Content-Disposition",
		`attachment; filename="transcript_`+conversationID+h.formatter.FileExtension()+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "chat request failed", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrConversationNotFound):
		response.Error(w, http.StatusNotFound, "conversation not found")
	case errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrMissingField):
		response.Error(w, http.StatusBadRequest, "invalid parameter")
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
