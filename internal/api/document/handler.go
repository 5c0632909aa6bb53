package document

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/docuchat/docuchat-backend/internal/config"
	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/docuchat/docuchat-backend/internal/pkg/logger"
	"github.com/docuchat/docuchat-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase DocumentUsecase
	cfg     config.FileUploadConfig
}

func NewHandler(usecase DocumentUsecase, cfg config.FileUploadConfig) *Handler {
	return &Handler{
		usecase: usecase,
		cfg:     cfg,
	}
}

// UploadDocument handles POST /documents
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UploadDocument")

	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		ctxzap.Error(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid form data or size too large")
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		ctxzap.Warn(ctx, "no file provided")
		response.Error(w, http.StatusBadRequest, "a file is required")
		return
	}

	req := entity.UploadDocumentRequest{
		Title: r.FormValue("title"),
		File:  files[0],
	}
	if req.Title == "" {
		req.Title = req.File.Filename
	}

	ctxzap.Info(ctx, "uploading document",
		zap.String("title", req.Title),
		zap.String("filename", req.File.Filename),
		zap.Int64("size", req.File.Size),
	)

	doc, err := h.usecase.Upload(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Accepted(w, &entity.UploadDocumentResponse{
		Status:     "accepted",
		DocumentID: doc.ID,
	})
}

// GetDocument handles GET /documents/{document_id}
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID := chi.URLParam(r, "document_id")

	ctx = logger.AddFields(ctx,
		zap.String("document_id", documentID),
		zap.String("action", "GetDocument"),
	)

	doc, err := h.usecase.Get(ctx, documentID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	dto := toDocumentDTO(doc)
	if count, err := h.usecase.ChunkCount(ctx, doc.ID); err == nil {
		dto.ChunkCount = &count
	} else {
		ctxzap.Warn(ctx, "failed to count chunks", zap.Error(err))
	}

	response.Success(w, dto)
}

// ListDocuments handles GET /documents
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListDocuments")

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	req := entity.ListDocumentsRequest{
		Skip:  skip,
		Limit: limit,
	}
	req.Normalize()

	documents, err := h.usecase.List(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	dtos := make([]*entity.DocumentDTO, 0, len(documents))
	for _, doc := range documents {
		dtos = append(dtos, toDocumentDTO(doc))
	}

	ctxzap.Info(ctx, "documents listed successfully", zap.Int("count", len(dtos)))

	response.Success(w, &entity.ListDocumentsResponse{
		Documents: dtos,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "document request failed", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrDocumentNotFound):
		response.Error(w, http.StatusNotFound, "document not found")
	case errors.Is(err, entity.ErrInvalidParameter), errors.Is(err, entity.ErrMissingField):
		response.Error(w, http.StatusBadRequest, "invalid parameter")
	case errors.Is(err, entity.ErrInvalidExtension), errors.Is(err, entity.ErrFileTooLarge):
		response.Error(w, http.StatusBadRequest, "invalid file")
	case errors.Is(err, entity.ErrIngestQueueFull), errors.Is(err, entity.ErrSchedulerStopped):
		response.Error(w, http.StatusServiceUnavailable, "ingestion backlog is full, retry later")
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
