package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/docuchat/docuchat-backend/internal/pkg/validator"
	"github.com/docuchat/docuchat-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// DocumentUsecase implements document upload and status business logic
type DocumentUsecase struct {
	documentRepo repository.DocumentRepository
	chunkStore   repository.ChunkStore
	dispatcher   Dispatcher
	validator    *validator.Validator
	uploadDir    string
	logger       *zap.Logger
}

func NewUsecase(
	documentRepo repository.DocumentRepository,
	chunkStore repository.ChunkStore,
	dispatcher Dispatcher,
	validator *validator.Validator,
	uploadDir string,
	logger *zap.Logger,
) *DocumentUsecase {
	return &DocumentUsecase{
		documentRepo: documentRepo,
		chunkStore:   chunkStore,
		dispatcher:   dispatcher,
		validator:    validator,
		uploadDir:    uploadDir,
		logger:       logger,
	}
}

// Upload stores the file on disk, records the document and dispatches it
// for background ingestion. The caller gets an id back immediately;
// ingestion progress is observable through the document status.
func (uc *DocumentUsecase) Upload(ctx context.Context, req *entity.UploadDocumentRequest) (*entity.Document, error) {
	if err := uc.validator.ValidateUploadDocument(req); err != nil {
		return nil, err
	}

	id := uuid.New().String()

	filePath, err := uc.saveFile(req, id)
	if err != nil {
		return nil, fmt.Errorf("save uploaded file: %w", err)
	}

	doc, err := uc.documentRepo.Create(ctx, entity.Document{
		ID:       id,
		Title:    req.Title,
		FilePath: filePath,
		Status:   entity.DocumentStatusUploaded,
	})
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("create document: %w", err)
	}

	ctxzap.Info(ctx, "document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("title", doc.Title),
	)

	if err := uc.dispatcher.Dispatch(doc.ID); err != nil {
		// The row stays UPLOADED so the failure is visible to the client;
		// the file stays on disk for manual re-ingestion.
		return nil, err
	}

	return doc, nil
}

// Get returns one document with its current ingestion status
func (uc *DocumentUsecase) Get(ctx context.Context, id string) (*entity.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: invalid document ID format", entity.ErrInvalidParameter)
	}

	doc, err := uc.documentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// List retrieves documents with pagination
func (uc *DocumentUsecase) List(ctx context.Context, req *entity.ListDocumentsRequest) ([]*entity.Document, error) {
	documents, err := uc.documentRepo.List(ctx, req.Skip, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return documents, nil
}

// ChunkCount reports how many chunks a document contributed to the store
func (uc *DocumentUsecase) ChunkCount(ctx context.Context, documentID string) (int64, error) {
	return uc.chunkStore.CountByDocument(ctx, documentID)
}

func (uc *DocumentUsecase) saveFile(req *entity.UploadDocumentRequest, id string) (string, error) {
	if err := os.MkdirAll(uc.uploadDir, 0o755); err != nil {
		return "", err
	}

	src, err := req.File.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// Prefix with the document id so colliding upload names never overwrite
	name := fmt.Sprintf("%s_%s", id, validator.SanitizeFilename(req.File.Filename))
	filePath := filepath.Join(uc.uploadDir, name)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(filePath)
		return "", err
	}

	return filePath, nil
}
