package document

import (
	"context"

	"github.com/docuchat/docuchat-backend/internal/entity"
)

// DocumentUsecase defines the document operations the handler depends on
type DocumentUsecase interface {
	Upload(ctx context.Context, req *entity.UploadDocumentRequest) (*entity.Document, error)
	Get(ctx context.Context, id string) (*entity.Document, error)
	List(ctx context.Context, req *entity.ListDocumentsRequest) ([]*entity.Document, error)
	ChunkCount(ctx context.Context, documentID string) (int64, error)
}
