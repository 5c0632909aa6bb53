package document

import "github.com/docuchat/docuchat-backend/internal/entity"

// toDocumentDTO converts Document entity to its response shape
func toDocumentDTO(d *entity.Document) *entity.DocumentDTO {
	return &entity.DocumentDTO{
		ID:         d.ID,
		Title:      d.Title,
		Processed:  d.Processed,
		Status:     d.Status,
		UploadedAt: d.UploadedAt,
	}
}
