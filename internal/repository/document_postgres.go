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

// DocumentRepository defines the interface for document persistence
type DocumentRepository interface {
	Create(ctx context.Context, document entity.Document) (*entity.Document, error)
	Get(ctx context.Context, id string) (*entity.Document, error)
	List(ctx context.Context, skip, limit int) ([]*entity.Document, error)
	SetStatus(ctx context.Context, id string, status entity.DocumentStatus) error
	MarkProcessed(ctx context.Context, id string, status entity.DocumentStatus) error
}

var _ DocumentRepository = &DocumentPostgres{}

// DocumentPostgres implements DocumentRepository using PostgreSQL
type DocumentPostgres struct {
	db *pgxpool.Pool
}

func NewDocumentPostgres(db *pgxpool.Pool) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

func (r *DocumentPostgres) Create(ctx context.Context, document entity.Document) (*entity.Document, error) {
	documentID, err := uuid.Parse(document.ID)
	if err != nil {
		return nil, fmt.Errorf("parse document ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO documents (id, title, file_path, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, file_path, processed, status, uploaded_at`,
		pgtype.UUID{Bytes: documentID, Valid: true},
		document.Title,
		document.FilePath,
		string(entity.DocumentStatusUploaded),
	)

	created, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	return created, nil
}

func (r *DocumentPostgres) Get(ctx context.Context, id string) (*entity.Document, error) {
	documentID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse document ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		SELECT id, title, file_path, processed, status, uploaded_at
		FROM documents
		WHERE id = $1`,
		pgtype.UUID{Bytes: documentID, Valid: true},
	)

	document, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return document, nil
}

func (r *DocumentPostgres) List(ctx context.Context, skip, limit int) ([]*entity.Document, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, file_path, processed, status, uploaded_at
		FROM documents
		ORDER BY uploaded_at DESC
		LIMIT $1 OFFSET $2`,
		int32(limit), int32(skip),
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	documents := make([]*entity.Document, 0)
	for rows.Next() {
		document, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, document)
	}

	return documents, rows.Err()
}

func (r *DocumentPostgres) SetStatus(ctx context.Context, id string, status entity.DocumentStatus) error {
	documentID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("parse document ID: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE documents SET status = $2 WHERE id = $1`,
		pgtype.UUID{Bytes: documentID, Valid: true},
		string(status),
	)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return entity.ErrDocumentNotFound
	}

	return nil
}

// MarkProcessed flips processed to true and records the terminal status.
// The processed flag only ever transitions false -> true.
func (r *DocumentPostgres) MarkProcessed(ctx context.Context, id string, status entity.DocumentStatus) error {
	documentID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("parse document ID: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE documents SET processed = TRUE, status = $2 WHERE id = $1`,
		pgtype.UUID{Bytes: documentID, Valid: true},
		string(status),
	)
	if err != nil {
		return fmt.Errorf("mark document processed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return entity.ErrDocumentNotFound
	}

	return nil
}
