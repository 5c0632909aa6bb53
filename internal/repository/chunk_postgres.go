package repository

import (
	"context"
	"fmt"

	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkStore is the vector store interface: append chunks with their
// embeddings and rank them by cosine distance against a query vector.
type ChunkStore interface {
	Add(ctx context.Context, documentID, content string, vector []float32) (int64, error)
	Nearest(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error)
	CountByDocument(ctx context.Context, documentID string) (int64, error)
}

var _ ChunkStore = &ChunkPostgres{}

// ChunkPostgres implements ChunkStore using PostgreSQL with pgvector.
// The configured dimension is checked before every insert so all rows in one
// store share the same embedding dimension.
type ChunkPostgres struct {
	db        *pgxpool.Pool
	dimension int
}

func NewChunkPostgres(db *pgxpool.Pool, dimension int) *ChunkPostgres {
	return &ChunkPostgres{
		db:        db,
		dimension: dimension,
	}
}

// Add appends one chunk row. Content carries no uniqueness constraint.
func (r *ChunkPostgres) Add(ctx context.Context, documentID, content string, vector []float32) (int64, error) {
	docID, err := uuid.Parse(documentID)
	if err != nil {
		return 0, fmt.Errorf("parse document ID: %w", err)
	}

	if len(vector) != r.dimension {
		return 0, fmt.Errorf("%w: got %d, store expects %d", entity.ErrDimensionMismatch, len(vector), r.dimension)
	}

	var chunkID int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO document_chunks (document_id, content, embedding)
		VALUES ($1, $2, $3)
		RETURNING id`,
		pgtype.UUID{Bytes: docID, Valid: true},
		content,
		pgvector.NewVector(vector),
	).Scan(&chunkID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", entity.ErrStoreWriteFailed, err)
	}

	return chunkID, nil
}

// Nearest returns up to k chunks ordered by ascending cosine distance to the
// query vector; ties resolve to the earlier insert. An empty store returns an
// empty slice, which callers treat as "no knowledge available".
func (r *ChunkPostgres) Nearest(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error) {
	if len(vector) != r.dimension {
		return nil, fmt.Errorf("%w: got %d, store expects %d", entity.ErrDimensionMismatch, len(vector), r.dimension)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, document_id, content, created_at, embedding <=> $1 AS distance
		FROM document_chunks
		ORDER BY distance ASC, id ASC
		LIMIT $2`,
		pgvector.NewVector(vector),
		int32(k),
	)
	if err != nil {
		return nil, fmt.Errorf("rank chunks: %w", err)
	}
	defer rows.Close()

	results := make([]entity.ScoredChunk, 0, k)
	for rows.Next() {
		var (
			chunkID   int64
			docID     pgtype.UUID
			content   string
			createdAt pgtype.Timestamptz
			distance  float64
		)
		if err := rows.Scan(&chunkID, &docID, &content, &createdAt, &distance); err != nil {
			return nil, fmt.Errorf("scan ranked chunk: %w", err)
		}

		results = append(results, entity.ScoredChunk{
			Chunk: entity.Chunk{
				ID:         chunkID,
				DocumentID: uuid.UUID(docID.Bytes).String(),
				Content:    content,
				CreatedAt:  createdAt.Time,
			},
			Distance: distance,
		})
	}

	return results, rows.Err()
}

func (r *ChunkPostgres) CountByDocument(ctx context.Context, documentID string) (int64, error) {
	docID, err := uuid.Parse(documentID)
	if err != nil {
		return 0, fmt.Errorf("parse document ID: %w", err)
	}

	var count int64
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM document_chunks WHERE document_id = $1`,
		pgtype.UUID{Bytes: docID, Valid: true},
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}

	return count, nil
}
