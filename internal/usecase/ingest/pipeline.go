package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/docuchat/docuchat-backend/internal/chunker"
	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/docuchat/docuchat-backend/internal/pkg/logger"
	"github.com/docuchat/docuchat-backend/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Pipeline ingests one uploaded document: extract text, split into
// overlapping chunks, embed, persist. Degraded outcomes (no extractable
// text, embedding capability down, individual chunk writes failing) end the
// run as a processed document with fewer or zero chunks; they are logged,
// never surfaced to the upload request.
type Pipeline struct {
	documentRepo repository.DocumentRepository
	chunkStore   repository.ChunkStore
	chunker      *chunker.Chunker
	embedder     Embedder
	extractor    TextExtractor

	// markProcessedOnFailure decides whether a document whose embedding step
	// failed still flips to processed (unblocks status UIs, masks the
	// failure) or stays unprocessed so the failure remains visible.
	markProcessedOnFailure bool

	logger *zap.Logger
}

func NewPipeline(
	documentRepo repository.DocumentRepository,
	chunkStore repository.ChunkStore,
	chunker *chunker.Chunker,
	embedder Embedder,
	extractor TextExtractor,
	markProcessedOnFailure bool,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		documentRepo:           documentRepo,
		chunkStore:             chunkStore,
		chunker:                chunker,
		embedder:               embedder,
		extractor:              extractor,
		markProcessedOnFailure: markProcessedOnFailure,
		logger:                 logger,
	}
}

// Run executes the ingestion state machine for one document. The returned
// error covers infrastructure failures (document lookup, status updates)
// and ErrAlreadyProcessed on a redundant re-dispatch; capability failures
// degrade the result instead.
func (p *Pipeline) Run(ctx context.Context, documentID string) error {
	document, err := p.documentRepo.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	ctx = logger.AddFields(ctx,
		zap.String("document_id", document.ID),
		zap.String("title", document.Title),
	)

	// Re-dispatching a finished document must not duplicate its chunks
	if document.Processed {
		ctxzap.Info(ctx, "document already processed, skipping")
		return entity.ErrAlreadyProcessed
	}

	p.setStatus(ctx, document.ID, entity.DocumentStatusExtracting)
	text := p.extractor.Text(ctx, document.FilePath)
	if strings.TrimSpace(text) == "" {
		// A document with no extractable text is empty, not failed
		ctxzap.Info(ctx, "no extractable text, document finishes with zero chunks")
		return p.finish(ctx, document.ID, entity.DocumentStatusPersisted)
	}

	p.setStatus(ctx, document.ID, entity.DocumentStatusChunking)
	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		return p.finish(ctx, document.ID, entity.DocumentStatusPersisted)
	}

	p.setStatus(ctx, document.ID, entity.DocumentStatusEmbedding)
	vectors, err := p.embedder.EmbedMany(ctx, chunks)
	if err != nil {
		// Skip the whole document's embedding step rather than persisting a
		// partial or mixed-dimension chunk set
		ctxzap.Warn(ctx, "embedding unavailable, document contributes zero chunks",
			zap.String("failure", "EmbeddingUnavailable"),
			zap.Int("chunk_count", len(chunks)),
			zap.Error(err),
		)
		if p.markProcessedOnFailure {
			return p.finish(ctx, document.ID, entity.DocumentStatusFailed)
		}
		p.setStatus(ctx, document.ID, entity.DocumentStatusFailed)
		return nil
	}

	if len(vectors) != len(chunks) {
		ctxzap.Warn(ctx, "embedding count mismatch, document contributes zero chunks",
			zap.String("failure", "EmbeddingUnavailable"),
			zap.Int("chunk_count", len(chunks)),
			zap.Int("vector_count", len(vectors)),
		)
		if p.markProcessedOnFailure {
			return p.finish(ctx, document.ID, entity.DocumentStatusFailed)
		}
		p.setStatus(ctx, document.ID, entity.DocumentStatusFailed)
		return nil
	}

	// Persist in chunk order so serial ids preserve document order.
	// A failed write aborts that chunk only; siblings still persist.
	persisted := 0
	for i, content := range chunks {
		if _, err := p.chunkStore.Add(ctx, document.ID, content, vectors[i]); err != nil {
			ctxzap.Warn(ctx, "chunk write failed, skipping",
				zap.String("failure", "StoreWriteFailed"),
				zap.Int("chunk_index", i),
				zap.Error(err),
			)
			continue
		}
		persisted++
	}

	ctxzap.Info(ctx, "document ingested",
		zap.Int("chunk_count", len(chunks)),
		zap.Int("persisted_count", persisted),
	)

	return p.finish(ctx, document.ID, entity.DocumentStatusPersisted)
}

func (p *Pipeline) setStatus(ctx context.Context, documentID string, status entity.DocumentStatus) {
	if err := p.documentRepo.SetStatus(ctx, documentID, status); err != nil {
		ctxzap.Warn(ctx, "failed to update document status",
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

func (p *Pipeline) finish(ctx context.Context, documentID string, status entity.DocumentStatus) error {
	if err := p.documentRepo.MarkProcessed(ctx, documentID, status); err != nil {
		return fmt.Errorf("mark document processed: %w", err)
	}
	return nil
}
