package builder

import (
	"context"
	"fmt"

	"github.com/docuchat/docuchat-backend/internal/chunker"
	"github.com/docuchat/docuchat-backend/internal/config"
	"github.com/docuchat/docuchat-backend/internal/integration/embedding"
	"github.com/docuchat/docuchat-backend/internal/pkg/extract"
	"github.com/docuchat/docuchat-backend/internal/repository"
	"github.com/docuchat/docuchat-backend/internal/usecase/ingest"
	"go.uber.org/zap"
)

// Ingestor bundles the pieces needed to ingest documents outside the
// HTTP server, for the command-line ingestion tool.
type Ingestor struct {
	Pipeline     *ingest.Pipeline
	DocumentRepo repository.DocumentRepository
	Logger       *zap.Logger

	close func()
}

// Close releases the database connection pool
func (i *Ingestor) Close() {
	i.close()
}

// BuildIngestor wires the ingestion pipeline without the HTTP surface
func BuildIngestor() (*Ingestor, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	documentRepo := repository.NewDocumentPostgres(db)
	chunkStore := repository.NewChunkPostgres(db, cfg.EmbeddingCfg.Dimension)

	var embedder embedding.Embedder
	if cfg.EnableMocks {
		embedder = embedding.NewMockConnector(cfg.EmbeddingCfg.Dimension, logger)
	} else {
		embedder, err = embedding.NewEmbedder(cfg.EmbeddingCfg, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("setup embedder: %w", err)
		}
	}

	pipeline := ingest.NewPipeline(
		documentRepo,
		chunkStore,
		chunker.New(cfg.IngestCfg.ChunkSize, cfg.IngestCfg.ChunkOverlap),
		embedder,
		extract.NewService(logger),
		cfg.IngestCfg.MarkProcessedOnFailure,
		logger,
	)

	return &Ingestor{
		Pipeline:     pipeline,
		DocumentRepo: documentRepo,
		Logger:       logger,
		close:        db.Close,
	}, nil
}
