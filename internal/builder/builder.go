package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/docuchat/docuchat-backend/internal/api"
	chatapi "github.com/docuchat/docuchat-backend/internal/api/chat"
	documentapi "github.com/docuchat/docuchat-backend/internal/api/document"
	"github.com/docuchat/docuchat-backend/internal/chunker"
	"github.com/docuchat/docuchat-backend/internal/config"
	chatconn "github.com/docuchat/docuchat-backend/internal/integration/chat"
	"github.com/docuchat/docuchat-backend/internal/integration/embedding"
	"github.com/docuchat/docuchat-backend/internal/pkg/extract"
	"github.com/docuchat/docuchat-backend/internal/pkg/formatter"
	"github.com/docuchat/docuchat-backend/internal/pkg/validator"
	"github.com/docuchat/docuchat-backend/internal/repository"
	chatuc "github.com/docuchat/docuchat-backend/internal/usecase/chat"
	"github.com/docuchat/docuchat-backend/internal/usecase/document"
	"github.com/docuchat/docuchat-backend/internal/usecase/ingest"
	"go.uber.org/zap"
)

// Build wires every component of the application explicitly: config,
// logger, database, repositories, capability connectors, use cases,
// handlers and the HTTP server.
func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	documentRepo := repository.NewDocumentPostgres(db)
	chunkStore := repository.NewChunkPostgres(db, cfg.EmbeddingCfg.Dimension)
	conversationRepo := repository.NewConversationPostgres(db)
	logger.Info("Repositories initialized")

	// Initialize capability connectors (with mock support)
	var embedder embedding.Embedder
	var chatClient chatconn.Client

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external capabilities")
		embedder = embedding.NewMockConnector(cfg.EmbeddingCfg.Dimension, logger)
		chatClient = chatconn.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external capabilities",
			zap.String("embedding_provider", cfg.EmbeddingCfg.Provider),
			zap.String("chat_provider", cfg.ChatCfg.Provider),
		)
		embedder, err = embedding.NewEmbedder(cfg.EmbeddingCfg, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("setup embedder: %w", err)
		}
		chatClient, err = chatconn.NewClient(cfg.ChatCfg, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("setup chat client: %w", err)
		}
	}

	// Initialize validators and text processing
	fileValidator := validator.NewFileValidator(cfg.FileUploadCfg)
	textChunker := chunker.New(cfg.IngestCfg.ChunkSize, cfg.IngestCfg.ChunkOverlap)
	extractor := extract.NewService(logger)

	// Initialize ingestion pipeline and its worker pool
	pipeline := ingest.NewPipeline(
		documentRepo,
		chunkStore,
		textChunker,
		embedder,
		extractor,
		cfg.IngestCfg.MarkProcessedOnFailure,
		logger,
	)
	scheduler := ingest.NewScheduler(pipeline, cfg.IngestCfg.Workers, cfg.IngestCfg.QueueSize, logger)
	logger.Info("Ingestion scheduler started",
		zap.Int("workers", cfg.IngestCfg.Workers),
		zap.Int("queue_size", cfg.IngestCfg.QueueSize),
	)

	// Initialize use cases
	documentUC := document.NewUsecase(
		documentRepo,
		chunkStore,
		scheduler,
		fileValidator,
		cfg.IngestCfg.UploadDir,
		logger,
	)

	chatUC := chatuc.NewUsecase(
		conversationRepo,
		chunkStore,
		embedder,
		chatClient,
		cfg.ChatCfg.SystemPrompt,
		cfg.RetrievalCfg.TopK,
		cfg.ChatCfg.AnswerCacheTTL,
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	documentHandler := documentapi.NewHandler(documentUC, cfg.FileUploadCfg)
	chatHandler := chatapi.NewHandler(chatUC, formatter.NewPDFFormatter())
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(documentHandler, chatHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:    server,
		db:        db,
		scheduler: scheduler,
		logger:    logger,
	}, nil
}
