package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/docuchat/docuchat-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Capability providers supported for embeddings and chat completion
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Embedding dimensions supported by the vector store. Every row in one
// deployment must share the same dimension, so mixing providers with
// different dimensions against an existing store is rejected at startup.
var supportedDimensions = map[int]bool{
	768:  true,
	1536: true,
}

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8080"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Capability configurations
	EmbeddingCfg EmbeddingConfig `envPrefix:"EMBEDDING_"`
	ChatCfg      ChatConfig      `envPrefix:"CHAT_"`

	// Pipeline configurations
	IngestCfg    IngestConfig    `envPrefix:"INGEST_"`
	RetrievalCfg RetrievalConfig `envPrefix:"RETRIEVAL_"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// EmbeddingConfig configures the embedding capability.
// One provider must be used consistently for the lifetime of a store:
// vectors from different models are not comparable.
type EmbeddingConfig struct {
	Provider  string               `env:"PROVIDER" envDefault:"openai"`
	Model     string               `env:"MODEL"`
	APIKey    string               `env:"API_KEY"`
	Dimension int                  `env:"DIMENSION" envDefault:"1536"`
	Timeout   time.Duration        `env:"TIMEOUT" envDefault:"30s"`
	Retry     pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// ChatConfig configures the chat-completion capability
type ChatConfig struct {
	Provider       string               `env:"PROVIDER" envDefault:"openai"`
	Model          string               `env:"MODEL"`
	APIKey         string               `env:"API_KEY"`
	SystemPrompt   string               `env:"SYSTEM_PROMPT" envDefault:"You are a helpful AI assistant."`
	Timeout        time.Duration        `env:"TIMEOUT" envDefault:"60s"`
	AnswerCacheTTL time.Duration        `env:"ANSWER_CACHE_TTL" envDefault:"1m"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// IngestConfig configures chunking and the background ingestion pool
type IngestConfig struct {
	ChunkSize    int    `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap int    `env:"CHUNK_OVERLAP" envDefault:"200"`
	Workers      int    `env:"WORKERS" envDefault:"4"`
	QueueSize    int    `env:"QUEUE_SIZE" envDefault:"64"`
	UploadDir    string `env:"UPLOAD_DIR" envDefault:"uploads"`

	// Policy for documents whose embedding step failed: mark them processed
	// (unblocks upload-status UIs, masks the failure) or leave them
	// unprocessed so the failure stays visible.
	MarkProcessedOnFailure bool `env:"MARK_PROCESSED_ON_FAILURE" envDefault:"true"`
}

// RetrievalConfig configures query-time ranking
type RetrievalConfig struct {
	TopK int `env:"TOP_K" envDefault:"3"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"10485760"`  // 10 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"` // 32 MiB
}

// Registered at package level so binaries that define their own flags can
// parse the command line before loading the config.
var envFlag = flag.String("env", "local", "Environment to run (local, prod, or custom)")

func LoadConfig() (*Config, error) {
	if !flag.Parsed() {
		flag.Parse()
	}

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	applyProviderDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// applyProviderDefaults fills provider-specific model names when unset
func applyProviderDefaults(cfg *Config) {
	if cfg.EmbeddingCfg.Model == "" {
		switch cfg.EmbeddingCfg.Provider {
		case ProviderGemini:
			cfg.EmbeddingCfg.Model = "gemini-embedding-001"
		default:
			cfg.EmbeddingCfg.Model = "text-embedding-3-small"
		}
	}
	if cfg.ChatCfg.Model == "" {
		switch cfg.ChatCfg.Provider {
		case ProviderGemini:
			cfg.ChatCfg.Model = "gemini-2.0-flash"
		default:
			cfg.ChatCfg.Model = "gpt-4o-mini"
		}
	}
}

func validateConfig(cfg *Config) error {
	if cfg.EmbeddingCfg.Provider != ProviderOpenAI && cfg.EmbeddingCfg.Provider != ProviderGemini {
		return fmt.Errorf("EMBEDDING_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, cfg.EmbeddingCfg.Provider)
	}

	if cfg.ChatCfg.Provider != ProviderOpenAI && cfg.ChatCfg.Provider != ProviderGemini {
		return fmt.Errorf("CHAT_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, cfg.ChatCfg.Provider)
	}

	if !supportedDimensions[cfg.EmbeddingCfg.Dimension] {
		return fmt.Errorf("EMBEDDING_DIMENSION must be 768 or 1536, got %d", cfg.EmbeddingCfg.Dimension)
	}

	if !cfg.EnableMocks && cfg.EmbeddingCfg.APIKey == "" {
		return fmt.Errorf("EMBEDDING_API_KEY is required when mocks are disabled")
	}

	if !cfg.EnableMocks && cfg.ChatCfg.APIKey == "" {
		return fmt.Errorf("CHAT_API_KEY is required when mocks are disabled")
	}

	if cfg.IngestCfg.ChunkSize < 1 {
		return fmt.Errorf("INGEST_CHUNK_SIZE must be positive, got %d", cfg.IngestCfg.ChunkSize)
	}

	if cfg.IngestCfg.ChunkOverlap < 0 || cfg.IngestCfg.ChunkOverlap >= cfg.IngestCfg.ChunkSize {
		return fmt.Errorf("INGEST_CHUNK_OVERLAP must be in [0, INGEST_CHUNK_SIZE), got %d", cfg.IngestCfg.ChunkOverlap)
	}

	if cfg.IngestCfg.Workers < 1 || cfg.IngestCfg.Workers > 64 {
		return fmt.Errorf("INGEST_WORKERS must be between 1 and 64, got %d", cfg.IngestCfg.Workers)
	}

	if cfg.IngestCfg.QueueSize < 1 || cfg.IngestCfg.QueueSize > 4096 {
		return fmt.Errorf("INGEST_QUEUE_SIZE must be between 1 and 4096, got %d", cfg.IngestCfg.QueueSize)
	}

	if cfg.RetrievalCfg.TopK < 1 || cfg.RetrievalCfg.TopK > 50 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be between 1 and 50, got %d", cfg.RetrievalCfg.TopK)
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		return fmt.Errorf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns)
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns)
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
