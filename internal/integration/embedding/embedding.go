package embedding

import (
	"context"
	"fmt"

	"github.com/docuchat/docuchat-backend/internal/config"
	"go.uber.org/zap"
)

// Embedder produces fixed-dimension vectors for text. EmbedMany is the batch
// form of EmbedOne: same ordering, same semantics, one round trip. Both wrap
// entity.ErrEmbeddingUnavailable when the capability is unreachable or
// rejects the input, so callers can degrade instead of failing.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// NewEmbedder builds the configured provider's embedding connector.
// The provider must stay fixed for the lifetime of a store: vectors from
// different models are not comparable.
func NewEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIConnector(cfg, logger), nil
	case config.ProviderGemini:
		return NewGeminiConnector(context.Background(), cfg, logger)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
