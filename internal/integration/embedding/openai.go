package embedding

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/docuchat/docuchat-backend/internal/config"
	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConnector produces embeddings via the OpenAI embeddings API
type OpenAIConnector struct {
	config config.EmbeddingConfig
	client *openai.Client
	logger *zap.Logger
}

var _ Embedder = (*OpenAIConnector)(nil)

func NewOpenAIConnector(cfg config.EmbeddingConfig, logger *zap.Logger) *OpenAIConnector {
	return &OpenAIConnector{
		config: cfg,
		client: openai.NewClient(cfg.APIKey),
		logger: logger,
	}
}

func (c *OpenAIConnector) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *OpenAIConnector) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var resp openai.EmbeddingResponse
	err := retry.Do(func() error {
		var apiErr error
		resp, apiErr = c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model:      openai.EmbeddingModel(c.config.Model),
			Input:      texts,
			Dimensions: c.config.Dimension,
		})
		return apiErr
	}, c.config.Retry.ToRetryOptions()...)
	if err != nil {
		ctxzap.Warn(ctx, "openai embedding request failed",
			zap.String("model", c.config.Model),
			zap.Int("text_count", len(texts)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", entity.ErrEmbeddingUnavailable, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", entity.ErrEmbeddingUnavailable, len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vec := make([]float32, len(data.Embedding))
		for j := range data.Embedding {
			vec[j] = float32(data.Embedding[j])
		}
		if len(vec) != c.config.Dimension {
			return nil, fmt.Errorf("%w: got dimension %d, store expects %d", entity.ErrDimensionMismatch, len(vec), c.config.Dimension)
		}
		vectors[i] = vec
	}

	return vectors, nil
}

func (c *OpenAIConnector) Dimension() int {
	return c.config.Dimension
}
