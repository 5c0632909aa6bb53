package embedding

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/docuchat/docuchat-backend/internal/config"
	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiConnector produces embeddings via the Gemini API
type GeminiConnector struct {
	config config.EmbeddingConfig
	client *genai.Client
	logger *zap.Logger
}

var _ Embedder = (*GeminiConnector)(nil)

func NewGeminiConnector(ctx context.Context, cfg config.EmbeddingConfig, logger *zap.Logger) (*GeminiConnector, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize genai client: %w", err)
	}

	return &GeminiConnector{
		config: cfg,
		client: client,
		logger: logger,
	}, nil
}

func (c *GeminiConnector) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *GeminiConnector) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	outputDim := int32(c.config.Dimension)
	embedCfg := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	var result *genai.EmbedContentResponse
	err := retry.Do(func() error {
		var apiErr error
		result, apiErr = c.client.Models.EmbedContent(ctx, c.config.Model, contents, embedCfg)
		return apiErr
	}, c.config.Retry.ToRetryOptions()...)
	if err != nil {
		ctxzap.Warn(ctx, "gemini embedding request failed",
			zap.String("model", c.config.Model),
			zap.Int("text_count", len(texts)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", entity.ErrEmbeddingUnavailable, err)
	}

	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: unexpected embedding count in response", entity.ErrEmbeddingUnavailable)
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		if len(emb.Values) != c.config.Dimension {
			return nil, fmt.Errorf("%w: got dimension %d, store expects %d", entity.ErrDimensionMismatch, len(emb.Values), c.config.Dimension)
		}
		vectors[i] = emb.Values
	}

	return vectors, nil
}

func (c *GeminiConnector) Dimension() int {
	return c.config.Dimension
}
