package embedding

import (
	"context"
	"math"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is a deterministic in-process embedder for local runs and
// tests. Vectors are derived from character positions and L2-normalized, so
// identical texts are identical vectors but nothing is semantically
// meaningful.
type MockConnector struct {
	dim    int
	logger *zap.Logger
}

var _ Embedder = (*MockConnector)(nil)

func NewMockConnector(dimension int, logger *zap.Logger) *MockConnector {
	return &MockConnector{
		dim:    dimension,
		logger: logger,
	}
}

func (m *MockConnector) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	ctxzap.Debug(ctx, "[MOCK] embedding text", zap.Int("text_length", len(text)))

	vec := make([]float32, m.dim)
	for i, char := range text {
		vec[i%m.dim] += float32(char) / 1000.0
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1.0 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}

	return vec, nil
}

func (m *MockConnector) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.EmbedOne(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (m *MockConnector) Dimension() int {
	return m.dim
}
