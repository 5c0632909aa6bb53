package ingest

import "context"

// Embedder is the batch embedding capability used during ingestion.
// Failures wrap entity.ErrEmbeddingUnavailable.
type Embedder interface {
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// TextExtractor pulls best-effort text from an uploaded file.
// Malformed input yields empty text, never an error.
type TextExtractor interface {
	Text(ctx context.Context, path string) string
}
