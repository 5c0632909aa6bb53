package ingest

import (
	"context"
	"fmt"
	"testing"

	"github.com/docuchat/docuchat-backend/internal/chunker"
	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDocumentRepo struct {
	docs     map[string]*entity.Document
	statuses []entity.DocumentStatus
}

func newFakeDocumentRepo(docs ...*entity.Document) *fakeDocumentRepo {
	repo := &fakeDocumentRepo{docs: make(map[string]*entity.Document)}
	for _, d := range docs {
		repo.docs[d.ID] = d
	}
	return repo
}

func (r *fakeDocumentRepo) Create(ctx context.Context, d entity.Document) (*entity.Document, error) {
	r.docs[d.ID] = &d
	return &d, nil
}

func (r *fakeDocumentRepo) Get(ctx context.Context, id string) (*entity.Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, entity.ErrDocumentNotFound
	}
	return doc, nil
}

func (r *fakeDocumentRepo) List(ctx context.Context, skip, limit int) ([]*entity.Document, error) {
	return nil, nil
}

func (r *fakeDocumentRepo) SetStatus(ctx context.Context, id string, status entity.DocumentStatus) error {
	doc, ok := r.docs[id]
	if !ok {
		return entity.ErrDocumentNotFound
	}
	doc.Status = status
	r.statuses = append(r.statuses, status)
	return nil
}

func (r *fakeDocumentRepo) MarkProcessed(ctx context.Context, id string, status entity.DocumentStatus) error {
	doc, ok := r.docs[id]
	if !ok {
		return entity.ErrDocumentNotFound
	}
	doc.Processed = true
	doc.Status = status
	r.statuses = append(r.statuses, status)
	return nil
}

type fakeChunkStore struct {
	chunks []entity.Chunk
	nextID int64

	failContents map[string]bool
}

func (s *fakeChunkStore) Add(ctx context.Context, documentID, content string, vector []float32) (int64, error) {
	if s.failContents[content] {
		return 0, fmt.Errorf("%w: disk full", entity.ErrStoreWriteFailed)
	}
	s.nextID++
	s.chunks = append(s.chunks, entity.Chunk{
		ID:         s.nextID,
		DocumentID: documentID,
		Content:    content,
		Embedding:  vector,
	})
	return s.nextID, nil
}

func (s *fakeChunkStore) Nearest(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error) {
	return nil, nil
}

func (s *fakeChunkStore) CountByDocument(ctx context.Context, documentID string) (int64, error) {
	var n int64
	for _, c := range s.chunks {
		if c.DocumentID == documentID {
			n++
		}
	}
	return n, nil
}

type fakeEmbedder struct {
	fail bool
	dim  int
}

func (e *fakeEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if e.fail {
		return nil, fmt.Errorf("%w: provider timeout", entity.ErrEmbeddingUnavailable)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, e.dim)
		vectors[i][0] = float32(i + 1)
	}
	return vectors, nil
}

func (e *fakeEmbedder) Dimension() int { return e.dim }

type fakeExtractor struct {
	text string
}

func (e *fakeExtractor) Text(ctx context.Context, path string) string { return e.text }

func testDocument() *entity.Document {
	return &entity.Document{
		ID:       "d1",
		Title:    "notes",
		FilePath: "/tmp/notes.txt",
		Status:   entity.DocumentStatusUploaded,
	}
}

func TestPipeline_HappyPath(t *testing.T) {
	repo := newFakeDocumentRepo(testDocument())
	store := &fakeChunkStore{}
	pipeline := NewPipeline(
		repo, store,
		chunker.New(10, 0),
		&fakeEmbedder{dim: 4},
		&fakeExtractor{text: "hello world, this is a document"},
		true,
		zap.NewNop(),
	)

	err := pipeline.Run(context.Background(), "d1")
	require.NoError(t, err)

	doc := repo.docs["d1"]
	assert.True(t, doc.Processed)
	assert.Equal(t, entity.DocumentStatusPersisted, doc.Status)
	assert.NotEmpty(t, store.chunks)

	// statuses advance through the state machine in order
	assert.Equal(t, []entity.DocumentStatus{
		entity.DocumentStatusExtracting,
		entity.DocumentStatusChunking,
		entity.DocumentStatusEmbedding,
		entity.DocumentStatusPersisted,
	}, repo.statuses)

	// chunks persist in document order with ascending ids
	for i := 1; i < len(store.chunks); i++ {
		assert.Greater(t, store.chunks[i].ID, store.chunks[i-1].ID)
	}
}

func TestPipeline_EmptyExtraction(t *testing.T) {
	repo := newFakeDocumentRepo(testDocument())
	store := &fakeChunkStore{}
	pipeline := NewPipeline(
		repo, store,
		chunker.New(10, 0),
		&fakeEmbedder{dim: 4},
		&fakeExtractor{text: "   \n\t  "},
		true,
		zap.NewNop(),
	)

	err := pipeline.Run(context.Background(), "d1")
	require.NoError(t, err)

	// empty is not a failure: the document finishes with zero chunks
	doc := repo.docs["d1"]
	assert.True(t, doc.Processed)
	assert.Equal(t, entity.DocumentStatusPersisted, doc.Status)
	assert.Empty(t, store.chunks)
}

func TestPipeline_EmbeddingUnavailable(t *testing.T) {
	repo := newFakeDocumentRepo(testDocument())
	store := &fakeChunkStore{}
	pipeline := NewPipeline(
		repo, store,
		chunker.New(10, 0),
		&fakeEmbedder{dim: 4, fail: true},
		&fakeExtractor{text: "some extractable text"},
		true,
		zap.NewNop(),
	)

	err := pipeline.Run(context.Background(), "d1")
	require.NoError(t, err)

	// the document is done, contributes nothing, and no partial chunks leak
	doc := repo.docs["d1"]
	assert.True(t, doc.Processed)
	assert.Equal(t, entity.DocumentStatusFailed, doc.Status)
	assert.Empty(t, store.chunks)
}

func TestPipeline_EmbeddingUnavailable_KeepUnprocessed(t *testing.T) {
	repo := newFakeDocumentRepo(testDocument())
	store := &fakeChunkStore{}
	pipeline := NewPipeline(
		repo, store,
		chunker.New(10, 0),
		&fakeEmbedder{dim: 4, fail: true},
		&fakeExtractor{text: "some extractable text"},
		false,
		zap.NewNop(),
	)

	err := pipeline.Run(context.Background(), "d1")
	require.NoError(t, err)

	// the failure stays visible: unprocessed, marked FAILED
	doc := repo.docs["d1"]
	assert.False(t, doc.Processed)
	assert.Equal(t, entity.DocumentStatusFailed, doc.Status)
	assert.Empty(t, store.chunks)
}

func TestPipeline_ChunkWriteFailureSkipsChunkOnly(t *testing.T) {
	repo := newFakeDocumentRepo(testDocument())
	store := &fakeChunkStore{failContents: map[string]bool{"bbbbbbbbbb": true}}
	pipeline := NewPipeline(
		repo, store,
		chunker.New(10, 0),
		&fakeEmbedder{dim: 4},
		&fakeExtractor{text: "aaaaaaaaaabbbbbbbbbbcccccccccc"},
		true,
		zap.NewNop(),
	)

	err := pipeline.Run(context.Background(), "d1")
	require.NoError(t, err)

	doc := repo.docs["d1"]
	assert.True(t, doc.Processed)
	assert.Equal(t, entity.DocumentStatusPersisted, doc.Status)

	// the failed chunk is skipped, its siblings persist
	require.Len(t, store.chunks, 2)
	assert.Equal(t, "aaaaaaaaaa", store.chunks[0].Content)
	assert.Equal(t, "cccccccccc", store.chunks[1].Content)
}

func TestPipeline_RerunDoesNotDuplicateChunks(t *testing.T) {
	repo := newFakeDocumentRepo(testDocument())
	store := &fakeChunkStore{}
	pipeline := NewPipeline(
		repo, store,
		chunker.New(10, 0),
		&fakeEmbedder{dim: 4},
		&fakeExtractor{text: "hello world, this is a document"},
		true,
		zap.NewNop(),
	)

	require.NoError(t, pipeline.Run(context.Background(), "d1"))
	persisted := len(store.chunks)
	require.NotZero(t, persisted)

	// a second dispatch of the same document is a no-op
	err := pipeline.Run(context.Background(), "d1")
	assert.ErrorIs(t, err, entity.ErrAlreadyProcessed)
	assert.Len(t, store.chunks, persisted)
}

func TestPipeline_UnknownDocument(t *testing.T) {
	repo := newFakeDocumentRepo()
	pipeline := NewPipeline(
		repo, &fakeChunkStore{},
		chunker.New(10, 0),
		&fakeEmbedder{dim: 4},
		&fakeExtractor{text: "text"},
		true,
		zap.NewNop(),
	)

	err := pipeline.Run(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrDocumentNotFound)
}
