package document

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/docuchat/docuchat-backend/internal/config"
	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/docuchat/docuchat-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDocumentRepo struct {
	docs map[string]*entity.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*entity.Document)}
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
	out := make([]*entity.Document, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeDocumentRepo) SetStatus(ctx context.Context, id string, status entity.DocumentStatus) error {
	r.docs[id].Status = status
	return nil
}

func (r *fakeDocumentRepo) MarkProcessed(ctx context.Context, id string, status entity.DocumentStatus) error {
	r.docs[id].Processed = true
	r.docs[id].Status = status
	return nil
}

type fakeChunkStore struct{}

func (s *fakeChunkStore) Add(ctx context.Context, documentID, content string, vector []float32) (int64, error) {
	return 0, nil
}

func (s *fakeChunkStore) Nearest(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error) {
	return nil, nil
}

func (s *fakeChunkStore) CountByDocument(ctx context.Context, documentID string) (int64, error) {
	return 0, nil
}

type fakeDispatcher struct {
	dispatched []string
	err        error
}

func (d *fakeDispatcher) Dispatch(documentID string) error {
	if d.err != nil {
		return d.err
	}
	d.dispatched = append(d.dispatched, documentID)
	return nil
}

// multipartFile builds a real multipart.FileHeader the way an HTTP upload
// would produce it.
func multipartFile(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func uploadConfig() config.FileUploadConfig {
	return config.FileUploadConfig{
		MaxFileSize:   1 << 20,
		MaxUploadSize: 4 << 20,
	}
}

func newTestUsecase(t *testing.T, repo *fakeDocumentRepo, dispatcher *fakeDispatcher) *DocumentUsecase {
	t.Helper()
	return NewUsecase(
		repo,
		&fakeChunkStore{},
		dispatcher,
		validator.NewFileValidator(uploadConfig()),
		t.TempDir(),
		zap.NewNop(),
	)
}

func TestUpload_SavesFileAndDispatches(t *testing.T) {
	repo := newFakeDocumentRepo()
	dispatcher := &fakeDispatcher{}
	uc := newTestUsecase(t, repo, dispatcher)

	doc, err := uc.Upload(context.Background(), &entity.UploadDocumentRequest{
		Title: "my notes",
		File:  multipartFile(t, "notes.txt", "some content"),
	})
	require.NoError(t, err)

	assert.Equal(t, "my notes", doc.Title)
	assert.Equal(t, entity.DocumentStatusUploaded, doc.Status)
	assert.False(t, doc.Processed)

	// the upload landed on disk with its original content
	data, err := os.ReadFile(doc.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "some content", string(data))

	// exactly one dispatch per upload
	assert.Equal(t, []string{doc.ID}, dispatcher.dispatched)
}

func TestUpload_RejectsUnsupportedExtension(t *testing.T) {
	repo := newFakeDocumentRepo()
	dispatcher := &fakeDispatcher{}
	uc := newTestUsecase(t, repo, dispatcher)

	_, err := uc.Upload(context.Background(), &entity.UploadDocumentRequest{
		Title: "binary",
		File:  multipartFile(t, "tool.exe", "MZ"),
	})

	assert.ErrorIs(t, err, entity.ErrInvalidExtension)
	assert.Empty(t, dispatcher.dispatched)
	assert.Empty(t, repo.docs)
}

func TestUpload_RejectsMissingTitleAndFile(t *testing.T) {
	uc := newTestUsecase(t, newFakeDocumentRepo(), &fakeDispatcher{})

	_, err := uc.Upload(context.Background(), &entity.UploadDocumentRequest{
		File: multipartFile(t, "notes.txt", "content"),
	})
	assert.ErrorIs(t, err, entity.ErrMissingField)

	_, err = uc.Upload(context.Background(), &entity.UploadDocumentRequest{Title: "no file"})
	assert.ErrorIs(t, err, entity.ErrMissingField)
}

func TestUpload_QueueFullSurfacesError(t *testing.T) {
	repo := newFakeDocumentRepo()
	dispatcher := &fakeDispatcher{err: entity.ErrIngestQueueFull}
	uc := newTestUsecase(t, repo, dispatcher)

	_, err := uc.Upload(context.Background(), &entity.UploadDocumentRequest{
		Title: "my notes",
		File:  multipartFile(t, "notes.txt", "some content"),
	})

	assert.ErrorIs(t, err, entity.ErrIngestQueueFull)

	// the document row survives for later re-ingestion
	assert.Len(t, repo.docs, 1)
}

func TestGet_InvalidID(t *testing.T) {
	uc := newTestUsecase(t, newFakeDocumentRepo(), &fakeDispatcher{})

	_, err := uc.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestUpload_SanitizesStoredFilename(t *testing.T) {
	repo := newFakeDocumentRepo()
	uc := newTestUsecase(t, repo, &fakeDispatcher{})

	doc, err := uc.Upload(context.Background(), &entity.UploadDocumentRequest{
		Title: "odd name",
		File:  multipartFile(t, "my notes 2024.txt", "x"),
	})
	require.NoError(t, err)

	base := filepath.Base(doc.FilePath)
	assert.NotContains(t, base, " ")
	assert.Contains(t, base, doc.ID)
}
