package chat

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConversationRepo struct {
	conversations map[string]*entity.Conversation
	messages      map[string][]*entity.Message
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string][]*entity.Message),
	}
}

func (r *fakeConversationRepo) Create(ctx context.Context, c entity.Conversation) (*entity.Conversation, error) {
	c.CreatedAt = time.Now()
	r.conversations[c.ID] = &c
	return &c, nil
}

func (r *fakeConversationRepo) Get(ctx context.Context, id string) (*entity.Conversation, error) {
	c, ok := r.conversations[id]
	if !ok {
		return nil, entity.ErrConversationNotFound
	}
	return c, nil
}

func (r *fakeConversationRepo) List(ctx context.Context, skip, limit int) ([]*entity.Conversation, error) {
	out := make([]*entity.Conversation, 0, len(r.conversations))
	for _, c := range r.conversations {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeConversationRepo) AddMessage(ctx context.Context, m entity.Message) (*entity.Message, error) {
	m.CreatedAt = time.Now()
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], &m)
	return &m, nil
}

func (r *fakeConversationRepo) ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	return r.messages[conversationID], nil
}

// memoryChunkStore ranks chunks by cosine distance in memory, with
// insertion order breaking distance ties.
type memoryChunkStore struct {
	chunks []entity.Chunk
	nextID int64
}

func (s *memoryChunkStore) Add(ctx context.Context, documentID, content string, vector []float32) (int64, error) {
	s.nextID++
	s.chunks = append(s.chunks, entity.Chunk{
		ID:         s.nextID,
		DocumentID: documentID,
		Content:    content,
		Embedding:  vector,
	})
	return s.nextID, nil
}

func (s *memoryChunkStore) Nearest(ctx context.Context, vector []float32, k int) ([]entity.ScoredChunk, error) {
	scored := make([]entity.ScoredChunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		scored = append(scored, entity.ScoredChunk{
			Chunk:    c,
			Distance: cosineDistance(vector, c.Embedding),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Distance != scored[j].Distance {
			return scored[i].Distance < scored[j].Distance
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (s *memoryChunkStore) CountByDocument(ctx context.Context, documentID string) (int64, error) {
	var n int64
	for _, c := range s.chunks {
		if c.DocumentID == documentID {
			n++
		}
	}
	return n, nil
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// axisEmbedder maps known texts to fixed unit vectors
type axisEmbedder struct {
	vectors map[string][]float32
	fail    bool
}

func (e *axisEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if e.fail {
		return nil, fmt.Errorf("%w: provider timeout", entity.ErrEmbeddingUnavailable)
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

// recordingChatClient answers with a canned string and records prompts
type recordingChatClient struct {
	calls  int
	last   []entity.ChatMessage
	answer string
	fail   bool
}

func (c *recordingChatClient) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	c.calls++
	c.last = messages
	if c.fail {
		return "", fmt.Errorf("%w: provider timeout", entity.ErrChatUnavailable)
	}
	return c.answer, nil
}

func newTestUsecase(store *memoryChunkStore, embedder *axisEmbedder, client *recordingChatClient) *ChatUsecase {
	return NewUsecase(
		newFakeConversationRepo(),
		store,
		embedder,
		client,
		"You are a helpful AI assistant.",
		3,
		time.Minute,
		zap.NewNop(),
	)
}

func seedStore(t *testing.T, store *memoryChunkStore) {
	t.Helper()
	ctx := context.Background()
	// vectors chosen so "capital" queries rank Paris first
	_, err := store.Add(ctx, "doc1", "Paris is the capital of France.", []float32{1, 0, 0})
	require.NoError(t, err)
	_, err = store.Add(ctx, "doc1", "France borders Spain and Italy.", []float32{0.8, 0.6, 0})
	require.NoError(t, err)
	_, err = store.Add(ctx, "doc2", "The Nile is the longest river.", []float32{0, 1, 0})
	require.NoError(t, err)
	_, err = store.Add(ctx, "doc2", "Mount Everest is the highest peak.", []float32{0, 0, 1})
	require.NoError(t, err)
}

func TestRetrieve_RanksAndJoinsTopChunks(t *testing.T) {
	store := &memoryChunkStore{}
	seedStore(t, store)

	embedder := &axisEmbedder{vectors: map[string][]float32{
		"What is the capital of France?": {1, 0.1, 0},
	}}
	uc := newTestUsecase(store, embedder, &recordingChatClient{answer: "Paris."})

	got := uc.Retrieve(context.Background(), "What is the capital of France?")

	parts := strings.Split(got, "\n\n")
	require.Len(t, parts, 3)
	assert.Equal(t, "Paris is the capital of France.", parts[0])
	assert.Equal(t, "France borders Spain and Italy.", parts[1])
}

func TestRetrieve_EmptyStore(t *testing.T) {
	uc := newTestUsecase(&memoryChunkStore{}, &axisEmbedder{}, &recordingChatClient{answer: "ok"})

	assert.Empty(t, uc.Retrieve(context.Background(), "anything"))
}

func TestRetrieve_EmbedderDown(t *testing.T) {
	store := &memoryChunkStore{}
	seedStore(t, store)

	uc := newTestUsecase(store, &axisEmbedder{fail: true}, &recordingChatClient{answer: "ok"})

	assert.Empty(t, uc.Retrieve(context.Background(), "anything"))
}

func TestAnswer_PromptIncludesContext(t *testing.T) {
	client := &recordingChatClient{answer: "Paris."}
	uc := newTestUsecase(&memoryChunkStore{}, &axisEmbedder{}, client)

	got := uc.Answer(context.Background(), "What is the capital of France?", "Paris is the capital of France.")

	assert.Equal(t, "Paris.", got)
	require.Len(t, client.last, 2)
	assert.Equal(t, entity.ChatRoleSystem, client.last[0].Role)
	assert.Equal(t, "You are a helpful AI assistant.", client.last[0].Content)
	assert.Equal(t, entity.ChatRoleUser, client.last[1].Role)
	assert.Equal(t, "Context:\nParis is the capital of France.\n\nQuestion: What is the capital of France?", client.last[1].Content)
}

func TestAnswer_EmptyContextGoesContextFree(t *testing.T) {
	client := &recordingChatClient{answer: "General knowledge answer."}
	uc := newTestUsecase(&memoryChunkStore{}, &axisEmbedder{}, client)

	got := uc.Answer(context.Background(), "What is the capital of France?", "")

	assert.Equal(t, "General knowledge answer.", got)
	require.Len(t, client.last, 2)
	assert.Equal(t, "Question: What is the capital of France?", client.last[1].Content)
}

func TestAnswer_ChatDownReturnsFallback(t *testing.T) {
	client := &recordingChatClient{fail: true}
	uc := newTestUsecase(&memoryChunkStore{}, &axisEmbedder{}, client)

	got := uc.Answer(context.Background(), "anything", "")

	assert.Equal(t, fallbackAnswer, got)
}

func TestAnswerQuery_EverythingDownStillAnswers(t *testing.T) {
	uc := newTestUsecase(&memoryChunkStore{}, &axisEmbedder{fail: true}, &recordingChatClient{fail: true})

	got := uc.AnswerQuery(context.Background(), "anything at all")

	assert.Equal(t, fallbackAnswer, got)
}

func TestAnswerQuery_CachesRepeatedQuestions(t *testing.T) {
	store := &memoryChunkStore{}
	seedStore(t, store)
	client := &recordingChatClient{answer: "Paris."}
	uc := newTestUsecase(store, &axisEmbedder{}, client)

	first := uc.AnswerQuery(context.Background(), "What is the capital of France?")
	second := uc.AnswerQuery(context.Background(), "  what is the capital of france?  ")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.calls)
}

func TestHandleChat_NewConversation(t *testing.T) {
	repo := newFakeConversationRepo()
	client := &recordingChatClient{answer: "Paris."}
	uc := NewUsecase(repo, &memoryChunkStore{}, &axisEmbedder{}, client,
		"You are a helpful AI assistant.", 3, time.Minute, zap.NewNop())

	resp, err := uc.HandleChat(context.Background(), &entity.ChatRequest{
		Message: "What is the capital of France?",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ConversationID)
	assert.Equal(t, entity.SenderAI, resp.Message.Sender)
	assert.Equal(t, "Paris.", resp.Message.Content)

	// both turns are persisted in order
	messages, err := repo.ListMessages(context.Background(), resp.ConversationID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, entity.SenderUser, messages[0].Sender)
	assert.Equal(t, "What is the capital of France?", messages[0].Content)
	assert.Equal(t, entity.SenderAI, messages[1].Sender)

	// the conversation is titled after the first message
	conv, err := repo.Get(context.Background(), resp.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "What is the capital of France?", conv.Title)
}

func TestHandleChat_ContinuesExistingConversation(t *testing.T) {
	repo := newFakeConversationRepo()
	client := &recordingChatClient{answer: "Sure."}
	uc := NewUsecase(repo, &memoryChunkStore{}, &axisEmbedder{}, client,
		"You are a helpful AI assistant.", 3, time.Minute, zap.NewNop())

	first, err := uc.HandleChat(context.Background(), &entity.ChatRequest{Message: "Hello"})
	require.NoError(t, err)

	second, err := uc.HandleChat(context.Background(), &entity.ChatRequest{
		Message:        "And another thing",
		ConversationID: &first.ConversationID,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)

	messages, err := repo.ListMessages(context.Background(), first.ConversationID)
	require.NoError(t, err)
	assert.Len(t, messages, 4)
}

func TestHandleChat_UnknownConversation(t *testing.T) {
	uc := newTestUsecase(&memoryChunkStore{}, &axisEmbedder{}, &recordingChatClient{answer: "ok"})

	missing := "00000000-0000-0000-0000-000000000000"
	_, err := uc.HandleChat(context.Background(), &entity.ChatRequest{
		Message:        "Hello",
		ConversationID: &missing,
	})

	assert.ErrorIs(t, err, entity.ErrConversationNotFound)
}
