package entity

import (
	"fmt"
	"time"
)

type DocumentStatus string

// Document status tracks the ingestion state machine for one uploaded document
const (
	DocumentStatusUploaded   DocumentStatus = "UPLOADED"   // Row created, ingestion not started
	DocumentStatusExtracting DocumentStatus = "EXTRACTING" // Extracting raw text from the file
	DocumentStatusChunking   DocumentStatus = "CHUNKING"   // Splitting text into overlapping chunks
	DocumentStatusEmbedding  DocumentStatus = "EMBEDDING"  // Computing embedding vectors
	DocumentStatusPersisted  DocumentStatus = "PERSISTED"  // Chunks stored, ingestion finished
	DocumentStatusFailed     DocumentStatus = "FAILED"     // Ingestion terminated on an unrecoverable failure
)

func (s DocumentStatus) Validate() error {
	switch s {
	case DocumentStatusUploaded, DocumentStatusExtracting, DocumentStatusChunking,
		DocumentStatusEmbedding, DocumentStatusPersisted, DocumentStatusFailed:
		return nil
	default:
		return fmt.Errorf("unknown document status: %s", s)
	}
}

// Document is one uploaded file tracked by the ingestion subsystem.
// Processed flips false -> true exactly once, when ingestion terminates.
type Document struct {
	ID         string
	Title      string
	FilePath   string
	Processed  bool
	Status     DocumentStatus
	UploadedAt time.Time
}

// Chunk is a bounded text segment of a document paired with its embedding
// vector. The serial ID preserves insertion order within the store.
type Chunk struct {
	ID         int64
	DocumentID string
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
}

// ScoredChunk is a chunk ranked against a query vector.
// Distance is cosine distance (1 - cosine similarity), ascending is better.
type ScoredChunk struct {
	Chunk    Chunk
	Distance float64
}

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Conversation groups the messages of one chat thread.
type Conversation struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

// Message is a single user or AI turn persisted within a conversation.
type Message struct {
	ID             string
	ConversationID string
	Sender         Sender
	Content        string
	CreatedAt      time.Time
}
