package entity

import (
	"mime/multipart"
	"time"
)

type UploadDocumentRequest struct {
	Title string
	File  *multipart.FileHeader
}

type UploadDocumentResponse struct {
	Status     string `json:"status"`
	DocumentID string `json:"document_id"`
}

type DocumentDTO struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Processed  bool           `json:"processed"`
	Status     DocumentStatus `json:"status"`
	UploadedAt time.Time      `json:"uploaded_at"`
	ChunkCount *int64         `json:"chunk_count,omitempty"`
}

type ListDocumentsResponse struct {
	Documents []*DocumentDTO `json:"documents"`
}

type ListConversationsResponse struct {
	Conversations []*ConversationDTO `json:"conversations"`
}

type ListMessagesResponse struct {
	Messages []*MessageDTO `json:"messages"`
}

type ListDocumentsRequest struct {
	Skip  int
	Limit int
}

// Normalize clamps pagination parameters to sane bounds
func (r *ListDocumentsRequest) Normalize() {
	if r.Skip < 0 {
		r.Skip = 0
	}
	if r.Limit <= 0 || r.Limit > 100 {
		r.Limit = 100
	}
}

type ChatRequest struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversation_id,omitempty"`
}

type ChatResponse struct {
	ConversationID string     `json:"conversation_id"`
	Message        MessageDTO `json:"message"`
}

type MessageDTO struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
