package entity

import "errors"

// Domain errors
var (
	// Document errors
	ErrDocumentNotFound = errors.New("document not found")

	// Conversation errors
	ErrConversationNotFound = errors.New("conversation not found")

	// Capability errors. These mark degraded-mode boundaries: the ingestion
	// pipeline and the chat path catch them and produce a reduced result
	// instead of failing the request.
	ErrEmbeddingUnavailable = errors.New("embedding capability unavailable")
	ErrChatUnavailable      = errors.New("chat capability unavailable")
	ErrStoreWriteFailed     = errors.New("vector store write failed")

	// Ingestion errors
	ErrIngestQueueFull   = errors.New("ingestion queue is full")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrAlreadyProcessed  = errors.New("document already processed")
	ErrSchedulerStopped  = errors.New("ingestion scheduler is stopped")

	// File errors
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidExtension = errors.New("invalid file extension")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
