package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/", h.PostMessage)
		r.Get("/", h.ListConversations)
		r.Get("/{conversation_id}/messages", h.ListMessages)
		r.Get("/{conversation_id}/export", h.ExportTranscript)
	})
}
