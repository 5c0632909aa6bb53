package document

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers document routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/documents", func(r chi.Router) {
		r.Post("/", h.UploadDocument)
		r.Get("/", h.ListDocuments)
		r.Get("/{document_id}", h.GetDocument)
	})
}
