package documents

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/permits/{id}/invoice", h.GenerateInvoice)
	r.Post("/permits/{id}/invoice/email", h.EmailInvoice)
	r.Post("/proposals/{id}/pdf", h.GenerateProposal)
	r.Post("/proposals/{id}/pdf/email", h.EmailProposal)

	r.Get("/download", h.Download)
}
