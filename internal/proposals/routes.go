package proposals

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/proposals", h.List)
	r.Post("/proposals", h.Create)
	r.Get("/proposals/{id}", h.Show)
	r.Patch("/proposals/{id}", h.Update)
	r.Delete("/proposals/{id}", h.Delete)

	r.Post("/proposals/{id}/send", h.Send)
	r.Post("/proposals/{id}/accept", h.Accept)
	r.Post("/proposals/{id}/decline", h.Decline)
	r.Post("/proposals/{id}/convert", h.Convert)
}
