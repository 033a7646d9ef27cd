package templates

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/templates", h.List)
	r.Post("/templates", h.Create)
	r.Get("/templates/{id}", h.Show)
	r.Patch("/templates/{id}", h.Update)
	r.Delete("/templates/{id}", h.Delete)
}
