package permits

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/permits", h.List)
	r.Post("/permits", h.Create)
	r.Get("/permits/{id}", h.Show)
	r.Patch("/permits/{id}", h.Update)
	r.Delete("/permits/{id}", h.Delete)

	r.Get("/permits/{id}/checklist", h.ListItems)
	r.Post("/permits/{id}/checklist", h.AddItem)
	r.Post("/permits/{id}/apply-template", h.ApplyTemplate)
	r.Patch("/checklist/{itemID}", h.UpdateItem)
	r.Post("/checklist/{itemID}/toggle", h.ToggleItem)
	r.Delete("/checklist/{itemID}", h.DeleteItem)
}
