package clients

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/clients", h.List)
	r.Post("/clients", h.Create)
	r.Get("/clients/{id}", h.Show)
	r.Patch("/clients/{id}", h.Update)
	r.Delete("/clients/{id}", h.Delete)

	r.Get("/clients/{id}/branches", h.ListBranches)
	r.Post("/clients/{id}/branches", h.CreateBranch)
	r.Patch("/branches/{branchID}", h.UpdateBranch)
	r.Delete("/branches/{branchID}", h.DeleteBranch)
}
