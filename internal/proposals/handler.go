package proposals

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/permitdesk/permitdesk/internal/platform/httpx"
	"github.com/permitdesk/permitdesk/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListProposalsRequest{Limit: 50}
	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		req.ClientID = &clientID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		st := Status(status)
		req.Status = &st
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			req.Limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			req.Offset = parsed
		}
	}

	records, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list proposals failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"proposals": records,
		"total":     total,
		"limit":     req.Limit,
		"offset":    req.Offset,
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	proposal, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, proposal)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProposalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}

	proposal, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create proposal failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, proposal)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProposalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}

	proposal, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.logger.Error("update proposal failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, proposal)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("delete proposal failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	h.respondTransition(w, r, h.service.Send)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.respondTransition(w, r, h.service.Accept)
}

func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	h.respondTransition(w, r, h.service.Decline)
}

func (h *Handler) respondTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) (*Proposal, error)) {
	proposal, err := fn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("proposal transition failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, proposal)
}

func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	permitID, err := h.service.Convert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("convert proposal failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"permit_id": permitID})
}
