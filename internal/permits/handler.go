package permits

import (
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
	req := ListPermitsRequest{Limit: 50}
	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		req.ClientID = &clientID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		st := Status(status)
		req.Status = &st
	}
	if search := r.URL.Query().Get("search"); search != "" {
		req.Search = &search
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
		h.logger.Error("list permits failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"permits": records,
		"total":   total,
		"limit":   req.Limit,
		"offset":  req.Offset,
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.GetWithDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePermitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}

	permit, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create permit failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, permit)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePermitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}

	permit, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.logger.Error("update permit failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, permit)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("delete permit failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req CreateChecklistItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}

	item, err := h.service.AddItem(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.logger.Error("add checklist item failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateChecklistItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}

	item, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "itemID"), req)
	if err != nil {
		h.logger.Error("update checklist item failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.ToggleItem(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		h.logger.Error("toggle checklist item failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "itemID")); err != nil {
		h.logger.Error("delete checklist item failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type applyTemplateRequest struct {
	TemplateID string `json:"template_id" validate:"required,uuid4"`
}

func (h *Handler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var req applyTemplateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed body", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error()))
		return
	}

	items, err := h.service.ApplyTemplate(r.Context(), req.TemplateID, chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("apply template failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"items": items})
}
