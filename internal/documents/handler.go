package documents

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/permitdesk/permitdesk/internal/pdfcache"
	"github.com/permitdesk/permitdesk/internal/platform/httpx"
	"github.com/permitdesk/permitdesk/internal/shared"
)

type Handler struct {
	logger       *slog.Logger
	service      *Service
	store        pdfcache.Store
	queue        Enqueuer
	retrievalTTL time.Duration
	validate     *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, store pdfcache.Store, queue Enqueuer, retrievalTTL time.Duration) *Handler {
	if retrievalTTL <= 0 {
		retrievalTTL = 60 * time.Second
	}
	return &Handler{
		logger:       logger,
		service:      service,
		store:        store,
		queue:        queue,
		retrievalTTL: retrievalTTL,
		validate:     validator.New(),
	}
}

func (h *Handler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	generated, err := h.service.GenerateInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("generate invoice failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, generated)
}

func (h *Handler) GenerateProposal(w http.ResponseWriter, r *http.Request) {
	generated, err := h.service.GenerateProposal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("generate proposal pdf failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, generated)
}

type emailRequest struct {
	To string `json:"to,omitempty" validate:"omitempty,email"`
}

func (h *Handler) decodeEmailRequest(r *http.Request) (emailRequest, error) {
	var req emailRequest
	if r.Body == nil || r.ContentLength == 0 {
		return req, nil
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return req, fmt.Errorf("%w: malformed body", shared.ErrValidation)
	}
	if err := h.validate.Struct(req); err != nil {
		return req, fmt.Errorf("%w: %s", shared.ErrValidation, err.Error())
	}
	return req, nil
}

func (h *Handler) EmailInvoice(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeEmailRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	generated, err := h.service.EmailInvoice(r.Context(), chi.URLParam(r, "id"), req.To)
	if err != nil {
		h.logger.Error("email invoice failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, generated)
}

func (h *Handler) EmailProposal(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeEmailRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	generated, err := h.service.EmailProposal(r.Context(), chi.URLParam(r, "id"), req.To)
	if err != nil {
		h.logger.Error("email proposal failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, generated)
}

// Download streams a cached document and schedules its removal shortly
// after a successful fetch.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "missing id parameter")
		return
	}

	entry, err := h.store.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", entry.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entry.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(entry.Payload); err != nil {
		h.logger.Warn("download write interrupted",
			slog.String("cache_id", id),
			slog.Any("error", err))
		return
	}

	h.schedulePurge(id)
}

// schedulePurge prefers the queue so the removal survives a restart. The
// timer fallback covers deployments without a worker.
func (h *Handler) schedulePurge(id string) {
	if h.queue != nil {
		if _, err := h.queue.EnqueuePurgeCache(context.Background(), id, h.retrievalTTL); err == nil {
			return
		} else {
			h.logger.Warn("enqueue purge failed, using timer",
				slog.String("cache_id", id),
				slog.Any("error", err))
		}
	}
	store := h.store
	time.AfterFunc(h.retrievalTTL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Delete(ctx, id)
	})
}
