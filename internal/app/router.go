package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/permitdesk/permitdesk/internal/clients"
	"github.com/permitdesk/permitdesk/internal/documents"
	"github.com/permitdesk/permitdesk/internal/observability"
	"github.com/permitdesk/permitdesk/internal/permits"
	"github.com/permitdesk/permitdesk/internal/proposals"
	"github.com/permitdesk/permitdesk/internal/templates"
	"github.com/permitdesk/permitdesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	ClientsHandler   *clients.Handler
	PermitsHandler   *permits.Handler
	TemplatesHandler *templates.Handler
	ProposalsHandler *proposals.Handler
	DocumentsHandler *documents.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with PermitDesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if params.ClientsHandler != nil {
			params.ClientsHandler.MountRoutes(r)
		}
		if params.PermitsHandler != nil {
			params.PermitsHandler.MountRoutes(r)
		}
		if params.TemplatesHandler != nil {
			params.TemplatesHandler.MountRoutes(r)
		}
		if params.ProposalsHandler != nil {
			params.ProposalsHandler.MountRoutes(r)
		}
		if params.DocumentsHandler != nil {
			params.DocumentsHandler.MountRoutes(r)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
