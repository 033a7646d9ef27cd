package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/permitdesk/permitdesk/internal/app"
	"github.com/permitdesk/permitdesk/internal/clients"
	"github.com/permitdesk/permitdesk/internal/docgen"
	"github.com/permitdesk/permitdesk/internal/documents"
	"github.com/permitdesk/permitdesk/internal/numbering"
	"github.com/permitdesk/permitdesk/internal/observability"
	"github.com/permitdesk/permitdesk/internal/pdfcache"
	"github.com/permitdesk/permitdesk/internal/permits"
	"github.com/permitdesk/permitdesk/internal/platform/cache"
	"github.com/permitdesk/permitdesk/internal/platform/db"
	"github.com/permitdesk/permitdesk/internal/proposals"
	"github.com/permitdesk/permitdesk/internal/seed"
	"github.com/permitdesk/permitdesk/internal/shared"
	"github.com/permitdesk/permitdesk/internal/templates"
	"github.com/permitdesk/permitdesk/jobs"
)

// clientExistence adapts the clients repository to the existence checks the
// permit and proposal services need.
type clientExistence struct {
	repo clients.Repository
}

func (c clientExistence) Exists(ctx context.Context, clientID string) (bool, error) {
	_, err := c.repo.Get(ctx, clientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	clientRepo := clients.NewRepository(pool)
	permitRepo := permits.NewRepository(pool)
	templateRepo := templates.NewRepository(pool)
	proposalRepo := proposals.NewRepository(pool)

	counter := numbering.NewPostgresCounter(pool)
	clientSource := clientExistence{repo: clientRepo}

	templateService := templates.NewService(templateRepo)
	permitService := permits.NewService(permitRepo, clientSource, templateService, counter)
	clientService := clients.NewService(clientRepo, permitRepo)
	proposalService := proposals.NewService(proposalRepo, clientSource, permitService)

	seeder := seed.New(logger, clientRepo, templateRepo)
	if err := seeder.Run(ctx); err != nil {
		logger.Warn("seed demo data", slog.Any("error", err))
	}

	metrics := observability.NewMetrics()
	store := pdfcache.NewRedis(redisClient, cfg.PDFCacheCap)
	generator := docgen.NewGenerator(logger)

	queueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	documentService := documents.NewService(documents.ServiceParams{
		Logger:    logger,
		Permits:   permitService,
		Proposals: proposalService,
		Clients:   clientService,
		Generator: generator,
		Store:     store,
		Queue:     queueClient,
		Metrics:   metrics,
		Company: docgen.Company{
			Name:     cfg.CompanyName,
			Address:  cfg.CompanyAddress,
			Phone:    cfg.CompanyPhone,
			Email:    cfg.CompanyEmail,
			LogoPath: cfg.CompanyLogo,
		},
	})

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		ClientsHandler:   clients.NewHandler(logger, clientService),
		PermitsHandler:   permits.NewHandler(logger, permitService),
		TemplatesHandler: templates.NewHandler(logger, templateService),
		ProposalsHandler: proposals.NewHandler(logger, proposalService),
		DocumentsHandler: documents.NewHandler(logger, documentService, store, queueClient, cfg.PDFCacheRetrievalTTL),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
