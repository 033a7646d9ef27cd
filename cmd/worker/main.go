package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/permitdesk/permitdesk/internal/app"
	"github.com/permitdesk/permitdesk/internal/mailer"
	"github.com/permitdesk/permitdesk/internal/pdfcache"
	"github.com/permitdesk/permitdesk/internal/platform/cache"
	"github.com/permitdesk/permitdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	store := pdfcache.NewRedis(redisClient, cfg.PDFCacheCap)

	if !cfg.MailConfigured() {
		logger.Warn("mail relay not fully configured, dispatch tasks will fail")
	}
	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Secure:   cfg.SMTPSecure,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
		Timeout:  cfg.SMTPTimeout,
	})

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendDocument, Handler: jobs.NewSendDocumentHandler(store, sender, cfg.CompanyName, logger)},
			{Type: jobs.TaskTypePurgeCache, Handler: jobs.NewPurgeCacheHandler(store, logger)},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
