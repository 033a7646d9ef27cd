package jobs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/permitdesk/permitdesk/internal/docgen"
	"github.com/permitdesk/permitdesk/internal/mailer"
	"github.com/permitdesk/permitdesk/internal/pdfcache"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendDocument mails a cached document to a recipient.
	TaskTypeSendDocument = "mail:send"
	// TaskTypePurgeCache removes a downloaded blob from the transient cache.
	TaskTypePurgeCache = "pdfcache:purge"
)

// SendDocumentPayload identifies a cached document and its recipient.
type SendDocumentPayload struct {
	CacheID string `json:"cache_id"`
	Kind    string `json:"kind"`
	Number  string `json:"number"`
	To      string `json:"to"`
}

// PurgeCachePayload names the cache entry to drop.
type PurgeCachePayload struct {
	CacheID string `json:"cache_id"`
}

// NewSendDocumentTask constructs an Asynq task. Delivery failures are
// terminal for the user action, so nothing is retried.
func NewSendDocumentTask(payload SendDocumentPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendDocument, data, asynq.MaxRetry(0)), nil
}

// NewPurgeCacheTask constructs an Asynq task.
func NewPurgeCacheTask(payload PurgeCachePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePurgeCache, data, asynq.MaxRetry(0)), nil
}

const dataURIPrefix = "data:application/pdf;base64,"

// decodePayload accepts both raw PDF bytes and the data-URI form produced
// for inline transport.
func decodePayload(blob []byte) ([]byte, error) {
	if !bytes.HasPrefix(blob, []byte(dataURIPrefix)) {
		return blob, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(string(blob[len(dataURIPrefix):]))
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return decoded, nil
}

// NewSendDocumentHandler processes TaskTypeSendDocument tasks.
func NewSendDocumentHandler(store pdfcache.Store, sender mailer.Sender, companyName string, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendDocumentPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.CacheID == "" || payload.To == "" {
			return asynq.SkipRetry
		}

		entry, err := store.Get(ctx, payload.CacheID)
		if err != nil {
			logger.Error("send document: cache lookup failed",
				slog.String("cache_id", payload.CacheID),
				slog.Any("error", err))
			return asynq.SkipRetry
		}
		pdf, err := decodePayload(entry.Payload)
		if err != nil {
			logger.Error("send document: malformed payload",
				slog.String("cache_id", payload.CacheID),
				slog.Any("error", err))
			return asynq.SkipRetry
		}

		msg := mailer.Compose(docgen.Kind(payload.Kind), payload.Number, payload.To, companyName, entry.FileName, pdf)
		messageID, err := sender.Send(ctx, msg)
		if err != nil {
			logger.Error("send document failed",
				slog.String("to", payload.To),
				slog.Any("error", err))
			return err
		}
		logger.Info("document sent",
			slog.String("to", payload.To),
			slog.String("file", entry.FileName),
			slog.String("message_id", messageID))
		return nil
	}
}

// NewPurgeCacheHandler processes TaskTypePurgeCache tasks.
func NewPurgeCacheHandler(store pdfcache.Store, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload PurgeCachePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.CacheID == "" {
			return asynq.SkipRetry
		}
		if err := store.Delete(ctx, payload.CacheID); err != nil {
			logger.Warn("purge cache entry failed",
				slog.String("cache_id", payload.CacheID),
				slog.Any("error", err))
			return err
		}
		return nil
	}
}
