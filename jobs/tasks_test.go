package jobs

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/permitdesk/permitdesk/internal/mailer"
	"github.com/permitdesk/permitdesk/internal/pdfcache"
	"github.com/permitdesk/permitdesk/internal/shared"
)

type recordingSender struct {
	messages []mailer.Message
	err      error
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.messages = append(s.messages, msg)
	return "<msg-1@permitdesk.test>", nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func cacheWithEntry(t *testing.T, payload []byte) *pdfcache.Memory {
	t.Helper()
	store := pdfcache.NewMemory(10)
	require.NoError(t, store.Put(context.Background(), pdfcache.Entry{
		ID:          "cached-doc",
		FileName:    "invoice-aabbccdd.pdf",
		ContentType: "application/pdf",
		Payload:     payload,
		CreatedAt:   time.Now(),
	}))
	return store
}

func TestSendDocumentHandler(t *testing.T) {
	store := cacheWithEntry(t, []byte("%PDF-1.4 raw"))
	sender := &recordingSender{}
	handler := NewSendDocumentHandler(store, sender, "PermitDesk", testLogger())

	task, err := NewSendDocumentTask(SendDocumentPayload{
		CacheID: "cached-doc",
		Kind:    "invoice",
		Number:  "26-003",
		To:      "office@acme.test",
	})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Len(t, sender.messages, 1)
	require.Equal(t, "office@acme.test", sender.messages[0].To)
	require.Equal(t, "Invoice 26-003 from PermitDesk", sender.messages[0].Subject)
	require.Equal(t, "invoice-aabbccdd.pdf", sender.messages[0].AttachmentName)
	require.Equal(t, []byte("%PDF-1.4 raw"), sender.messages[0].Attachment)
}

func TestSendDocumentHandlerDecodesDataURI(t *testing.T) {
	raw := []byte("%PDF-1.4 encoded")
	uri := []byte("data:application/pdf;base64," + base64.StdEncoding.EncodeToString(raw))
	store := cacheWithEntry(t, uri)
	sender := &recordingSender{}
	handler := NewSendDocumentHandler(store, sender, "PermitDesk", testLogger())

	task, err := NewSendDocumentTask(SendDocumentPayload{
		CacheID: "cached-doc",
		Kind:    "proposal",
		Number:  "Unit 4B",
		To:      "office@acme.test",
	})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Len(t, sender.messages, 1)
	require.Equal(t, raw, sender.messages[0].Attachment)
}

func TestSendDocumentHandlerMalformedPayload(t *testing.T) {
	handler := NewSendDocumentHandler(pdfcache.NewMemory(10), &recordingSender{}, "PermitDesk", testLogger())

	task := asynq.NewTask(TaskTypeSendDocument, []byte("not json"))
	err := handler(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSendDocumentHandlerMissingCacheEntry(t *testing.T) {
	handler := NewSendDocumentHandler(pdfcache.NewMemory(10), &recordingSender{}, "PermitDesk", testLogger())

	task, err := NewSendDocumentTask(SendDocumentPayload{
		CacheID: "vanished",
		Kind:    "invoice",
		To:      "office@acme.test",
	})
	require.NoError(t, err)

	// The blob is gone for good, retrying cannot help.
	err = handler(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSendDocumentHandlerRelayFailure(t *testing.T) {
	store := cacheWithEntry(t, []byte("%PDF-1.4"))
	relayErr := errors.New("relay refused")
	handler := NewSendDocumentHandler(store, &recordingSender{err: relayErr}, "PermitDesk", testLogger())

	task, err := NewSendDocumentTask(SendDocumentPayload{
		CacheID: "cached-doc",
		Kind:    "invoice",
		To:      "office@acme.test",
	})
	require.NoError(t, err)
	require.ErrorIs(t, handler(context.Background(), task), relayErr)
}

func TestPurgeCacheHandler(t *testing.T) {
	store := cacheWithEntry(t, []byte("%PDF-1.4"))
	handler := NewPurgeCacheHandler(store, testLogger())

	task, err := NewPurgeCacheTask(PurgeCachePayload{CacheID: "cached-doc"})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	_, err = store.Get(context.Background(), "cached-doc")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPurgeCacheHandlerMalformedPayload(t *testing.T) {
	handler := NewPurgeCacheHandler(pdfcache.NewMemory(10), testLogger())

	err := handler(context.Background(), asynq.NewTask(TaskTypePurgeCache, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
