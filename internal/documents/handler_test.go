package documents

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/permitdesk/permitdesk/internal/pdfcache"
)

func newTestHandler(store pdfcache.Store, queue Enqueuer) *Handler {
	svc := newTestService(store, queue)
	return NewHandler(testLogger(), svc, store, queue, time.Minute)
}

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestDownloadMissingID(t *testing.T) {
	router := newTestRouter(newTestHandler(pdfcache.NewMemory(10), &recordingQueue{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadUnknownID(t *testing.T) {
	router := newTestRouter(newTestHandler(pdfcache.NewMemory(10), &recordingQueue{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download?id=nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadServesAttachment(t *testing.T) {
	store := pdfcache.NewMemory(10)
	queue := &recordingQueue{}
	router := newTestRouter(newTestHandler(store, queue))

	entry := pdfcache.Entry{
		ID:          "cached-doc",
		FileName:    "invoice-aabbccdd.pdf",
		ContentType: "application/pdf",
		Payload:     []byte("%PDF-1.4 test"),
		CreatedAt:   time.Now(),
	}
	require.NoError(t, store.Put(context.Background(), entry))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download?id=cached-doc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="invoice-aabbccdd.pdf"`, rec.Header().Get("Content-Disposition"))
	require.Equal(t, entry.Payload, rec.Body.Bytes())

	// Removal is scheduled through the queue, not done inline.
	require.Equal(t, []string{"cached-doc"}, queue.purged)
	_, err := store.Get(context.Background(), "cached-doc")
	require.NoError(t, err)
}

func TestGenerateInvoiceEndpoint(t *testing.T) {
	store := pdfcache.NewMemory(10)
	router := newTestRouter(newTestHandler(store, &recordingQueue{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/permits/"+testPermitID+"/invoice", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "invoice-aabbccdd.pdf")
}

func TestEmailInvoiceEndpointUnknownPermit(t *testing.T) {
	router := newTestRouter(newTestHandler(pdfcache.NewMemory(10), &recordingQueue{}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/permits/unknown/invoice/email", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
