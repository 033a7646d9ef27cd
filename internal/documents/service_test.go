package documents

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/permitdesk/permitdesk/internal/clients"
	"github.com/permitdesk/permitdesk/internal/docgen"
	"github.com/permitdesk/permitdesk/internal/observability"
	"github.com/permitdesk/permitdesk/internal/pdfcache"
	"github.com/permitdesk/permitdesk/internal/permits"
	"github.com/permitdesk/permitdesk/internal/proposals"
	"github.com/permitdesk/permitdesk/internal/shared"
	"github.com/permitdesk/permitdesk/jobs"
)

const (
	testPermitID   = "aabbccdd-1111-2222-3333-444455556666"
	testProposalID = "99887766-1111-2222-3333-fedcba987654"
	testClientID   = "4f9f568e-9a1f-4f8e-9a2a-02f2b0e2f111"
)

type stubPermits struct {
	details *permits.PermitWithDetails
}

func (s stubPermits) GetWithDetails(_ context.Context, id string) (*permits.PermitWithDetails, error) {
	if s.details == nil || s.details.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.details, nil
}

type stubProposals struct {
	proposal *proposals.Proposal
}

func (s stubProposals) Get(_ context.Context, id string) (*proposals.Proposal, error) {
	if s.proposal == nil || s.proposal.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.proposal, nil
}

type stubClientLookup struct {
	client *clients.Client
}

func (s stubClientLookup) Get(_ context.Context, id string) (*clients.Client, error) {
	if s.client == nil || s.client.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.client, nil
}

type recordingQueue struct {
	sent   []jobs.SendDocumentPayload
	purged []string
}

func (q *recordingQueue) EnqueueSendDocument(_ context.Context, payload jobs.SendDocumentPayload) (*asynq.TaskInfo, error) {
	q.sent = append(q.sent, payload)
	return nil, nil
}

func (q *recordingQueue) EnqueuePurgeCache(_ context.Context, cacheID string, _ time.Duration) (*asynq.TaskInfo, error) {
	q.purged = append(q.purged, cacheID)
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFixtures() (stubPermits, stubProposals, stubClientLookup) {
	price := 100.0
	details := &permits.PermitWithDetails{
		Permit: permits.Permit{
			ID:           testPermitID,
			PermitNumber: "26-003",
			Title:        "Storefront remodel",
			ClientID:     testClientID,
			PermitType:   "Commercial",
			Status:       permits.StatusInProgress,
			Progress:     50,
		},
		Items: []permits.ChecklistItem{
			{ID: "i1", PermitID: testPermitID, Title: "Plan review", Completed: true, Price: &price},
			{ID: "i2", PermitID: testPermitID, Title: "Inspection"},
		},
		TotalCost:     100,
		CompletedCost: 100,
		BalanceDue:    0,
	}
	proposal := &proposals.Proposal{
		ID:          testProposalID,
		ClientID:    testClientID,
		Title:       "Unit 4B build-out",
		Status:      proposals.StatusSent,
		TotalAmount: 375,
		Items: []proposals.ProposalItem{
			{ID: "p1", ProposalID: testProposalID, Description: "Plan review", Quantity: 2, UnitPrice: 150, Total: 300},
			{ID: "p2", ProposalID: testProposalID, Description: "Filing", Quantity: 1, UnitPrice: 75, Total: 75},
		},
	}
	client := &clients.Client{
		ID:    testClientID,
		Name:  "Acme Builders",
		Email: "office@acme.test",
	}
	return stubPermits{details: details}, stubProposals{proposal: proposal}, stubClientLookup{client: client}
}

func newTestService(store pdfcache.Store, queue Enqueuer) *Service {
	permitSource, proposalSource, clientSource := testFixtures()
	return NewService(ServiceParams{
		Logger:    testLogger(),
		Permits:   permitSource,
		Proposals: proposalSource,
		Clients:   clientSource,
		Generator: docgen.NewGenerator(testLogger()),
		Store:     store,
		Queue:     queue,
		Metrics:   observability.NewMetrics(),
		Company:   docgen.Company{Name: "PermitDesk Expediting"},
	})
}

func TestGenerateInvoiceCachesResult(t *testing.T) {
	ctx := context.Background()
	store := pdfcache.NewMemory(10)
	svc := newTestService(store, &recordingQueue{})

	generated, err := svc.GenerateInvoice(ctx, testPermitID)
	require.NoError(t, err)
	require.Equal(t, "invoice-aabbccdd.pdf", generated.FileName)
	require.True(t, strings.HasPrefix(generated.Base64, "data:application/pdf;base64,"))

	entry, err := store.Get(ctx, generated.ID)
	require.NoError(t, err)
	require.Equal(t, generated.FileName, entry.FileName)
	require.Equal(t, "application/pdf", entry.ContentType)
	require.True(t, strings.HasPrefix(string(entry.Payload), "%PDF"))
}

func TestGenerateProposalUsesIDSuffix(t *testing.T) {
	ctx := context.Background()
	store := pdfcache.NewMemory(10)
	svc := newTestService(store, &recordingQueue{})

	generated, err := svc.GenerateProposal(ctx, testProposalID)
	require.NoError(t, err)
	require.Equal(t, "proposal-ba987654.pdf", generated.FileName)
}

func TestGenerateInvoiceUnknownPermit(t *testing.T) {
	svc := newTestService(pdfcache.NewMemory(10), &recordingQueue{})

	_, err := svc.GenerateInvoice(context.Background(), "missing")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEmailInvoiceQueuesDispatch(t *testing.T) {
	ctx := context.Background()
	store := pdfcache.NewMemory(10)
	queue := &recordingQueue{}
	svc := newTestService(store, queue)

	generated, err := svc.EmailInvoice(ctx, testPermitID, "")
	require.NoError(t, err)

	require.Len(t, queue.sent, 1)
	require.Equal(t, generated.ID, queue.sent[0].CacheID)
	require.Equal(t, string(docgen.KindInvoice), queue.sent[0].Kind)
	// Empty recipient falls back to the client's address.
	require.Equal(t, "office@acme.test", queue.sent[0].To)
}

func TestEmailProposalExplicitRecipient(t *testing.T) {
	ctx := context.Background()
	queue := &recordingQueue{}
	svc := newTestService(pdfcache.NewMemory(10), queue)

	_, err := svc.EmailProposal(ctx, testProposalID, "somebody@else.test")
	require.NoError(t, err)
	require.Len(t, queue.sent, 1)
	require.Equal(t, "somebody@else.test", queue.sent[0].To)
}

func TestFileNameHelpers(t *testing.T) {
	require.Equal(t, "invoice-aabbccdd.pdf", InvoiceFileName(testPermitID))
	require.Equal(t, "proposal-ba987654.pdf", ProposalFileName(testProposalID))
	require.Equal(t, "invoice-short.pdf", InvoiceFileName("short"))
}
