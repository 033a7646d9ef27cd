package documents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/singleflight"

	"github.com/permitdesk/permitdesk/internal/clients"
	"github.com/permitdesk/permitdesk/internal/docgen"
	"github.com/permitdesk/permitdesk/internal/observability"
	"github.com/permitdesk/permitdesk/internal/pdfcache"
	"github.com/permitdesk/permitdesk/internal/permits"
	"github.com/permitdesk/permitdesk/internal/proposals"
	"github.com/permitdesk/permitdesk/internal/shared"
	"github.com/permitdesk/permitdesk/jobs"
)

// PermitSource resolves permits with their checklist and cost figures.
type PermitSource interface {
	GetWithDetails(ctx context.Context, id string) (*permits.PermitWithDetails, error)
}

// ProposalSource resolves proposals with their line items.
type ProposalSource interface {
	Get(ctx context.Context, id string) (*proposals.Proposal, error)
}

// ClientSource resolves the counterparty printed on documents.
type ClientSource interface {
	Get(ctx context.Context, id string) (*clients.Client, error)
}

// Enqueuer submits background tasks. Nil is tolerated; mail then fails fast
// and purges fall back to in-process timers.
type Enqueuer interface {
	EnqueueSendDocument(ctx context.Context, payload jobs.SendDocumentPayload) (*asynq.TaskInfo, error)
	EnqueuePurgeCache(ctx context.Context, cacheID string, delay time.Duration) (*asynq.TaskInfo, error)
}

// Generated is the handle returned to the caller after rendering: the cache
// key for the download endpoint plus an inline data-URI form.
type Generated struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Base64   string `json:"base64"`
}

type Service struct {
	logger    *slog.Logger
	permits   PermitSource
	proposals ProposalSource
	clients   ClientSource
	generator *docgen.Generator
	store     pdfcache.Store
	queue     Enqueuer
	metrics   *observability.Metrics
	company   docgen.Company
	now       func() time.Time

	render singleflight.Group
}

type ServiceParams struct {
	Logger    *slog.Logger
	Permits   PermitSource
	Proposals ProposalSource
	Clients   ClientSource
	Generator *docgen.Generator
	Store     pdfcache.Store
	Queue     Enqueuer
	Metrics   *observability.Metrics
	Company   docgen.Company
}

func NewService(p ServiceParams) *Service {
	return &Service{
		logger:    p.Logger,
		permits:   p.Permits,
		proposals: p.Proposals,
		clients:   p.Clients,
		generator: p.Generator,
		store:     p.Store,
		queue:     p.Queue,
		metrics:   p.Metrics,
		company:   p.Company,
		now:       time.Now,
	}
}

// GenerateInvoice renders the permit's checklist as an invoice and caches
// the result for download. Concurrent requests for the same permit render
// once and share the cached result.
func (s *Service) GenerateInvoice(ctx context.Context, permitID string) (*Generated, error) {
	v, err, _ := s.render.Do("invoice:"+permitID, func() (interface{}, error) {
		doc, _, err := s.invoiceDocument(ctx, permitID)
		if err != nil {
			return nil, err
		}
		return s.renderAndCache(ctx, *doc)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Generated), nil
}

// GenerateProposal renders a proposal document and caches it for download.
func (s *Service) GenerateProposal(ctx context.Context, proposalID string) (*Generated, error) {
	v, err, _ := s.render.Do("proposal:"+proposalID, func() (interface{}, error) {
		doc, _, err := s.proposalDocument(ctx, proposalID)
		if err != nil {
			return nil, err
		}
		return s.renderAndCache(ctx, *doc)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Generated), nil
}

// EmailInvoice renders, caches and queues the invoice for dispatch. An empty
// recipient falls back to the client's address.
func (s *Service) EmailInvoice(ctx context.Context, permitID, to string) (*Generated, error) {
	doc, client, err := s.invoiceDocument(ctx, permitID)
	if err != nil {
		return nil, err
	}
	return s.renderCacheAndQueue(ctx, *doc, client, to)
}

// EmailProposal renders, caches and queues the proposal for dispatch.
func (s *Service) EmailProposal(ctx context.Context, proposalID, to string) (*Generated, error) {
	doc, client, err := s.proposalDocument(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	return s.renderCacheAndQueue(ctx, *doc, client, to)
}

func (s *Service) invoiceDocument(ctx context.Context, permitID string) (*docgen.Document, *clients.Client, error) {
	details, err := s.permits.GetWithDetails(ctx, permitID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve permit: %w", err)
	}
	client, err := s.clients.Get(ctx, details.ClientID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve client: %w", err)
	}

	items := make([]docgen.LineItem, 0, len(details.Items))
	for _, item := range details.Items {
		items = append(items, docgen.LineItem{
			Description: item.Title,
			UnitPrice:   item.Price,
			Amount:      item.Price,
		})
	}

	project := []string{
		"Permit " + details.PermitNumber,
		"Type: " + details.PermitType,
		"Status: " + string(details.Status),
		fmt.Sprintf("Progress: %d%%", details.Progress),
	}
	if details.Location != "" {
		project = append(project, details.Location)
	}

	balance := details.BalanceDue
	notes := ""
	if details.Description != nil {
		notes = *details.Description
	}
	doc := docgen.Document{
		Kind:       docgen.KindInvoice,
		Number:     details.PermitNumber,
		Title:      details.Title,
		Date:       s.now().UTC(),
		Company:    s.company,
		BillTo:     clientBox(client),
		Project:    docgen.InfoBox{Title: "Permit", Lines: project},
		Items:      items,
		Total:      details.TotalCost,
		Completed:  details.CompletedCost,
		BalanceDue: &balance,
		Notes:      notes,
		FileName:   InvoiceFileName(details.ID),
	}
	return &doc, client, nil
}

func (s *Service) proposalDocument(ctx context.Context, proposalID string) (*docgen.Document, *clients.Client, error) {
	proposal, err := s.proposals.Get(ctx, proposalID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve proposal: %w", err)
	}
	client, err := s.clients.Get(ctx, proposal.ClientID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve client: %w", err)
	}

	items := make([]docgen.LineItem, 0, len(proposal.Items))
	for _, item := range proposal.Items {
		unit := item.UnitPrice
		amount := item.Total
		items = append(items, docgen.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   &unit,
			Amount:      &amount,
		})
	}

	project := []string{"Status: " + string(proposal.Status)}
	if proposal.Scope != nil && *proposal.Scope != "" {
		project = append(project, *proposal.Scope)
	}

	notes := ""
	if proposal.Notes != nil {
		notes = *proposal.Notes
	}
	doc := docgen.Document{
		Kind:       docgen.KindProposal,
		Number:     shortID(proposal.ID, false),
		Title:      proposal.Title,
		Date:       s.now().UTC(),
		ValidUntil: proposal.ValidUntil,
		Company:    s.company,
		BillTo:     clientBox(client),
		Project:    docgen.InfoBox{Title: "Scope of Work", Lines: project},
		Items:      items,
		Total:      proposal.TotalAmount,
		Notes:      notes,
		FileName:   ProposalFileName(proposal.ID),
	}
	return &doc, client, nil
}

func (s *Service) renderAndCache(ctx context.Context, doc docgen.Document) (*Generated, error) {
	result, err := s.generator.Render(doc)
	if err != nil {
		s.metrics.ObserveDocument(string(doc.Kind), "error")
		return nil, err
	}
	s.metrics.ObserveDocument(string(doc.Kind), "success")

	entry := pdfcache.Entry{
		ID:          uuid.NewString(),
		FileName:    doc.FileName,
		ContentType: "application/pdf",
		Payload:     result.Buffer,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Put(ctx, entry); err != nil {
		return nil, fmt.Errorf("cache document: %w", err)
	}

	return &Generated{
		ID:       entry.ID,
		FileName: entry.FileName,
		Base64:   result.Base64,
	}, nil
}

func (s *Service) renderCacheAndQueue(ctx context.Context, doc docgen.Document, client *clients.Client, to string) (*Generated, error) {
	if to == "" {
		to = client.Email
	}
	if to == "" {
		return nil, fmt.Errorf("%w: no recipient address", shared.ErrValidation)
	}

	generated, err := s.renderAndCache(ctx, doc)
	if err != nil {
		return nil, err
	}

	if s.queue == nil {
		return nil, fmt.Errorf("%w: mail queue unavailable", shared.ErrDelivery)
	}
	_, err = s.queue.EnqueueSendDocument(ctx, jobs.SendDocumentPayload{
		CacheID: generated.ID,
		Kind:    string(doc.Kind),
		Number:  doc.Number,
		To:      to,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: enqueue mail: %v", shared.ErrDelivery, err)
	}
	s.logger.Info("document queued for dispatch",
		slog.String("kind", string(doc.Kind)),
		slog.String("to", to),
		slog.String("file", generated.FileName))
	return generated, nil
}

func clientBox(client *clients.Client) docgen.InfoBox {
	lines := []string{client.Name}
	if client.ContactName != nil && *client.ContactName != "" {
		lines = append(lines, *client.ContactName)
	}
	if client.Email != "" {
		lines = append(lines, client.Email)
	}
	if client.Phone != nil && *client.Phone != "" {
		lines = append(lines, *client.Phone)
	}
	return docgen.InfoBox{Title: "Bill To", Lines: lines}
}

// InvoiceFileName derives the download name from the permit id prefix.
func InvoiceFileName(permitID string) string {
	return "invoice-" + shortID(permitID, true) + ".pdf"
}

// ProposalFileName derives the download name from the proposal id suffix.
func ProposalFileName(proposalID string) string {
	return "proposal-" + shortID(proposalID, false) + ".pdf"
}

func shortID(id string, prefix bool) string {
	if len(id) <= 8 {
		return id
	}
	if prefix {
		return id[:8]
	}
	return id[len(id)-8:]
}
