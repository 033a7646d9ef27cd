package proposals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/permitdesk/permitdesk/internal/permits"
	"github.com/permitdesk/permitdesk/internal/shared"
)

type memoryProposalRepo struct {
	proposals map[string]*Proposal
	items     map[string][]ProposalItem
}

func newMemoryProposalRepo() *memoryProposalRepo {
	return &memoryProposalRepo{
		proposals: make(map[string]*Proposal),
		items:     make(map[string][]ProposalItem),
	}
}

func (r *memoryProposalRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryProposalRepo) Get(_ context.Context, id string) (*Proposal, error) {
	p, ok := r.proposals[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	cp.Items = append([]ProposalItem(nil), r.items[id]...)
	return &cp, nil
}

func (r *memoryProposalRepo) List(_ context.Context, req ListProposalsRequest) ([]Proposal, int, error) {
	var out []Proposal
	for _, p := range r.proposals {
		if req.ClientID != nil && p.ClientID != *req.ClientID {
			continue
		}
		if req.Status != nil && p.Status != *req.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *memoryProposalRepo) Create(_ context.Context, proposal Proposal) error {
	stored := proposal
	stored.Items = nil
	r.proposals[proposal.ID] = &stored
	return nil
}

func (r *memoryProposalRepo) Update(_ context.Context, id string, updates map[string]interface{}) error {
	p, ok := r.proposals[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["title"]; ok {
		p.Title = v.(string)
	}
	if v, ok := updates["scope"]; ok {
		scope := v.(string)
		p.Scope = &scope
	}
	if v, ok := updates["status"]; ok {
		p.Status = v.(Status)
	}
	if v, ok := updates["valid_until"]; ok {
		until := v.(time.Time)
		p.ValidUntil = &until
	}
	if v, ok := updates["total_amount"]; ok {
		p.TotalAmount = v.(float64)
	}
	if v, ok := updates["notes"]; ok {
		notes := v.(string)
		p.Notes = &notes
	}
	if v, ok := updates["permit_id"]; ok {
		permitID := v.(string)
		p.PermitID = &permitID
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memoryProposalRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.proposals[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.proposals, id)
	return nil
}

func (r *memoryProposalRepo) ListItems(_ context.Context, proposalID string) ([]ProposalItem, error) {
	return append([]ProposalItem(nil), r.items[proposalID]...), nil
}

func (r *memoryProposalRepo) InsertItem(_ context.Context, item ProposalItem) error {
	r.items[item.ProposalID] = append(r.items[item.ProposalID], item)
	return nil
}

func (r *memoryProposalRepo) DeleteItems(_ context.Context, proposalID string) error {
	delete(r.items, proposalID)
	return nil
}

type stubClientSource struct {
	exists bool
}

func (s stubClientSource) Exists(context.Context, string) (bool, error) {
	return s.exists, nil
}

type fakePermitConverter struct {
	created *permits.Permit
	items   []permits.CreateChecklistItemRequest
}

func (f *fakePermitConverter) Create(_ context.Context, req permits.CreatePermitRequest) (*permits.Permit, error) {
	permit := permits.Permit{
		ID:           uuid.NewString(),
		PermitNumber: "26-007",
		Title:        req.Title,
		ClientID:     req.ClientID,
		PermitType:   req.PermitType,
		Status:       permits.StatusDraft,
		Location:     req.Location,
		Description:  req.Description,
	}
	f.created = &permit
	return &permit, nil
}

func (f *fakePermitConverter) AddItem(_ context.Context, permitID string, req permits.CreateChecklistItemRequest) (*permits.ChecklistItem, error) {
	f.items = append(f.items, req)
	return &permits.ChecklistItem{ID: uuid.NewString(), PermitID: permitID, Title: req.Title, Price: req.Price}, nil
}

func newTestProposalService(repo *memoryProposalRepo, converter PermitConverter) *Service {
	return NewService(repo, stubClientSource{exists: true}, converter)
}

func createTestProposal(t *testing.T, svc *Service) *Proposal {
	t.Helper()
	proposal, err := svc.Create(context.Background(), CreateProposalRequest{
		ClientID: "4f9f568e-9a1f-4f8e-9a2a-02f2b0e2f111",
		Title:    "Warehouse expansion",
		Items: []ProposalItemInput{
			{Description: "Plan review", Quantity: 2, UnitPrice: 150},
			{Description: "Filing service", Quantity: 1, UnitPrice: 75},
		},
	})
	require.NoError(t, err)
	return proposal
}

func TestCreateComputesTotal(t *testing.T) {
	svc := newTestProposalService(newMemoryProposalRepo(), &fakePermitConverter{})
	proposal := createTestProposal(t, svc)

	require.Equal(t, StatusDraft, proposal.Status)
	require.Equal(t, 375.0, proposal.TotalAmount)
	require.Len(t, proposal.Items, 2)
	require.Equal(t, 300.0, proposal.Items[0].Total)
}

func TestUpdateReplacingItemsRecomputesTotal(t *testing.T) {
	ctx := context.Background()
	svc := newTestProposalService(newMemoryProposalRepo(), &fakePermitConverter{})
	proposal := createTestProposal(t, svc)

	items := []ProposalItemInput{
		{Description: "Expedited review", Quantity: 1, UnitPrice: 500},
	}
	updated, err := svc.Update(ctx, proposal.ID, UpdateProposalRequest{Items: &items})
	require.NoError(t, err)
	require.Equal(t, 500.0, updated.TotalAmount)
	require.Len(t, updated.Items, 1)
}

func TestStatusTransitions(t *testing.T) {
	ctx := context.Background()
	svc := newTestProposalService(newMemoryProposalRepo(), &fakePermitConverter{})
	proposal := createTestProposal(t, svc)

	// Accepting a draft skips the sent step and is rejected.
	_, err := svc.Accept(ctx, proposal.ID)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)

	sent, err := svc.Send(ctx, proposal.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSent, sent.Status)

	_, err = svc.Send(ctx, proposal.ID)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)

	accepted, err := svc.Accept(ctx, proposal.ID)
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, accepted.Status)
}

func TestDeclineSentProposal(t *testing.T) {
	ctx := context.Background()
	svc := newTestProposalService(newMemoryProposalRepo(), &fakePermitConverter{})
	proposal := createTestProposal(t, svc)

	_, err := svc.Send(ctx, proposal.ID)
	require.NoError(t, err)
	declined, err := svc.Decline(ctx, proposal.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDeclined, declined.Status)
}

func TestConvertRequiresAcceptedStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestProposalService(newMemoryProposalRepo(), &fakePermitConverter{})
	proposal := createTestProposal(t, svc)

	permitID, err := svc.Convert(ctx, proposal.ID)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
	require.Empty(t, permitID)
}

func TestConvertAcceptedProposal(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryProposalRepo()
	converter := &fakePermitConverter{}
	svc := newTestProposalService(repo, converter)

	scope := "Full build-out of unit 4B"
	proposal, err := svc.Create(ctx, CreateProposalRequest{
		ClientID: "4f9f568e-9a1f-4f8e-9a2a-02f2b0e2f111",
		Title:    "Unit 4B build-out",
		Scope:    &scope,
		Items: []ProposalItemInput{
			{Description: "Plan review", Quantity: 2, UnitPrice: 150},
			{Description: "Inspection", Quantity: 1, UnitPrice: 75},
		},
	})
	require.NoError(t, err)

	_, err = svc.Send(ctx, proposal.ID)
	require.NoError(t, err)
	_, err = svc.Accept(ctx, proposal.ID)
	require.NoError(t, err)

	permitID, err := svc.Convert(ctx, proposal.ID)
	require.NoError(t, err)
	require.NotEmpty(t, permitID)

	require.Equal(t, "Commercial", converter.created.PermitType)
	require.Equal(t, "", converter.created.Location)
	require.Equal(t, scope, *converter.created.Description)

	require.Len(t, converter.items, 2)
	require.Equal(t, 300.0, *converter.items[0].Price)
	require.Equal(t, 75.0, *converter.items[1].Price)

	converted, err := svc.Get(ctx, proposal.ID)
	require.NoError(t, err)
	require.Equal(t, permitID, *converted.PermitID)
	require.Contains(t, *converted.Notes, "Converted to permit 26-007")
}

func TestConvertTwiceBlocked(t *testing.T) {
	ctx := context.Background()
	svc := newTestProposalService(newMemoryProposalRepo(), &fakePermitConverter{})
	proposal := createTestProposal(t, svc)

	_, err := svc.Send(ctx, proposal.ID)
	require.NoError(t, err)
	_, err = svc.Accept(ctx, proposal.ID)
	require.NoError(t, err)
	_, err = svc.Convert(ctx, proposal.ID)
	require.NoError(t, err)

	_, err = svc.Convert(ctx, proposal.ID)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestCreateRejectsUnknownClient(t *testing.T) {
	svc := NewService(newMemoryProposalRepo(), stubClientSource{exists: false}, &fakePermitConverter{})

	_, err := svc.Create(context.Background(), CreateProposalRequest{
		ClientID: "4f9f568e-9a1f-4f8e-9a2a-02f2b0e2f111",
		Title:    "Orphan",
		Items:    []ProposalItemInput{{Description: "X", Quantity: 1, UnitPrice: 1}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSumItems(t *testing.T) {
	items := []ProposalItem{
		{Quantity: 2, UnitPrice: 150},
		{Quantity: 3, UnitPrice: 10},
	}
	require.Equal(t, 330.0, SumItems(items))
	require.Equal(t, 0.0, SumItems(nil))
}
