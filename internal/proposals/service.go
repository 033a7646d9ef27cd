package proposals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/permitdesk/permitdesk/internal/permits"
	"github.com/permitdesk/permitdesk/internal/shared"
)

// ClientSource verifies client references without importing the clients
// package wholesale.
type ClientSource interface {
	Exists(ctx context.Context, clientID string) (bool, error)
}

// PermitConverter creates the permit and checklist rows that an accepted
// proposal converts into.
type PermitConverter interface {
	Create(ctx context.Context, req permits.CreatePermitRequest) (*permits.Permit, error)
	AddItem(ctx context.Context, permitID string, req permits.CreateChecklistItemRequest) (*permits.ChecklistItem, error)
}

type Service struct {
	repo    Repository
	clients ClientSource
	permits PermitConverter
	now     func() time.Time
}

func NewService(repo Repository, clients ClientSource, converter PermitConverter) *Service {
	return &Service{
		repo:    repo,
		clients: clients,
		permits: converter,
		now:     time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req CreateProposalRequest) (*Proposal, error) {
	ok, err := s.clients.Exists(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("verify client: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("client %s: %w", req.ClientID, shared.ErrNotFound)
	}

	proposal := Proposal{
		ID:         uuid.NewString(),
		ClientID:   req.ClientID,
		Title:      req.Title,
		Scope:      req.Scope,
		Status:     StatusDraft,
		ValidUntil: req.ValidUntil,
		Notes:      req.Notes,
		CreatedAt:  s.now().UTC(),
	}
	proposal.UpdatedAt = proposal.CreatedAt
	proposal.Items = buildItems(proposal.ID, req.Items)
	proposal.TotalAmount = SumItems(proposal.Items)

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Create(ctx, proposal); err != nil {
			return fmt.Errorf("create proposal: %w", err)
		}
		for _, item := range proposal.Items {
			if err := repo.InsertItem(ctx, item); err != nil {
				return fmt.Errorf("insert proposal item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// Update merges header fields and, when items are supplied, replaces the
// whole line set and recomputes the total.
func (s *Service) Update(ctx context.Context, id string, req UpdateProposalRequest) (*Proposal, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Scope != nil {
		updates["scope"] = *req.Scope
	}
	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	var replacement []ProposalItem
	if req.Items != nil {
		replacement = buildItems(id, *req.Items)
		updates["total_amount"] = SumItems(replacement)
	}

	if len(updates) == 0 {
		return existing, nil
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, id, updates); err != nil {
			return fmt.Errorf("update proposal: %w", err)
		}
		if req.Items == nil {
			return nil
		}
		if err := repo.DeleteItems(ctx, id); err != nil {
			return fmt.Errorf("delete proposal items: %w", err)
		}
		for _, item := range replacement {
			if err := repo.InsertItem(ctx, item); err != nil {
				return fmt.Errorf("insert proposal item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("get proposal: %w", err)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeleteItems(ctx, id); err != nil {
			return fmt.Errorf("delete proposal items: %w", err)
		}
		return repo.Delete(ctx, id)
	})
}

func (s *Service) Get(ctx context.Context, id string) (*Proposal, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListProposalsRequest) ([]Proposal, int, error) {
	return s.repo.List(ctx, req)
}

// Send moves a draft proposal to sent. Any other starting status is
// rejected.
func (s *Service) Send(ctx context.Context, id string) (*Proposal, error) {
	return s.transition(ctx, id, StatusDraft, StatusSent)
}

// Accept moves a sent proposal to accepted.
func (s *Service) Accept(ctx context.Context, id string) (*Proposal, error) {
	return s.transition(ctx, id, StatusSent, StatusAccepted)
}

// Decline moves a sent proposal to declined.
func (s *Service) Decline(ctx context.Context, id string) (*Proposal, error) {
	return s.transition(ctx, id, StatusSent, StatusDeclined)
}

func (s *Service) transition(ctx context.Context, id string, from, to Status) (*Proposal, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}
	if existing.Status != from {
		return nil, fmt.Errorf("proposal %s is %s, not %s: %w", id, existing.Status, from, shared.ErrInvalidStatus)
	}
	if err := s.repo.Update(ctx, id, map[string]interface{}{"status": to}); err != nil {
		return nil, fmt.Errorf("update proposal status: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Convert turns an accepted proposal into a draft permit. The proposal's
// line items become priced checklist items, the new permit id is written
// back onto the proposal and a conversion note is appended. Returns the new
// permit's id.
func (s *Service) Convert(ctx context.Context, id string) (string, error) {
	proposal, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get proposal: %w", err)
	}
	if proposal.Status != StatusAccepted {
		return "", fmt.Errorf("proposal %s is %s: %w", id, proposal.Status, shared.ErrInvalidStatus)
	}
	if proposal.PermitID != nil && *proposal.PermitID != "" {
		return "", fmt.Errorf("proposal %s already converted to permit %s: %w", id, *proposal.PermitID, shared.ErrInvalidStatus)
	}

	permit, err := s.permits.Create(ctx, permits.CreatePermitRequest{
		Title:       proposal.Title,
		ClientID:    proposal.ClientID,
		PermitType:  "Commercial",
		Location:    "",
		Description: proposal.Scope,
	})
	if err != nil {
		return "", fmt.Errorf("create permit from proposal: %w", err)
	}

	for _, item := range proposal.Items {
		price := item.Quantity * item.UnitPrice
		if _, err := s.permits.AddItem(ctx, permit.ID, permits.CreateChecklistItemRequest{
			Title: item.Description,
			Price: &price,
		}); err != nil {
			return "", fmt.Errorf("copy proposal item to checklist: %w", err)
		}
	}

	note := fmt.Sprintf("Converted to permit %s on %s", permit.PermitNumber, s.now().UTC().Format("2006-01-02"))
	if proposal.Notes != nil && *proposal.Notes != "" {
		note = *proposal.Notes + "\n" + note
	}
	if err := s.repo.Update(ctx, id, map[string]interface{}{
		"permit_id": permit.ID,
		"notes":     note,
	}); err != nil {
		return "", fmt.Errorf("record conversion: %w", err)
	}
	return permit.ID, nil
}

func buildItems(proposalID string, inputs []ProposalItemInput) []ProposalItem {
	items := make([]ProposalItem, 0, len(inputs))
	for i, input := range inputs {
		order := input.ItemOrder
		if order == 0 {
			order = i
		}
		items = append(items, ProposalItem{
			ID:          uuid.NewString(),
			ProposalID:  proposalID,
			Description: input.Description,
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
			Total:       input.Quantity * input.UnitPrice,
			ItemOrder:   order,
		})
	}
	return items
}
