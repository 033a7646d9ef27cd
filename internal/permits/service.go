package permits

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/permitdesk/permitdesk/internal/numbering"
	"github.com/permitdesk/permitdesk/internal/shared"
	"github.com/permitdesk/permitdesk/internal/templates"
)

// ClientSource verifies client references without importing the clients
// package wholesale.
type ClientSource interface {
	Exists(ctx context.Context, clientID string) (bool, error)
}

// TemplateSource resolves checklist templates for application.
type TemplateSource interface {
	Get(ctx context.Context, id string) (*templates.Template, error)
}

type Service struct {
	repo      Repository
	clients   ClientSource
	templates TemplateSource
	counter   numbering.CounterStore
	now       func() time.Time
}

func NewService(repo Repository, clients ClientSource, tpls TemplateSource, counter numbering.CounterStore) *Service {
	return &Service{
		repo:      repo,
		clients:   clients,
		templates: tpls,
		counter:   counter,
		now:       time.Now,
	}
}

// Create issues the next year-scoped permit number and starts at zero
// progress.
func (s *Service) Create(ctx context.Context, req CreatePermitRequest) (*Permit, error) {
	ok, err := s.clients.Exists(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("verify client: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("client %s: %w", req.ClientID, shared.ErrNotFound)
	}

	number, err := s.counter.Next(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("generate permit number: %w", err)
	}

	permit := Permit{
		ID:           uuid.NewString(),
		PermitNumber: number,
		Title:        req.Title,
		ClientID:     req.ClientID,
		PermitType:   req.PermitType,
		Status:       StatusDraft,
		Location:     req.Location,
		Description:  req.Description,
		Progress:     0,
		ExpiresAt:    req.ExpiresAt,
		CreatedAt:    s.now().UTC(),
	}
	permit.UpdatedAt = permit.CreatedAt

	if err := s.repo.Create(ctx, permit); err != nil {
		return nil, fmt.Errorf("create permit: %w", err)
	}
	return &permit, nil
}

// Update merges header fields. Progress is derived state and deliberately
// absent from the request shape.
func (s *Service) Update(ctx context.Context, id string, req UpdatePermitRequest) (*Permit, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get permit: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.PermitType != nil {
		updates["permit_type"] = *req.PermitType
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ExpiresAt != nil {
		updates["expires_at"] = *req.ExpiresAt
	}

	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update permit: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a permit and cascades its checklist items.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("get permit: %w", err)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeleteItemsByPermit(ctx, id); err != nil {
			return fmt.Errorf("delete checklist items: %w", err)
		}
		return repo.Delete(ctx, id)
	})
}

func (s *Service) Get(ctx context.Context, id string) (*Permit, error) {
	return s.repo.Get(ctx, id)
}

// GetWithDetails loads the permit, its checklist and the derived cost figures.
func (s *Service) GetWithDetails(ctx context.Context, id string) (*PermitWithDetails, error) {
	permit, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get permit: %w", err)
	}
	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	total, completed, balance := SummarizeCosts(items)
	return &PermitWithDetails{
		Permit:        *permit,
		Items:         items,
		TotalCost:     total,
		CompletedCost: completed,
		BalanceDue:    balance,
	}, nil
}

func (s *Service) List(ctx context.Context, req ListPermitsRequest) ([]Permit, int, error) {
	return s.repo.List(ctx, req)
}

// Progress returns the derived completion percentage for a permit.
func (s *Service) Progress(ctx context.Context, permitID string) (int, error) {
	items, err := s.repo.ListItems(ctx, permitID)
	if err != nil {
		return 0, fmt.Errorf("list checklist items: %w", err)
	}
	return ProgressOf(items), nil
}

func (s *Service) AddItem(ctx context.Context, permitID string, req CreateChecklistItemRequest) (*ChecklistItem, error) {
	if _, err := s.repo.Get(ctx, permitID); err != nil {
		return nil, fmt.Errorf("get permit: %w", err)
	}

	item := ChecklistItem{
		ID:        uuid.NewString(),
		PermitID:  permitID,
		Title:     req.Title,
		Completed: false,
		Price:     req.Price,
		Notes:     req.Notes,
		CreatedAt: s.now().UTC(),
	}
	item.UpdatedAt = item.CreatedAt

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.CreateItem(ctx, item); err != nil {
			return fmt.Errorf("create checklist item: %w", err)
		}
		return recomputeProgress(ctx, repo, permitID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) UpdateItem(ctx context.Context, itemID string, req UpdateChecklistItemRequest) (*ChecklistItem, error) {
	existing, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get checklist item: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Completed != nil {
		updates["completed"] = *req.Completed
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) == 0 {
		return existing, nil
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.UpdateItem(ctx, itemID, updates); err != nil {
			return fmt.Errorf("update checklist item: %w", err)
		}
		return recomputeProgress(ctx, repo, existing.PermitID)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetItem(ctx, itemID)
}

// ToggleItem flips completion state and recomputes progress.
func (s *Service) ToggleItem(ctx context.Context, itemID string) (*ChecklistItem, error) {
	existing, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get checklist item: %w", err)
	}
	toggled := !existing.Completed
	return s.UpdateItem(ctx, itemID, UpdateChecklistItemRequest{Completed: &toggled})
}

func (s *Service) DeleteItem(ctx context.Context, itemID string) error {
	existing, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("get checklist item: %w", err)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeleteItem(ctx, itemID); err != nil {
			return fmt.Errorf("delete checklist item: %w", err)
		}
		return recomputeProgress(ctx, repo, existing.PermitID)
	})
}

func (s *Service) ListItems(ctx context.Context, permitID string) ([]ChecklistItem, error) {
	if _, err := s.repo.Get(ctx, permitID); err != nil {
		return nil, fmt.Errorf("get permit: %w", err)
	}
	return s.repo.ListItems(ctx, permitID)
}

// ApplyTemplate copies every template item onto the permit's checklist as an
// uncompleted item, then recomputes progress.
func (s *Service) ApplyTemplate(ctx context.Context, templateID, permitID string) ([]ChecklistItem, error) {
	if _, err := s.repo.Get(ctx, permitID); err != nil {
		return nil, fmt.Errorf("get permit: %w", err)
	}
	tpl, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	now := s.now().UTC()
	copied := make([]ChecklistItem, 0, len(tpl.Items))
	for _, tplItem := range tpl.Items {
		item := ChecklistItem{
			ID:        uuid.NewString(),
			PermitID:  permitID,
			Title:     tplItem.Title,
			Completed: false,
			Price:     tplItem.Price,
			CreatedAt: now,
			UpdatedAt: now,
		}
		copied = append(copied, item)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		for _, item := range copied {
			if err := repo.CreateItem(ctx, item); err != nil {
				return fmt.Errorf("copy template item: %w", err)
			}
		}
		return recomputeProgress(ctx, repo, permitID)
	})
	if err != nil {
		return nil, err
	}
	return copied, nil
}

// recomputeProgress rereads the checklist and stores the derived percentage
// on the permit row. Runs inside the caller's transaction.
func recomputeProgress(ctx context.Context, repo Repository, permitID string) error {
	items, err := repo.ListItems(ctx, permitID)
	if err != nil {
		return fmt.Errorf("list checklist items: %w", err)
	}
	return repo.Update(ctx, permitID, map[string]interface{}{
		"progress": ProgressOf(items),
	})
}
