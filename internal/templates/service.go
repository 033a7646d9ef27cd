package templates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/permitdesk/permitdesk/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateTemplateRequest) (*Template, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: template needs at least one item", shared.ErrValidation)
	}

	tpl := Template{
		ID:         uuid.NewString(),
		Name:       req.Name,
		PermitType: req.PermitType,
		CreatedAt:  time.Now().UTC(),
	}
	tpl.UpdatedAt = tpl.CreatedAt

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Create(ctx, tpl); err != nil {
			return fmt.Errorf("create template: %w", err)
		}
		for i, in := range req.Items {
			item := TemplateItem{
				ID:         uuid.NewString(),
				TemplateID: tpl.ID,
				Title:      in.Title,
				Price:      in.Price,
				ItemOrder:  in.ItemOrder,
			}
			if item.ItemOrder == 0 {
				item.ItemOrder = i + 1
			}
			if err := repo.InsertItem(ctx, item); err != nil {
				return fmt.Errorf("insert template item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, tpl.ID)
}

func (s *Service) Update(ctx context.Context, id string, req UpdateTemplateRequest) (*Template, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	if req.Items != nil && len(*req.Items) == 0 {
		return nil, fmt.Errorf("%w: template needs at least one item", shared.ErrValidation)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.PermitType != nil {
		updates["permit_type"] = *req.PermitType
	}

	if len(updates) == 0 && req.Items == nil {
		return existing, nil
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if len(updates) > 0 {
			if err := repo.Update(ctx, id, updates); err != nil {
				return err
			}
		}
		if req.Items != nil {
			if err := repo.DeleteItems(ctx, id); err != nil {
				return err
			}
			for i, in := range *req.Items {
				item := TemplateItem{
					ID:         uuid.NewString(),
					TemplateID: id,
					Title:      in.Title,
					Price:      in.Price,
					ItemOrder:  in.ItemOrder,
				}
				if item.ItemOrder == 0 {
					item.ItemOrder = i + 1
				}
				if err := repo.InsertItem(ctx, item); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("get template: %w", err)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeleteItems(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}

func (s *Service) Get(ctx context.Context, id string) (*Template, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListTemplatesRequest) ([]Template, int, error) {
	return s.repo.List(ctx, req)
}
