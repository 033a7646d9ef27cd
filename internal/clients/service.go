package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/permitdesk/permitdesk/internal/shared"
)

// PermitRefChecker reports how many permits reference a client. Implemented by
// the permits repository; kept narrow so clients does not import permits.
type PermitRefChecker interface {
	CountByClient(ctx context.Context, clientID string) (int, error)
}

type Service struct {
	repo    Repository
	permits PermitRefChecker
}

func NewService(repo Repository, permits PermitRefChecker) *Service {
	return &Service{repo: repo, permits: permits}
}

func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*Client, error) {
	client := Client{
		ID:           uuid.NewString(),
		Name:         req.Name,
		ContactName:  req.ContactName,
		Email:        req.Email,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Notes:        req.Notes,
		CreatedAt:    time.Now().UTC(),
	}
	client.UpdatedAt = client.CreatedAt

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &client, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateClientRequest) (*Client, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.ContactName != nil {
		updates["contact_name"] = *req.ContactName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.AddressLine1 != nil {
		updates["address_line1"] = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		updates["address_line2"] = *req.AddressLine2
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.PostalCode != nil {
		updates["postal_code"] = *req.PostalCode
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a client and its branches. Blocked while any permit still
// references the client.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("get client: %w", err)
	}

	refs, err := s.permits.CountByClient(ctx, id)
	if err != nil {
		return fmt.Errorf("count permits: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: client has %d permit(s)", shared.ErrConstraintViolation, refs)
	}

	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.DeleteBranchesByClient(ctx, id); err != nil {
			return fmt.Errorf("delete branches: %w", err)
		}
		return repo.Delete(ctx, id)
	})
}

func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	return s.repo.List(ctx, req)
}

// CreateBranch adds a location. The first branch of a client always becomes
// the main location; an explicit main flag demotes any existing main branch.
func (s *Service) CreateBranch(ctx context.Context, req CreateBranchRequest) (*Branch, error) {
	if _, err := s.repo.Get(ctx, req.ClientID); err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}

	count, err := s.repo.CountBranches(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("count branches: %w", err)
	}

	branch := Branch{
		ID:             uuid.NewString(),
		ClientID:       req.ClientID,
		Label:          req.Label,
		AddressLine1:   req.AddressLine1,
		AddressLine2:   req.AddressLine2,
		City:           req.City,
		State:          req.State,
		PostalCode:     req.PostalCode,
		IsMainLocation: req.IsMainLocation || count == 0,
		CreatedAt:      time.Now().UTC(),
	}
	branch.UpdatedAt = branch.CreatedAt

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if branch.IsMainLocation {
			if err := repo.UnsetMainBranches(ctx, req.ClientID); err != nil {
				return err
			}
		}
		return repo.CreateBranch(ctx, branch)
	})
	if err != nil {
		return nil, fmt.Errorf("create branch: %w", err)
	}
	return &branch, nil
}

func (s *Service) UpdateBranch(ctx context.Context, id string, req UpdateBranchRequest) (*Branch, error) {
	existing, err := s.repo.GetBranch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get branch: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Label != nil {
		updates["label"] = *req.Label
	}
	if req.AddressLine1 != nil {
		updates["address_line1"] = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		updates["address_line2"] = *req.AddressLine2
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.PostalCode != nil {
		updates["postal_code"] = *req.PostalCode
	}
	if req.IsMainLocation != nil {
		updates["is_main_location"] = *req.IsMainLocation
	}

	if len(updates) == 0 {
		return existing, nil
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if req.IsMainLocation != nil && *req.IsMainLocation {
			if err := repo.UnsetMainBranches(ctx, existing.ClientID); err != nil {
				return err
			}
		}
		return repo.UpdateBranch(ctx, id, updates)
	})
	if err != nil {
		return nil, fmt.Errorf("update branch: %w", err)
	}
	return s.repo.GetBranch(ctx, id)
}

// DeleteBranch removes a location. The sole remaining branch cannot be removed
// while it is the main location.
func (s *Service) DeleteBranch(ctx context.Context, id string) error {
	branch, err := s.repo.GetBranch(ctx, id)
	if err != nil {
		return fmt.Errorf("get branch: %w", err)
	}

	if branch.IsMainLocation {
		count, err := s.repo.CountBranches(ctx, branch.ClientID)
		if err != nil {
			return fmt.Errorf("count branches: %w", err)
		}
		if count == 1 {
			return fmt.Errorf("%w: cannot delete the only main location", shared.ErrConstraintViolation)
		}
	}

	return s.repo.DeleteBranch(ctx, id)
}

func (s *Service) GetBranch(ctx context.Context, id string) (*Branch, error) {
	return s.repo.GetBranch(ctx, id)
}

func (s *Service) ListBranches(ctx context.Context, clientID string) ([]Branch, error) {
	return s.repo.ListBranches(ctx, clientID)
}
