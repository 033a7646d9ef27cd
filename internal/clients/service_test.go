package clients

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/permitdesk/permitdesk/internal/shared"
)

type memoryClientRepo struct {
	clients  map[string]*Client
	branches map[string]*Branch
}

func newMemoryClientRepo() *memoryClientRepo {
	return &memoryClientRepo{
		clients:  make(map[string]*Client),
		branches: make(map[string]*Branch),
	}
}

func (r *memoryClientRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryClientRepo) Get(_ context.Context, id string) (*Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memoryClientRepo) List(_ context.Context, req ListClientsRequest) ([]Client, int, error) {
	var out []Client
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (r *memoryClientRepo) Create(_ context.Context, client Client) error {
	r.clients[client.ID] = &client
	return nil
}

func (r *memoryClientRepo) Update(_ context.Context, id string, updates map[string]interface{}) error {
	c, ok := r.clients[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	if v, ok := updates["email"]; ok {
		c.Email = v.(string)
	}
	if v, ok := updates["notes"]; ok {
		notes := v.(string)
		c.Notes = &notes
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (r *memoryClientRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.clients[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.clients, id)
	return nil
}

func (r *memoryClientRepo) GetBranch(_ context.Context, id string) (*Branch, error) {
	b, ok := r.branches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memoryClientRepo) ListBranches(_ context.Context, clientID string) ([]Branch, error) {
	var out []Branch
	for _, b := range r.branches {
		if b.ClientID == clientID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memoryClientRepo) CountBranches(_ context.Context, clientID string) (int, error) {
	count := 0
	for _, b := range r.branches {
		if b.ClientID == clientID {
			count++
		}
	}
	return count, nil
}

func (r *memoryClientRepo) CreateBranch(_ context.Context, branch Branch) error {
	r.branches[branch.ID] = &branch
	return nil
}

func (r *memoryClientRepo) UpdateBranch(_ context.Context, id string, updates map[string]interface{}) error {
	b, ok := r.branches[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["label"]; ok {
		label := v.(string)
		b.Label = &label
	}
	if v, ok := updates["address_line1"]; ok {
		b.AddressLine1 = v.(string)
	}
	if v, ok := updates["is_main_location"]; ok {
		b.IsMainLocation = v.(bool)
	}
	b.UpdatedAt = time.Now()
	return nil
}

func (r *memoryClientRepo) UnsetMainBranches(_ context.Context, clientID string) error {
	for _, b := range r.branches {
		if b.ClientID == clientID {
			b.IsMainLocation = false
		}
	}
	return nil
}

func (r *memoryClientRepo) DeleteBranch(_ context.Context, id string) error {
	if _, ok := r.branches[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.branches, id)
	return nil
}

func (r *memoryClientRepo) DeleteBranchesByClient(_ context.Context, clientID string) error {
	for id, b := range r.branches {
		if b.ClientID == clientID {
			delete(r.branches, id)
		}
	}
	return nil
}

type stubPermitRefs struct {
	count int
}

func (s stubPermitRefs) CountByClient(context.Context, string) (int, error) {
	return s.count, nil
}

func createTestClient(t *testing.T, svc *Service) *Client {
	t.Helper()
	client, err := svc.Create(context.Background(), CreateClientRequest{
		Name:  "Acme Builders",
		Email: "office@acme.test",
	})
	require.NoError(t, err)
	return client
}

func TestDeleteBlockedByPermits(t *testing.T) {
	repo := newMemoryClientRepo()
	svc := NewService(repo, stubPermitRefs{count: 2})
	client := createTestClient(t, svc)

	err := svc.Delete(context.Background(), client.ID)
	require.ErrorIs(t, err, shared.ErrConstraintViolation)

	_, err = svc.Get(context.Background(), client.ID)
	require.NoError(t, err)
}

func TestDeleteCascadesBranches(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryClientRepo()
	svc := NewService(repo, stubPermitRefs{count: 0})
	client := createTestClient(t, svc)

	_, err := svc.CreateBranch(ctx, CreateBranchRequest{
		ClientID:     client.ID,
		AddressLine1: "742 Evergreen Terrace",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, client.ID))
	require.Empty(t, repo.branches)
	_, err = svc.Get(ctx, client.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFirstBranchBecomesMain(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryClientRepo()
	svc := NewService(repo, stubPermitRefs{})
	client := createTestClient(t, svc)

	first, err := svc.CreateBranch(ctx, CreateBranchRequest{
		ClientID:     client.ID,
		AddressLine1: "1 Main St",
	})
	require.NoError(t, err)
	require.True(t, first.IsMainLocation)

	second, err := svc.CreateBranch(ctx, CreateBranchRequest{
		ClientID:     client.ID,
		AddressLine1: "2 Side St",
	})
	require.NoError(t, err)
	require.False(t, second.IsMainLocation)
}

func TestNewMainBranchDemotesExisting(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryClientRepo()
	svc := NewService(repo, stubPermitRefs{})
	client := createTestClient(t, svc)

	first, err := svc.CreateBranch(ctx, CreateBranchRequest{
		ClientID:     client.ID,
		AddressLine1: "1 Main St",
	})
	require.NoError(t, err)

	second, err := svc.CreateBranch(ctx, CreateBranchRequest{
		ClientID:       client.ID,
		AddressLine1:   "2 Side St",
		IsMainLocation: true,
	})
	require.NoError(t, err)
	require.True(t, second.IsMainLocation)

	demoted, err := svc.GetBranch(ctx, first.ID)
	require.NoError(t, err)
	require.False(t, demoted.IsMainLocation)
}

func TestDeleteSoleMainBranchBlocked(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryClientRepo()
	svc := NewService(repo, stubPermitRefs{})
	client := createTestClient(t, svc)

	branch, err := svc.CreateBranch(ctx, CreateBranchRequest{
		ClientID:     client.ID,
		AddressLine1: "1 Main St",
	})
	require.NoError(t, err)

	err = svc.DeleteBranch(ctx, branch.ID)
	require.ErrorIs(t, err, shared.ErrConstraintViolation)
}

func TestDeleteMainBranchWithSiblingsAllowed(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryClientRepo()
	svc := NewService(repo, stubPermitRefs{})
	client := createTestClient(t, svc)

	main, err := svc.CreateBranch(ctx, CreateBranchRequest{
		ClientID:     client.ID,
		AddressLine1: "1 Main St",
	})
	require.NoError(t, err)
	_, err = svc.CreateBranch(ctx, CreateBranchRequest{
		ClientID:     client.ID,
		AddressLine1: "2 Side St",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBranch(ctx, main.ID))
}

func TestUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryClientRepo()
	svc := NewService(repo, stubPermitRefs{})
	client := createTestClient(t, svc)

	name := "Acme Construction Group"
	updated, err := svc.Update(ctx, client.ID, UpdateClientRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.Equal(t, client.Email, updated.Email)
}
