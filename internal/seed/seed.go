// Package seed populates an empty database with a demo client and a
// starter set of checklist templates so a fresh install is usable
// immediately.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/permitdesk/permitdesk/internal/clients"
	"github.com/permitdesk/permitdesk/internal/templates"
)

type Seeder struct {
	logger    *slog.Logger
	clients   clients.Repository
	templates templates.Repository
	now       func() time.Time
}

func New(logger *slog.Logger, clientRepo clients.Repository, templateRepo templates.Repository) *Seeder {
	return &Seeder{
		logger:    logger,
		clients:   clientRepo,
		templates: templateRepo,
		now:       time.Now,
	}
}

// Run inserts demo data when the clients table is empty. A populated table
// means a real install; nothing is touched.
func (s *Seeder) Run(ctx context.Context) error {
	_, total, err := s.clients.List(ctx, clients.ListClientsRequest{Limit: 1})
	if err != nil {
		return fmt.Errorf("check clients table: %w", err)
	}
	if total > 0 {
		return nil
	}

	now := s.now().UTC()
	if err := s.seedClient(ctx, now); err != nil {
		return err
	}
	if err := s.seedTemplates(ctx, now); err != nil {
		return err
	}
	s.logger.Info("seeded demo data")
	return nil
}

func (s *Seeder) seedClient(ctx context.Context, now time.Time) error {
	contact := "Dana Reyes"
	phone := "555-0137"
	address := "742 Evergreen Terrace"
	city := "Springfield"
	state := "IL"
	postal := "62704"

	client := clients.Client{
		ID:           uuid.NewString(),
		Name:         "Acme Builders",
		ContactName:  &contact,
		Email:        "office@acmebuilders.test",
		Phone:        &phone,
		AddressLine1: &address,
		City:         &city,
		State:        &state,
		PostalCode:   &postal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	branchLabel := "Head Office"
	branch := clients.Branch{
		ID:             uuid.NewString(),
		ClientID:       client.ID,
		Label:          &branchLabel,
		AddressLine1:   address,
		City:           &city,
		State:          &state,
		PostalCode:     &postal,
		IsMainLocation: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return s.clients.WithTx(ctx, func(ctx context.Context, repo clients.Repository) error {
		if err := repo.Create(ctx, client); err != nil {
			return fmt.Errorf("seed client: %w", err)
		}
		if err := repo.CreateBranch(ctx, branch); err != nil {
			return fmt.Errorf("seed branch: %w", err)
		}
		return nil
	})
}

type seedItem struct {
	title string
	price float64
}

var starterTemplates = []struct {
	name       string
	permitType string
	items      []seedItem
}{
	{
		name:       "Commercial Build-Out",
		permitType: "Commercial",
		items: []seedItem{
			{"Zoning verification", 150},
			{"Plan review submission", 350},
			{"Fire marshal review", 200},
			{"Final inspection", 250},
		},
	},
	{
		name:       "Residential Renovation",
		permitType: "Residential",
		items: []seedItem{
			{"Permit application filing", 100},
			{"Structural plan review", 275},
			{"Electrical rough-in inspection", 125},
			{"Final walkthrough", 150},
		},
	},
	{
		name:       "Signage",
		permitType: "Signage",
		items: []seedItem{
			{"Site survey", 90},
			{"Sign permit application", 120},
			{"Installation inspection", 110},
		},
	},
}

func (s *Seeder) seedTemplates(ctx context.Context, now time.Time) error {
	return s.templates.WithTx(ctx, func(ctx context.Context, repo templates.Repository) error {
		for _, def := range starterTemplates {
			tpl := templates.Template{
				ID:         uuid.NewString(),
				Name:       def.name,
				PermitType: def.permitType,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := repo.Create(ctx, tpl); err != nil {
				return fmt.Errorf("seed template %s: %w", def.name, err)
			}
			for i, item := range def.items {
				price := item.price
				if err := repo.InsertItem(ctx, templates.TemplateItem{
					ID:         uuid.NewString(),
					TemplateID: tpl.ID,
					Title:      item.title,
					Price:      &price,
					ItemOrder:  i,
				}); err != nil {
					return fmt.Errorf("seed template item %s: %w", item.title, err)
				}
			}
		}
		return nil
	})
}
