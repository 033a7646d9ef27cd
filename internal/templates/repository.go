package templates

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/permitdesk/permitdesk/internal/platform/db"
	"github.com/permitdesk/permitdesk/internal/shared"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error

	Get(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context, req ListTemplatesRequest) ([]Template, int, error)
	Create(ctx context.Context, tpl Template) error
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error

	ListItems(ctx context.Context, templateID string) ([]TemplateItem, error)
	InsertItem(ctx context.Context, item TemplateItem) error
	DeleteItems(ctx context.Context, templateID string) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) Get(ctx context.Context, id string) (*Template, error) {
	var tpl Template
	err := r.db.QueryRow(ctx,
		"SELECT id, name, permit_type, created_at, updated_at FROM checklist_templates WHERE id = $1", id,
	).Scan(&tpl.ID, &tpl.Name, &tpl.PermitType, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	items, err := r.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	tpl.Items = items
	return &tpl, nil
}

func (r *repository) List(ctx context.Context, req ListTemplatesRequest) ([]Template, int, error) {
	whereClause := ""
	var args []interface{}
	argPos := 1

	if req.PermitType != nil && *req.PermitType != "" {
		whereClause = fmt.Sprintf("WHERE permit_type = $%d", argPos)
		args = append(args, *req.PermitType)
		argPos++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM checklist_templates %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT id, name, permit_type, created_at, updated_at
		FROM checklist_templates
		%s
		ORDER BY name
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var tpl Template
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.PermitType, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, tpl)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, tpl Template) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO checklist_templates (id, name, permit_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
	`, tpl.ID, tpl.Name, tpl.PermitType, tpl.CreatedAt)
	return err
}

func (r *repository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	query := "UPDATE checklist_templates SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "permit_type"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM checklist_templates WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListItems(ctx context.Context, templateID string) ([]TemplateItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, template_id, title, price, item_order
		FROM checklist_template_items
		WHERE template_id = $1
		ORDER BY item_order, title
	`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TemplateItem
	for rows.Next() {
		var item TemplateItem
		if err := rows.Scan(&item.ID, &item.TemplateID, &item.Title, &item.Price, &item.ItemOrder); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *repository) InsertItem(ctx context.Context, item TemplateItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO checklist_template_items (id, template_id, title, price, item_order)
		VALUES ($1, $2, $3, $4, $5)
	`, item.ID, item.TemplateID, item.Title, item.Price, item.ItemOrder)
	return err
}

func (r *repository) DeleteItems(ctx context.Context, templateID string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM checklist_template_items WHERE template_id = $1", templateID)
	return err
}
