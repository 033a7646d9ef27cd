package permits

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

	Get(ctx context.Context, id string) (*Permit, error)
	List(ctx context.Context, req ListPermitsRequest) ([]Permit, int, error)
	Create(ctx context.Context, permit Permit) error
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	CountByClient(ctx context.Context, clientID string) (int, error)

	GetItem(ctx context.Context, id string) (*ChecklistItem, error)
	ListItems(ctx context.Context, permitID string) ([]ChecklistItem, error)
	CreateItem(ctx context.Context, item ChecklistItem) error
	UpdateItem(ctx context.Context, id string, updates map[string]interface{}) error
	DeleteItem(ctx context.Context, id string) error
	DeleteItemsByPermit(ctx context.Context, permitID string) error
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

const permitColumns = `id, permit_number, title, client_id, permit_type, status, location,
	description, progress, expires_at, created_at, updated_at`

func scanPermit(row pgx.Row) (*Permit, error) {
	var p Permit
	err := row.Scan(
		&p.ID, &p.PermitNumber, &p.Title, &p.ClientID, &p.PermitType, &p.Status,
		&p.Location, &p.Description, &p.Progress, &p.ExpiresAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Permit, error) {
	query := fmt.Sprintf("SELECT %s FROM permits WHERE id = $1", permitColumns)
	return scanPermit(r.db.QueryRow(ctx, query, id))
}

func (r *repository) List(ctx context.Context, req ListPermitsRequest) ([]Permit, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.ClientID != nil && *req.ClientID != "" {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argPos))
		args = append(args, *req.ClientID)
		argPos++
	}
	if req.Status != nil && *req.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR permit_number ILIKE $%d OR location ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM permits %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT %s FROM permits
		%s
		ORDER BY permit_number DESC
		LIMIT $%d OFFSET $%d
	`, permitColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Permit
	for rows.Next() {
		p, err := scanPermit(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, permit Permit) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO permits (id, permit_number, title, client_id, permit_type, status,
			location, description, progress, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	`, permit.ID, permit.PermitNumber, permit.Title, permit.ClientID, permit.PermitType,
		permit.Status, permit.Location, permit.Description, permit.Progress,
		permit.ExpiresAt, permit.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("permit number %s taken: %w", permit.PermitNumber, shared.ErrConstraintViolation)
		}
		return err
	}
	return nil
}

var permitUpdateColumns = []string{
	"title", "permit_type", "status", "location", "description", "progress", "expires_at",
}

func (r *repository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	query := "UPDATE permits SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range permitUpdateColumns {
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
	tag, err := r.db.Exec(ctx, "DELETE FROM permits WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CountByClient(ctx context.Context, clientID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM permits WHERE client_id = $1", clientID).Scan(&count)
	return count, err
}

const itemColumns = `id, permit_id, title, completed, price, notes, created_at, updated_at`

func scanItem(row pgx.Row) (*ChecklistItem, error) {
	var item ChecklistItem
	err := row.Scan(
		&item.ID, &item.PermitID, &item.Title, &item.Completed, &item.Price,
		&item.Notes, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) GetItem(ctx context.Context, id string) (*ChecklistItem, error) {
	query := fmt.Sprintf("SELECT %s FROM checklist_items WHERE id = $1", itemColumns)
	return scanItem(r.db.QueryRow(ctx, query, id))
}

func (r *repository) ListItems(ctx context.Context, permitID string) ([]ChecklistItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM checklist_items
		WHERE permit_id = $1
		ORDER BY created_at, id
	`, itemColumns)
	rows, err := r.db.Query(ctx, query, permitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChecklistItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *repository) CreateItem(ctx context.Context, item ChecklistItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO checklist_items (id, permit_id, title, completed, price, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, item.ID, item.PermitID, item.Title, item.Completed, item.Price, item.Notes, item.CreatedAt)
	return err
}

var itemUpdateColumns = []string{"title", "completed", "price", "notes"}

func (r *repository) UpdateItem(ctx context.Context, id string, updates map[string]interface{}) error {
	query := "UPDATE checklist_items SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range itemUpdateColumns {
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

func (r *repository) DeleteItem(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM checklist_items WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteItemsByPermit(ctx context.Context, permitID string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM checklist_items WHERE permit_id = $1", permitID)
	return err
}
