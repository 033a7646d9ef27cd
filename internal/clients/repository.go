package clients

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

	Get(ctx context.Context, id string) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
	Create(ctx context.Context, client Client) error
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error

	GetBranch(ctx context.Context, id string) (*Branch, error)
	ListBranches(ctx context.Context, clientID string) ([]Branch, error)
	CountBranches(ctx context.Context, clientID string) (int, error)
	CreateBranch(ctx context.Context, branch Branch) error
	UpdateBranch(ctx context.Context, id string, updates map[string]interface{}) error
	UnsetMainBranches(ctx context.Context, clientID string) error
	DeleteBranch(ctx context.Context, id string) error
	DeleteBranchesByClient(ctx context.Context, clientID string) error
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

const clientColumns = `id, name, contact_name, email, phone, address_line1, address_line2,
	city, state, postal_code, notes, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(
		&c.ID, &c.Name, &c.ContactName, &c.Email, &c.Phone, &c.AddressLine1,
		&c.AddressLine2, &c.City, &c.State, &c.PostalCode, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Client, error) {
	query := fmt.Sprintf("SELECT %s FROM clients WHERE id = $1", clientColumns)
	return scanClient(r.db.QueryRow(ctx, query, id))
}

func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	whereClause := ""
	var args []interface{}
	argPos := 1

	if req.Search != nil && *req.Search != "" {
		whereClause = fmt.Sprintf("WHERE (name ILIKE $%d OR email ILIKE $%d OR contact_name ILIKE $%d)", argPos, argPos, argPos)
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM clients %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT %s FROM clients
		%s
		ORDER BY name
		LIMIT $%d OFFSET $%d
	`, clientColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, client Client) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO clients (id, name, contact_name, email, phone, address_line1,
			address_line2, city, state, postal_code, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	`, client.ID, client.Name, client.ContactName, client.Email, client.Phone,
		client.AddressLine1, client.AddressLine2, client.City, client.State,
		client.PostalCode, client.Notes, client.CreatedAt)
	return err
}

var clientUpdateColumns = []string{
	"name", "contact_name", "email", "phone", "address_line1", "address_line2",
	"city", "state", "postal_code", "notes",
}

func (r *repository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	query := "UPDATE clients SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range clientUpdateColumns {
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
	tag, err := r.db.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const branchColumns = `id, client_id, label, address_line1, address_line2, city, state,
	postal_code, is_main_location, created_at, updated_at`

func scanBranch(row pgx.Row) (*Branch, error) {
	var b Branch
	err := row.Scan(
		&b.ID, &b.ClientID, &b.Label, &b.AddressLine1, &b.AddressLine2,
		&b.City, &b.State, &b.PostalCode, &b.IsMainLocation,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) GetBranch(ctx context.Context, id string) (*Branch, error) {
	query := fmt.Sprintf("SELECT %s FROM client_branches WHERE id = $1", branchColumns)
	return scanBranch(r.db.QueryRow(ctx, query, id))
}

func (r *repository) ListBranches(ctx context.Context, clientID string) ([]Branch, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM client_branches
		WHERE client_id = $1
		ORDER BY is_main_location DESC, created_at
	`, branchColumns)
	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *repository) CountBranches(ctx context.Context, clientID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM client_branches WHERE client_id = $1", clientID).Scan(&count)
	return count, err
}

func (r *repository) CreateBranch(ctx context.Context, branch Branch) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO client_branches (id, client_id, label, address_line1, address_line2,
			city, state, postal_code, is_main_location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`, branch.ID, branch.ClientID, branch.Label, branch.AddressLine1, branch.AddressLine2,
		branch.City, branch.State, branch.PostalCode, branch.IsMainLocation, branch.CreatedAt)
	return err
}

var branchUpdateColumns = []string{
	"label", "address_line1", "address_line2", "city", "state", "postal_code",
	"is_main_location",
}

func (r *repository) UpdateBranch(ctx context.Context, id string, updates map[string]interface{}) error {
	query := "UPDATE client_branches SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range branchUpdateColumns {
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

func (r *repository) UnsetMainBranches(ctx context.Context, clientID string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE client_branches SET is_main_location = FALSE, updated_at = NOW() WHERE client_id = $1 AND is_main_location",
		clientID)
	return err
}

func (r *repository) DeleteBranch(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM client_branches WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteBranchesByClient(ctx context.Context, clientID string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM client_branches WHERE client_id = $1", clientID)
	return err
}
