package proposals

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

	Get(ctx context.Context, id string) (*Proposal, error)
	List(ctx context.Context, req ListProposalsRequest) ([]Proposal, int, error)
	Create(ctx context.Context, proposal Proposal) error
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error

	ListItems(ctx context.Context, proposalID string) ([]ProposalItem, error)
	InsertItem(ctx context.Context, item ProposalItem) error
	DeleteItems(ctx context.Context, proposalID string) error
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

const proposalColumns = `id, client_id, permit_id, title, scope, status, valid_until,
	total_amount, notes, created_at, updated_at`

func scanProposal(row pgx.Row) (*Proposal, error) {
	var p Proposal
	err := row.Scan(
		&p.ID, &p.ClientID, &p.PermitID, &p.Title, &p.Scope, &p.Status,
		&p.ValidUntil, &p.TotalAmount, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Proposal, error) {
	query := fmt.Sprintf("SELECT %s FROM proposals WHERE id = $1", proposalColumns)
	p, err := scanProposal(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	items, err := r.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Items = items
	return p, nil
}

func (r *repository) List(ctx context.Context, req ListProposalsRequest) ([]Proposal, int, error) {
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

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM proposals %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT %s FROM proposals
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, proposalColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, proposal Proposal) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO proposals (id, client_id, permit_id, title, scope, status,
			valid_until, total_amount, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`, proposal.ID, proposal.ClientID, proposal.PermitID, proposal.Title, proposal.Scope,
		proposal.Status, proposal.ValidUntil, proposal.TotalAmount, proposal.Notes,
		proposal.CreatedAt)
	return err
}

var proposalUpdateColumns = []string{
	"permit_id", "title", "scope", "status", "valid_until", "total_amount", "notes",
}

func (r *repository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	query := "UPDATE proposals SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range proposalUpdateColumns {
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
	tag, err := r.db.Exec(ctx, "DELETE FROM proposals WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListItems(ctx context.Context, proposalID string) ([]ProposalItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, proposal_id, description, quantity, unit_price, total, item_order
		FROM proposal_items
		WHERE proposal_id = $1
		ORDER BY item_order, id
	`, proposalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProposalItem
	for rows.Next() {
		var item ProposalItem
		if err := rows.Scan(&item.ID, &item.ProposalID, &item.Description, &item.Quantity,
			&item.UnitPrice, &item.Total, &item.ItemOrder); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *repository) InsertItem(ctx context.Context, item ProposalItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO proposal_items (id, proposal_id, description, quantity, unit_price, total, item_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, item.ID, item.ProposalID, item.Description, item.Quantity, item.UnitPrice,
		item.Total, item.ItemOrder)
	return err
}

func (r *repository) DeleteItems(ctx context.Context, proposalID string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM proposal_items WHERE proposal_id = $1", proposalID)
	return err
}
