package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCounter persists the year and sequence in the permit_counters row.
// The increment and year rollover happen in a single statement so concurrent
// creates never observe the same value.
type PostgresCounter struct {
	pool *pgxpool.Pool
}

// NewPostgresCounter constructs a counter backed by the connection pool.
func NewPostgresCounter(pool *pgxpool.Pool) *PostgresCounter {
	return &PostgresCounter{pool: pool}
}

const nextNumberQuery = `
	INSERT INTO permit_counters (id, year, counter)
	VALUES (1, $1, 1)
	ON CONFLICT (id) DO UPDATE
	SET counter = CASE
			WHEN permit_counters.year = EXCLUDED.year THEN permit_counters.counter + 1
			ELSE 1
		END,
		year = EXCLUDED.year
	RETURNING counter
`

func (c *PostgresCounter) Next(ctx context.Context, now time.Time) (string, error) {
	year := now.Year()
	var seq int
	if err := c.pool.QueryRow(ctx, nextNumberQuery, year).Scan(&seq); err != nil {
		return "", fmt.Errorf("numbering: next: %w", err)
	}
	return Format(year, seq), nil
}
