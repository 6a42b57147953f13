package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const runColumns = `id, vertical, week_of, recipients, sent, failed, archive_key, created_at`

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new digest runs repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Claim inserts the (vertical, week) row. A forced claim on an existing row
// leaves its counts untouched so a rerun that delivers nothing cannot erase
// the record of an earlier send; xmax = 0 tells a fresh insert apart.
func (r *Repo) Claim(ctx context.Context, params ClaimParams) (ClaimResult, error) {
	query := `
		INSERT INTO digest_runs (id, vertical, week_of)
		VALUES ($1, $2, $3)
		ON CONFLICT (vertical, week_of) DO NOTHING
		RETURNING id, (xmax = 0) AS inserted`
	if params.Force {
		query = `
			INSERT INTO digest_runs (id, vertical, week_of)
			VALUES ($1, $2, $3)
			ON CONFLICT (vertical, week_of) DO UPDATE SET week_of = EXCLUDED.week_of
			RETURNING id, (xmax = 0) AS inserted`
	}

	res := ClaimResult{Claimed: true}
	err := r.pool.QueryRow(ctx, query, params.ID, params.Vertical, params.WeekOf).Scan(&res.ID, &res.Inserted)
	if errors.Is(err, pgx.ErrNoRows) {
		return ClaimResult{}, nil
	}
	if err != nil {
		return ClaimResult{}, fmt.Errorf("claim digest run: %w", err)
	}
	return res, nil
}

func (r *Repo) Complete(ctx context.Context, id uuid.UUID, outcome Outcome) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE digest_runs
		SET recipients = $2, sent = $3, failed = $4, archive_key = $5
		WHERE id = $1`,
		id, outcome.Recipients, outcome.Sent, outcome.Failed, outcome.ArchiveKey,
	)
	if err != nil {
		return fmt.Errorf("complete digest run: %w", err)
	}
	return nil
}

// Release drops a freshly inserted claim whose send delivered nothing.
func (r *Repo) Release(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM digest_runs WHERE id = $1 AND sent = 0`, id); err != nil {
		return fmt.Errorf("release digest run: %w", err)
	}
	return nil
}

func (r *Repo) ListRecent(ctx context.Context, vertical string, limit int) ([]Run, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+runColumns+`
		FROM digest_runs
		WHERE vertical = $1
		ORDER BY week_of DESC
		LIMIT $2`, vertical, limit)
	if err != nil {
		return nil, fmt.Errorf("list digest runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Vertical, &run.WeekOf, &run.Recipients, &run.Sent,
			&run.Failed, &run.ArchiveKey, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan digest run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate digest runs: %w", err)
	}
	return runs, nil
}
