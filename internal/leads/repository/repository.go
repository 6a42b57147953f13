package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"exits_backend/platform/apperr"
)

const leadNotFoundMessage = "Lead not found"

const leadColumns = `id, email, phone, listing_id, listing_title, listing_url, listing_price, listing_location,
	broker_account, vertical, source, lead_score, status, next_follow_up_date, email_sequence_name,
	emails_sent, last_email_sent_at, user_agent, referrer, ip_address, created_at, updated_at`

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts a lead.
func (r *Repo) Create(ctx context.Context, p CreateParams) (Lead, error) {
	query := `
		INSERT INTO buyer_leads (
			id, email, phone, listing_id, listing_title, listing_url, listing_price, listing_location,
			broker_account, vertical, source, lead_score, status, next_follow_up_date, email_sequence_name,
			emails_sent, last_email_sent_at, user_agent, referrer, ip_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING ` + leadColumns

	lead, err := scanLead(r.pool.QueryRow(ctx, query,
		p.ID, p.Email, p.Phone, p.ListingID, p.ListingTitle, p.ListingURL, p.ListingPrice, p.ListingLocation,
		p.BrokerAccount, p.Vertical, p.Source, p.LeadScore, p.Status, p.NextFollowUpDate, p.EmailSequenceName,
		p.EmailsSent, p.LastEmailSentAt, p.UserAgent, p.Referrer, p.IPAddress,
	))
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

// UpdateStatus moves a lead to status and returns the status it had before.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (string, Lead, error) {
	query := `
		WITH previous AS (
			SELECT status FROM buyer_leads WHERE id = $1 FOR UPDATE
		)
		UPDATE buyer_leads
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING (SELECT status FROM previous), ` + leadColumns

	var previous string
	var l Lead
	err := r.pool.QueryRow(ctx, query, id, status).Scan(append([]any{&previous}, leadScanTargets(&l)...)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return "", Lead{}, fmt.Errorf("update lead status: %w", err)
	}
	return previous, l, nil
}

// List returns leads newest first with the unpaged total.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClauses := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if params.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}
	if params.Vertical != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("vertical = $%d", argIdx))
		args = append(args, params.Vertical)
		argIdx++
	}
	whereClause := strings.Join(whereClauses, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM buyer_leads WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM buyer_leads
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, leadColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		items = append(items, l)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate leads: %w", rows.Err())
	}
	return items, total, nil
}

func leadScanTargets(l *Lead) []any {
	return []any{
		&l.ID, &l.Email, &l.Phone, &l.ListingID, &l.ListingTitle, &l.ListingURL, &l.ListingPrice, &l.ListingLocation,
		&l.BrokerAccount, &l.Vertical, &l.Source, &l.LeadScore, &l.Status, &l.NextFollowUpDate, &l.EmailSequenceName,
		&l.EmailsSent, &l.LastEmailSentAt, &l.UserAgent, &l.Referrer, &l.IPAddress, &l.CreatedAt, &l.UpdatedAt,
	}
}

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(leadScanTargets(&l)...)
	return l, err
}
