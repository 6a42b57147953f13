package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"exits_backend/platform/apperr"
)

const subscriberNotFoundMessage = "Subscription not found"

const subscriberColumns = `id, email, vertical, confirmed, confirm_token, unsubscribe_token,
	confirmed_at, unsubscribed_at, created_at, updated_at`

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new subscribers repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// activeRow is true for a confirmed subscriber who has not opted out.
const activeRow = `(subscribers.confirmed AND subscribers.unsubscribed_at IS NULL)`

// upsertPendingQuery inserts an unconfirmed subscriber, or re-arms
// confirmation for an existing address that is unconfirmed or unsubscribed.
// Active subscribers keep their vertical, state and tokens.
const upsertPendingQuery = `
	INSERT INTO subscribers (id, email, vertical, confirmed, confirm_token, unsubscribe_token)
	VALUES ($1, $2, $3, false, $4, $5)
	ON CONFLICT (email) DO UPDATE SET
		vertical = CASE WHEN ` + activeRow + ` THEN subscribers.vertical ELSE EXCLUDED.vertical END,
		confirm_token = CASE WHEN ` + activeRow + ` THEN subscribers.confirm_token ELSE EXCLUDED.confirm_token END,
		confirmed = ` + activeRow + `,
		updated_at = now()
	RETURNING ` + subscriberColumns

// confirmQuery activates the owner of a confirm token and reports whether
// the row was inactive beforehand.
const confirmQuery = `
	WITH prior AS (
		SELECT id AS prior_id, ` + activeRow + ` AS was_active
		FROM subscribers
		WHERE confirm_token = $1
		FOR UPDATE
	)
	UPDATE subscribers
	SET confirmed = true,
		confirmed_at = COALESCE(confirmed_at, now()),
		unsubscribed_at = NULL,
		updated_at = now()
	FROM prior
	WHERE subscribers.id = prior.prior_id
	RETURNING ` + subscriberColumns + `, NOT prior.was_active`

// unsubscribeQuery stamps unsubscribed_at once and reports whether this call
// set it.
const unsubscribeQuery = `
	WITH prior AS (
		SELECT id AS prior_id, unsubscribed_at IS NULL AS was_subscribed
		FROM subscribers
		WHERE unsubscribe_token = $1
		FOR UPDATE
	)
	UPDATE subscribers
	SET unsubscribed_at = COALESCE(unsubscribed_at, now()),
		updated_at = now()
	FROM prior
	WHERE subscribers.id = prior.prior_id
	RETURNING ` + subscriberColumns + `, prior.was_subscribed`

// UpsertPending runs upsertPendingQuery.
func (r *Repo) UpsertPending(ctx context.Context, params UpsertParams) (Subscriber, error) {
	s, err := scanSubscriber(r.pool.QueryRow(ctx, upsertPendingQuery,
		params.ID, params.Email, params.Vertical, params.ConfirmToken, params.UnsubscribeToken,
	))
	if err != nil {
		return Subscriber{}, fmt.Errorf("upsert pending subscriber: %w", err)
	}
	return s, nil
}

// UpsertConfirmed inserts or re-activates a confirmed subscriber.
func (r *Repo) UpsertConfirmed(ctx context.Context, params UpsertParams) (Subscriber, error) {
	query := `
		INSERT INTO subscribers (id, email, vertical, confirmed, confirm_token, unsubscribe_token, confirmed_at)
		VALUES ($1, $2, $3, true, $4, $5, now())
		ON CONFLICT (email) DO UPDATE SET
			confirmed = true,
			confirmed_at = COALESCE(subscribers.confirmed_at, now()),
			unsubscribed_at = NULL,
			updated_at = now()
		RETURNING ` + subscriberColumns

	s, err := scanSubscriber(r.pool.QueryRow(ctx, query,
		params.ID, params.Email, params.Vertical, params.ConfirmToken, params.UnsubscribeToken,
	))
	if err != nil {
		return Subscriber{}, fmt.Errorf("upsert confirmed subscriber: %w", err)
	}
	return s, nil
}

// ConfirmByToken marks the subscriber owning confirmToken as confirmed.
func (r *Repo) ConfirmByToken(ctx context.Context, confirmToken string) (Subscriber, bool, error) {
	var activated bool
	s, err := scanSubscriber(r.pool.QueryRow(ctx, confirmQuery, confirmToken), &activated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscriber{}, false, apperr.NotFound(subscriberNotFoundMessage)
		}
		return Subscriber{}, false, fmt.Errorf("confirm subscriber: %w", err)
	}
	return s, activated, nil
}

// UnsubscribeByToken stamps unsubscribed_at once; repeated calls keep the first timestamp.
func (r *Repo) UnsubscribeByToken(ctx context.Context, unsubscribeToken string) (Subscriber, bool, error) {
	var stamped bool
	s, err := scanSubscriber(r.pool.QueryRow(ctx, unsubscribeQuery, unsubscribeToken), &stamped)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscriber{}, false, apperr.NotFound(subscriberNotFoundMessage)
		}
		return Subscriber{}, false, fmt.Errorf("unsubscribe: %w", err)
	}
	return s, stamped, nil
}

// GetByUnsubscribeToken looks a subscriber up by unsubscribe token.
func (r *Repo) GetByUnsubscribeToken(ctx context.Context, unsubscribeToken string) (Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE unsubscribe_token = $1`

	s, err := scanSubscriber(r.pool.QueryRow(ctx, query, unsubscribeToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscriber{}, apperr.NotFound(subscriberNotFoundMessage)
		}
		return Subscriber{}, fmt.Errorf("get subscriber by token: %w", err)
	}
	return s, nil
}

// ListActive returns confirmed, not unsubscribed subscribers of a vertical.
func (r *Repo) ListActive(ctx context.Context, vertical string) ([]Subscriber, error) {
	query := `
		SELECT ` + subscriberColumns + `
		FROM subscribers
		WHERE vertical = $1 AND confirmed AND unsubscribed_at IS NULL
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, vertical)
	if err != nil {
		return nil, fmt.Errorf("list active subscribers: %w", err)
	}
	defer rows.Close()

	items := make([]Subscriber, 0)
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		items = append(items, s)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", rows.Err())
	}
	return items, nil
}

// scanSubscriber reads subscriberColumns followed by any extra columns.
func scanSubscriber(row pgx.Row, extra ...any) (Subscriber, error) {
	var s Subscriber
	dest := append([]any{
		&s.ID, &s.Email, &s.Vertical, &s.Confirmed, &s.ConfirmToken, &s.UnsubscribeToken,
		&s.ConfirmedAt, &s.UnsubscribedAt, &s.CreatedAt, &s.UpdatedAt,
	}, extra...)
	err := row.Scan(dest...)
	return s, err
}
