package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Subscriber is a digest recipient.
type Subscriber struct {
	ID               uuid.UUID
	Email            string
	Vertical         string
	Confirmed        bool
	ConfirmToken     string
	UnsubscribeToken string
	ConfirmedAt      *time.Time
	UnsubscribedAt   *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Active reports whether the subscriber should receive the digest.
func (s Subscriber) Active() bool {
	return s.Confirmed && s.UnsubscribedAt == nil
}

// UpsertParams carries the fields written on (re)subscription. Tokens are only
// applied when the row is new or needs a fresh confirmation.
type UpsertParams struct {
	ID               uuid.UUID
	Email            string
	Vertical         string
	ConfirmToken     string
	UnsubscribeToken string
}

// Writer mutates subscriber rows.
type Writer interface {
	UpsertPending(ctx context.Context, params UpsertParams) (Subscriber, error)
	UpsertConfirmed(ctx context.Context, params UpsertParams) (Subscriber, error)
	// ConfirmByToken reports true when the subscriber was inactive before.
	ConfirmByToken(ctx context.Context, confirmToken string) (Subscriber, bool, error)
	// UnsubscribeByToken reports true when this call opted the address out.
	UnsubscribeByToken(ctx context.Context, unsubscribeToken string) (Subscriber, bool, error)
}

// Reader looks subscribers up.
type Reader interface {
	GetByUnsubscribeToken(ctx context.Context, unsubscribeToken string) (Subscriber, error)
	ListActive(ctx context.Context, vertical string) ([]Subscriber, error)
}

// Repository combines subscriber reads and writes.
type Repository interface {
	Reader
	Writer
}
