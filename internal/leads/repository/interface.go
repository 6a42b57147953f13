package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Pipeline statuses an operator can move a lead through.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusClosed    = "closed"
	StatusLost      = "lost"
)

// Lead is a captured buyer inquiry about one listing.
type Lead struct {
	ID                uuid.UUID
	Email             string
	Phone             *string
	ListingID         string
	ListingTitle      *string
	ListingURL        *string
	ListingPrice      *int64
	ListingLocation   *string
	BrokerAccount     *string
	Vertical          string
	Source            string
	LeadScore         int
	Status            string
	NextFollowUpDate  *time.Time
	EmailSequenceName *string
	EmailsSent        int
	LastEmailSentAt   *time.Time
	UserAgent         *string
	Referrer          *string
	IPAddress         *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreateParams contains data for inserting a lead.
type CreateParams struct {
	ID                uuid.UUID
	Email             string
	Phone             *string
	ListingID         string
	ListingTitle      *string
	ListingURL        *string
	ListingPrice      *int64
	ListingLocation   *string
	BrokerAccount     *string
	Vertical          string
	Source            string
	LeadScore         int
	Status            string
	NextFollowUpDate  time.Time
	EmailSequenceName string
	EmailsSent        int
	LastEmailSentAt   *time.Time
	UserAgent         *string
	Referrer          *string
	IPAddress         string
}

// ListParams filters the admin lead list.
type ListParams struct {
	Status   string
	Vertical string
	Offset   int
	Limit    int
}

// Writer stores leads.
type Writer interface {
	Create(ctx context.Context, params CreateParams) (Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (previous string, lead Lead, err error)
}

// Reader lists leads for operators.
type Reader interface {
	List(ctx context.Context, params ListParams) ([]Lead, int, error)
}

// Repository combines lead reads and writes.
type Repository interface {
	Reader
	Writer
}
