package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Run records one weekly digest send for a vertical.
type Run struct {
	ID         uuid.UUID
	Vertical   string
	WeekOf     time.Time
	Recipients int
	Sent       int
	Failed     int
	ArchiveKey *string
	CreatedAt  time.Time
}

// ClaimParams identifies the week a send wants to own.
type ClaimParams struct {
	ID       uuid.UUID
	Vertical string
	WeekOf   time.Time
	Force    bool
}

// ClaimResult reports how a claim resolved. Inserted is false when a forced
// claim took over a week that already had a row; that row must survive a
// failed rerun.
type ClaimResult struct {
	ID       uuid.UUID
	Claimed  bool
	Inserted bool
}

// Outcome is written back once every batch has finished.
type Outcome struct {
	Recipients int
	Sent       int
	Failed     int
	ArchiveKey *string
}

// Writer mutates digest runs.
type Writer interface {
	// Claim reserves (vertical, week). Claimed is false when the week was
	// already claimed and Force is not set.
	Claim(ctx context.Context, params ClaimParams) (ClaimResult, error)
	Complete(ctx context.Context, id uuid.UUID, outcome Outcome) error
	Release(ctx context.Context, id uuid.UUID) error
}

// Reader lists digest runs.
type Reader interface {
	ListRecent(ctx context.Context, vertical string, limit int) ([]Run, error)
}

// Repository combines digest run reads and writes.
type Repository interface {
	Reader
	Writer
}
