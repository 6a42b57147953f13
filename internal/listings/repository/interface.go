package repository

import (
	"context"
	"time"

	"exits_backend/internal/classifier"
)

// Listing is a scraped business-for-sale record. Rows are written by the
// external scraper and never modified here.
type Listing struct {
	ID            string
	Title         string
	Price         *int64
	PriceText     string
	Location      string
	City          string
	State         string
	Description   string
	Revenue       *int64
	CashFlow      *int64
	URL           string
	BrokerAccount string
	Industry      string
	DeepDiveHTML  string
	IsActive      bool
	ScrapedAt     time.Time
}

// ClassifierText implements classifier.Item.
func (l Listing) ClassifierText() string {
	return classifier.Text(l.Title, l.Description)
}

// ClassifierKey implements classifier.Item.
func (l Listing) ClassifierKey() string {
	return classifier.DedupKey(l.URL, l.ID)
}

// SearchParams filters and pages the listings index. Industry is set from
// the resolved vertical, never from the query string.
type SearchParams struct {
	Search    string
	MinPrice  *int64
	MaxPrice  *int64
	Location  string
	State     string
	Industry  string
	SortBy    string
	SortOrder string
	Offset    int
	Limit     int
}

// StateSummary aggregates the active listings in one state.
type StateSummary struct {
	State        string
	Total        int
	AvgPrice     *float64
	AvgRevenue   *float64
	AvgCashFlow  *float64
	LatestScrape *time.Time
}

// CityCount is the number of listings in one city.
type CityCount struct {
	City  string
	Count int
}

// Reader is the read surface used by listing pages.
type Reader interface {
	Search(ctx context.Context, params SearchParams) ([]Listing, int, error)
	GetByID(ctx context.Context, id string) (Listing, error)
}

// FeedReader loads time-windowed candidate sets for feeds and digests.
type FeedReader interface {
	ListScrapedSince(ctx context.Context, industry string, since time.Time, limit int) ([]Listing, error)
	TopCandidates(ctx context.Context, industry string, since time.Time, limit int) ([]Listing, error)
}

// StateReader backs the per-state landing pages.
type StateReader interface {
	StateSummary(ctx context.Context, industry, state string) (StateSummary, error)
	CityCounts(ctx context.Context, industry, state string, limit int) ([]CityCount, error)
}

// Repository combines all listing reads.
type Repository interface {
	Reader
	FeedReader
	StateReader
}
