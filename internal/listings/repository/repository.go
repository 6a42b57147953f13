package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"exits_backend/platform/apperr"
)

const listingNotFoundMessage = "Listing not found"

var listingColumns = []string{
	"listing_id", "COALESCE(title, '')", "price", "COALESCE(price_text, '')", "COALESCE(location, '')",
	"COALESCE(city, '')", "COALESCE(state, '')", "COALESCE(description, '')", "revenue", "cash_flow",
	"COALESCE(listing_url, '')", "COALESCE(broker_account, '')", "COALESCE(industry, '')",
	"COALESCE(deep_dive_html, '')", "is_active", "scraped_at",
}

// sortColumns whitelists the client-facing sort keys.
var sortColumns = map[string]string{
	"scraped_at": "scraped_at",
	"price":      "price",
	"cash_flow":  "cash_flow",
	"revenue":    "revenue",
	"title":      "title",
}

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
	psql sq.StatementBuilderType
}

// New creates a new listings repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Search lists listings matching params and returns the unpaged total.
func (r *Repo) Search(ctx context.Context, params SearchParams) ([]Listing, int, error) {
	where := searchPredicates(params)

	countSQL, countArgs, err := r.psql.Select("COUNT(*)").From("listings").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count listings: %w", err)
	}
	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = "scraped_at"
	}
	order := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		order = "ASC"
	}

	query, args, err := r.psql.Select(listingColumns...).
		From("listings").
		Where(where).
		OrderBy(fmt.Sprintf("%s %s NULLS LAST", column, order), "listing_id ASC").
		Limit(uint64(params.Limit)).
		Offset(uint64(params.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build search listings: %w", err)
	}

	items, err := r.query(ctx, "search listings", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// searchPredicates always restricts the index to active listings, matching
// what GetByID callers are allowed to show.
func searchPredicates(params SearchParams) sq.And {
	where := sq.And{sq.Eq{"is_active": true}}
	if s := strings.TrimSpace(params.Search); s != "" {
		like := "%" + s + "%"
		where = append(where, sq.Or{
			sq.ILike{"title": like},
			sq.ILike{"description": like},
			sq.ILike{"location": like},
		})
	}
	if params.MinPrice != nil {
		where = append(where, sq.GtOrEq{"price": *params.MinPrice})
	}
	if params.MaxPrice != nil {
		where = append(where, sq.LtOrEq{"price": *params.MaxPrice})
	}
	if l := strings.TrimSpace(params.Location); l != "" {
		where = append(where, sq.ILike{"location": "%" + l + "%"})
	}
	if s := strings.TrimSpace(params.State); s != "" {
		where = append(where, sq.Eq{"UPPER(state)": strings.ToUpper(s)})
	}
	if p := industryPredicate(params.Industry); p != nil {
		where = append(where, p)
	}
	return where
}

// industryPredicate scopes a query to one vertical's industry tag. An empty
// tag leaves the query unscoped.
func industryPredicate(industry string) sq.Sqlizer {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		return nil
	}
	return sq.Expr("LOWER(industry) = ?", strings.ToLower(industry))
}

func scoped(industry string, preds ...sq.Sqlizer) sq.And {
	where := sq.And(preds)
	if p := industryPredicate(industry); p != nil {
		where = append(where, p)
	}
	return where
}

// GetByID retrieves one listing.
func (r *Repo) GetByID(ctx context.Context, id string) (Listing, error) {
	query, args, err := r.psql.Select(listingColumns...).From("listings").Where(sq.Eq{"listing_id": id}).ToSql()
	if err != nil {
		return Listing{}, fmt.Errorf("build get listing: %w", err)
	}

	l, err := scanListing(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, apperr.NotFound(listingNotFoundMessage)
		}
		return Listing{}, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

// ListScrapedSince returns industry listings scraped at or after since, newest first.
func (r *Repo) ListScrapedSince(ctx context.Context, industry string, since time.Time, limit int) ([]Listing, error) {
	query, args, err := r.psql.Select(listingColumns...).
		From("listings").
		Where(scoped(industry, sq.GtOrEq{"scraped_at": since})).
		OrderBy("scraped_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build scraped since: %w", err)
	}
	return r.query(ctx, "list scraped since", query, args...)
}

// TopCandidates returns active listings scraped since the cutoff, strongest
// cash flow first, then highest price.
func (r *Repo) TopCandidates(ctx context.Context, industry string, since time.Time, limit int) ([]Listing, error) {
	query, args, err := r.psql.Select(listingColumns...).
		From("listings").
		Where(scoped(industry, sq.Eq{"is_active": true}, sq.GtOrEq{"scraped_at": since})).
		OrderBy("cash_flow DESC NULLS LAST", "price DESC NULLS LAST").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top candidates: %w", err)
	}
	return r.query(ctx, "top candidates", query, args...)
}

// StateSummary aggregates active industry listings for a two-letter state code.
func (r *Repo) StateSummary(ctx context.Context, industry, state string) (StateSummary, error) {
	query, args, err := r.psql.Select(
		"COUNT(*)", "AVG(price)::float8", "AVG(revenue)::float8", "AVG(cash_flow)::float8", "MAX(scraped_at)",
	).From("listings").
		Where(scoped(industry, sq.Eq{"is_active": true}, sq.Eq{"UPPER(state)": strings.ToUpper(state)})).
		ToSql()
	if err != nil {
		return StateSummary{}, fmt.Errorf("build state summary: %w", err)
	}

	summary := StateSummary{State: strings.ToUpper(state)}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&summary.Total, &summary.AvgPrice, &summary.AvgRevenue, &summary.AvgCashFlow, &summary.LatestScrape,
	); err != nil {
		return StateSummary{}, fmt.Errorf("state summary: %w", err)
	}
	return summary, nil
}

// CityCounts returns the busiest cities in a state for one industry.
func (r *Repo) CityCounts(ctx context.Context, industry, state string, limit int) ([]CityCount, error) {
	query, args, err := r.psql.Select("city", "COUNT(*)").
		From("listings").
		Where(scoped(industry,
			sq.Eq{"is_active": true},
			sq.Eq{"UPPER(state)": strings.ToUpper(state)},
			sq.NotEq{"city": nil},
			sq.NotEq{"city": ""},
		)).
		GroupBy("city").
		OrderBy("COUNT(*) DESC", "city ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build city counts: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("city counts: %w", err)
	}
	defer rows.Close()

	counts := make([]CityCount, 0, limit)
	for rows.Next() {
		var cc CityCount
		if err := rows.Scan(&cc.City, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan city count: %w", err)
		}
		counts = append(counts, cc)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate city counts: %w", rows.Err())
	}
	return counts, nil
}

func (r *Repo) query(ctx context.Context, op, query string, args ...any) ([]Listing, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		items = append(items, l)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate listings: %w", rows.Err())
	}
	return items, nil
}

func scanListing(row pgx.Row) (Listing, error) {
	var l Listing
	err := row.Scan(
		&l.ID, &l.Title, &l.Price, &l.PriceText, &l.Location,
		&l.City, &l.State, &l.Description, &l.Revenue, &l.CashFlow,
		&l.URL, &l.BrokerAccount, &l.Industry,
		&l.DeepDiveHTML, &l.IsActive, &l.ScrapedAt,
	)
	return l, err
}
