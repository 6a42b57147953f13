package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	_ "time/tzdata"

	"exits_backend/internal/classifier"
	"exits_backend/internal/finance"
	"exits_backend/internal/listings/repository"
	"exits_backend/internal/listings/transport"
	"exits_backend/internal/vertical"
	"exits_backend/platform/apperr"
	"exits_backend/platform/cache"
	"exits_backend/platform/logger"
)

const (
	defaultPage     = 1
	defaultLimit    = 20
	maxLimit        = 100
	dailyFeedLimit  = 500
	stateCityLimit  = 10
	digestPoolRatio = 25
)

// FeedZone is the day boundary for the daily feed.
const FeedZone = "America/New_York"

// Service provides business logic for listings.
type Service struct {
	repo  repository.Repository
	cache *cache.Cache
	log   *logger.Logger
	now   func() time.Time
	zone  *time.Location
}

// New creates a new listings service. A nil cache disables caching.
func New(repo repository.Repository, c *cache.Cache, log *logger.Logger) *Service {
	zone, err := time.LoadLocation(FeedZone)
	if err != nil {
		zone = time.UTC
	}
	return &Service{repo: repo, cache: c, log: log, now: time.Now, zone: zone}
}

// Search lists v's active listings with paging metadata. The vertical's
// industry tag wins over any industry in the query string.
func (s *Service) Search(ctx context.Context, v *vertical.Vertical, req transport.SearchRequest) (transport.SearchResponse, error) {
	page, limit := normalizePage(req.Page, req.Limit)
	params := repository.SearchParams{
		Search:    strings.TrimSpace(req.Search),
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		Location:  strings.TrimSpace(req.Location),
		State:     req.State,
		Industry:  industryFor(v, req.Industry),
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Offset:    (page - 1) * limit,
		Limit:     limit,
	}

	key := searchCacheKey(slugOf(v), params)
	return cache.Remember(ctx, s.cache, key, func(ctx context.Context) (transport.SearchResponse, error) {
		items, total, err := s.repo.Search(ctx, params)
		if err != nil {
			return transport.SearchResponse{}, err
		}
		return transport.SearchResponse{
			Listings:   toListingResponses(items),
			Pagination: paginate(page, limit, total),
		}, nil
	})
}

// Detail returns a listing with its financing projection and valuation for v.
func (s *Service) Detail(ctx context.Context, id string, v *vertical.Vertical) (transport.DetailResponse, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.DetailResponse{}, err
	}
	if !l.IsActive || !belongsTo(l, v) {
		return transport.DetailResponse{}, apperr.NotFound("Listing not found")
	}

	resp := transport.DetailResponse{
		Listing:   toListingResponse(l),
		Financing: finance.EstimatePtr(l.Price, l.CashFlow).Rounded(),
	}

	if l.CashFlow != nil && v != nil {
		if val, ok := finance.Value(float64(*l.CashFlow), v.Valuation.SDE.Multiples()); ok {
			vr := &transport.ValuationResponse{
				Low:    int64(math.Round(val.Low)),
				Median: int64(math.Round(val.Median)),
				High:   int64(math.Round(val.High)),
			}
			if l.Price != nil {
				vr.Position = string(finance.Assess(float64(*l.Price), val))
			}
			resp.Valuation = vr
		}
	}

	if l.DeepDiveHTML != "" {
		clean, err := SanitizeDeepDive(l.DeepDiveHTML)
		if err != nil {
			s.log.Warn("deep dive sanitize failed", "listing_id", l.ID, "error", err)
		} else {
			resp.DeepDive = clean
		}
	}
	return resp, nil
}

// Get returns the raw listing.
func (s *Service) Get(ctx context.Context, id string) (repository.Listing, error) {
	return s.repo.GetByID(ctx, id)
}

// DailyFeed returns today's listings for v, where today starts at midnight in FeedZone.
func (s *Service) DailyFeed(ctx context.Context, v *vertical.Vertical) (transport.FeedResponse, error) {
	since := StartOfDay(s.now(), s.zone)
	rows, err := s.repo.ListScrapedSince(ctx, v.Industry, since, dailyFeedLimit)
	if err != nil {
		return transport.FeedResponse{}, err
	}

	kept := classifier.Filter(v.Classifier(), rows)
	return transport.FeedResponse{
		Vertical: v.Slug,
		Since:    since,
		Count:    len(kept),
		Listings: toListingResponses(kept),
	}, nil
}

// TopForDigest returns up to n listings scraped within lookback that pass v's rules.
func (s *Service) TopForDigest(ctx context.Context, v *vertical.Vertical, n int, lookback time.Duration) ([]repository.Listing, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.repo.TopCandidates(ctx, v.Industry, s.now().Add(-lookback), n*digestPoolRatio)
	if err != nil {
		return nil, err
	}

	kept := classifier.Filter(v.Classifier(), rows)
	if len(kept) > n {
		kept = kept[:n]
	}
	return kept, nil
}

// StatePage aggregates listings for a state landing page.
func (s *Service) StatePage(ctx context.Context, v *vertical.Vertical, code string) (transport.StateResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return transport.StateResponse{}, apperr.BadRequest("Invalid state code")
	}

	key := fmt.Sprintf("state:%s:%s", v.Slug, code)
	return cache.Remember(ctx, s.cache, key, func(ctx context.Context) (transport.StateResponse, error) {
		summary, err := s.repo.StateSummary(ctx, v.Industry, code)
		if err != nil {
			return transport.StateResponse{}, err
		}
		if summary.Total == 0 {
			return transport.StateResponse{}, apperr.NotFound("No listings for state")
		}
		cities, err := s.repo.CityCounts(ctx, v.Industry, code, stateCityLimit)
		if err != nil {
			return transport.StateResponse{}, err
		}

		name := StateName(code)
		resp := transport.StateResponse{
			State:         code,
			Name:          name,
			TotalListings: summary.Total,
			AvgPrice:      roundPtr(summary.AvgPrice),
			AvgRevenue:    roundPtr(summary.AvgRevenue),
			AvgCashFlow:   roundPtr(summary.AvgCashFlow),
			Cities:        make([]transport.CityResponse, 0, len(cities)),
			Title: fmt.Sprintf("%d %s for Sale in %s | %s",
				summary.Total, v.Terminology.BusinessPlural, name, v.Email.FromName),
		}
		for _, c := range cities {
			resp.Cities = append(resp.Cities, transport.CityResponse{City: c.City, Count: c.Count})
		}
		return resp, nil
	})
}

// StartOfDay returns midnight of t's calendar day in zone.
func StartOfDay(t time.Time, zone *time.Location) time.Time {
	local := t.In(zone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, zone)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func paginate(page, limit, total int) transport.Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return transport.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// industryFor scopes a search to v. The query-string industry only applies
// when no vertical (or an untagged one) is resolved.
func industryFor(v *vertical.Vertical, requested string) string {
	if v != nil && v.Industry != "" {
		return v.Industry
	}
	return strings.TrimSpace(requested)
}

// belongsTo reports whether l may be shown on v's pages.
func belongsTo(l repository.Listing, v *vertical.Vertical) bool {
	if v == nil || v.Industry == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(l.Industry), v.Industry)
}

func slugOf(v *vertical.Vertical) string {
	if v == nil {
		return ""
	}
	return v.Slug
}

func searchCacheKey(slug string, p repository.SearchParams) string {
	return fmt.Sprintf("search:%s:%s|%s|%s|%s|%s|%s|%s|%s|%d|%d", slug,
		strings.ToLower(p.Search), int64Key(p.MinPrice), int64Key(p.MaxPrice), strings.ToLower(p.Location),
		strings.ToUpper(p.State), p.Industry, p.SortBy, p.SortOrder, p.Offset, p.Limit)
}

func int64Key(v *int64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(*v)
}

func roundPtr(v *float64) *int64 {
	if v == nil {
		return nil
	}
	r := int64(math.Round(*v))
	return &r
}

func toListingResponses(items []repository.Listing) []transport.ListingResponse {
	out := make([]transport.ListingResponse, 0, len(items))
	for _, l := range items {
		out = append(out, toListingResponse(l))
	}
	return out
}

func toListingResponse(l repository.Listing) transport.ListingResponse {
	return transport.ListingResponse{
		ListingID:     l.ID,
		Title:         l.Title,
		Price:         l.Price,
		PriceText:     l.PriceText,
		PriceDisplay:  finance.DollarsPtr(l.Price, "Contact for price"),
		Location:      l.Location,
		City:          l.City,
		State:         l.State,
		Description:   l.Description,
		Revenue:       l.Revenue,
		CashFlow:      l.CashFlow,
		ListingURL:    l.URL,
		BrokerAccount: l.BrokerAccount,
		Industry:      l.Industry,
		IsActive:      l.IsActive,
		ScrapedAt:     l.ScrapedAt,
	}
}
