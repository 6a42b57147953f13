package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"exits_backend/internal/listings/repository"
	"exits_backend/internal/listings/transport"
	"exits_backend/internal/vertical"
	"exits_backend/platform/apperr"
	"exits_backend/platform/logger"
)

type fakeRepo struct {
	listings     []repository.Listing
	total        int
	lastSearch   repository.SearchParams
	lastSince    time.Time
	lastLimit    int
	lastIndustry string
	summary      repository.StateSummary
	cities       []repository.CityCount
	searchCalls  int
}

func (f *fakeRepo) Search(_ context.Context, params repository.SearchParams) ([]repository.Listing, int, error) {
	f.searchCalls++
	f.lastSearch = params
	return f.listings, f.total, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (repository.Listing, error) {
	for _, l := range f.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return repository.Listing{}, apperr.NotFound("Listing not found")
}

func (f *fakeRepo) ListScrapedSince(_ context.Context, industry string, since time.Time, limit int) ([]repository.Listing, error) {
	f.lastIndustry = industry
	f.lastSince = since
	f.lastLimit = limit
	return f.listings, nil
}

func (f *fakeRepo) TopCandidates(_ context.Context, industry string, since time.Time, limit int) ([]repository.Listing, error) {
	f.lastIndustry = industry
	f.lastSince = since
	f.lastLimit = limit
	return f.listings, nil
}

func (f *fakeRepo) StateSummary(_ context.Context, industry, state string) (repository.StateSummary, error) {
	f.lastIndustry = industry
	s := f.summary
	s.State = state
	return s, nil
}

func (f *fakeRepo) CityCounts(_ context.Context, _, _ string, limit int) ([]repository.CityCount, error) {
	if len(f.cities) > limit {
		return f.cities[:limit], nil
	}
	return f.cities, nil
}

func newTestService(t *testing.T, repo *fakeRepo) (*Service, *vertical.Vertical) {
	t.Helper()
	svc := New(repo, nil, logger.NewWithWriter("test", io.Discard))
	return svc, testVertical(t, "cleaning")
}

func testVertical(t *testing.T, slug string) *vertical.Vertical {
	t.Helper()
	reg, err := vertical.LoadDefault()
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	v, ok := reg.BySlug(slug)
	if !ok {
		t.Fatalf("vertical %q not in registry", slug)
	}
	return v
}

func i64(v int64) *int64 { return &v }

func TestSearchPagination(t *testing.T) {
	repo := &fakeRepo{total: 45}
	svc, v := newTestService(t, repo)

	resp, err := svc.Search(context.Background(), v, transport.SearchRequest{Page: 2, Limit: 20, Search: "  janitorial "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	p := resp.Pagination
	if p.TotalPages != 3 || !p.HasNext || !p.HasPrev {
		t.Fatalf("unexpected pagination %+v", p)
	}
	if repo.lastSearch.Offset != 20 || repo.lastSearch.Limit != 20 {
		t.Fatalf("expected offset 20 limit 20, got %d/%d", repo.lastSearch.Offset, repo.lastSearch.Limit)
	}
	if repo.lastSearch.Search != "janitorial" {
		t.Fatalf("expected trimmed search, got %q", repo.lastSearch.Search)
	}
}

func TestSearchDefaultsAndEmptyTotal(t *testing.T) {
	repo := &fakeRepo{}
	svc, v := newTestService(t, repo)

	resp, err := svc.Search(context.Background(), v, transport.SearchRequest{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Pagination.Page != 1 || resp.Pagination.Limit != 20 {
		t.Fatalf("expected defaults page 1 limit 20, got %+v", resp.Pagination)
	}
	if resp.Pagination.TotalPages != 0 || resp.Pagination.HasNext || resp.Pagination.HasPrev {
		t.Fatalf("unexpected pagination %+v", resp.Pagination)
	}
	if resp.Listings == nil {
		t.Fatalf("expected empty slice, not nil")
	}
}

func TestDailyFeedFiltersAndStartsAtEasternMidnight(t *testing.T) {
	repo := &fakeRepo{listings: []repository.Listing{
		{ID: "1", Title: "Commercial Cleaning Company", URL: "https://a"},
		{ID: "2", Title: "Roofing contractor", URL: "https://b"},
		{ID: "3", Title: "Janitorial Services", URL: "https://a"},
		{ID: "4", Title: "Maid Service Route"},
	}}
	svc, v := newTestService(t, repo)
	// 03:30 UTC on Jan 10 is still Jan 9 in New York.
	svc.now = func() time.Time { return time.Date(2025, 1, 10, 3, 30, 0, 0, time.UTC) }

	feed, err := svc.DailyFeed(context.Background(), v)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if feed.Count != 2 || feed.Listings[0].ListingID != "1" || feed.Listings[1].ListingID != "4" {
		t.Fatalf("unexpected feed %+v", feed.Listings)
	}
	want := time.Date(2025, 1, 9, 5, 0, 0, 0, time.UTC)
	if !repo.lastSince.Equal(want) {
		t.Fatalf("expected since %v, got %v", want, repo.lastSince.UTC())
	}
	if repo.lastLimit != 500 {
		t.Fatalf("expected limit 500, got %d", repo.lastLimit)
	}
}

func TestTopForDigestCapsAfterFiltering(t *testing.T) {
	var rows []repository.Listing
	for i := 0; i < 15; i++ {
		rows = append(rows, repository.Listing{ID: string(rune('a' + i)), Title: "Franchise cleaning"})
	}
	for i := 0; i < 12; i++ {
		rows = append(rows, repository.Listing{ID: string(rune('A' + i)), Title: "Janitorial company"})
	}
	repo := &fakeRepo{listings: rows}
	svc, v := newTestService(t, repo)

	top, err := svc.TopForDigest(context.Background(), v, 10, 90*24*time.Hour)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(top) != 10 {
		t.Fatalf("expected 10 listings, got %d", len(top))
	}
	if top[0].ID != "A" {
		t.Fatalf("expected first allowed listing first, got %s", top[0].ID)
	}
	if repo.lastLimit <= 10 {
		t.Fatalf("expected a candidate pool larger than n, got %d", repo.lastLimit)
	}
}

func TestDetailIncludesFinancingAndValuation(t *testing.T) {
	repo := &fakeRepo{listings: []repository.Listing{{
		ID: "L1", Title: "Janitorial", Price: i64(2_400_000), CashFlow: i64(600_000), IsActive: true, Industry: "cleaning",
		DeepDiveHTML: `<h2>Overview</h2><p>Strong</p><h2>Ready to Move on This Deal?</h2><p>Call now</p><h3>Risks</h3><p>Few</p>`,
	}}}
	svc, v := newTestService(t, repo)

	resp, err := svc.Detail(context.Background(), "L1", v)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Financing.MonthlyPayment != 26207 {
		t.Fatalf("expected monthly 26207, got %d", resp.Financing.MonthlyPayment)
	}
	if resp.Valuation == nil || resp.Valuation.Position == "" {
		t.Fatalf("expected valuation, got %+v", resp.Valuation)
	}
	if strings.Contains(resp.DeepDive, "Call now") || !strings.Contains(resp.DeepDive, "Risks") {
		t.Fatalf("unexpected deep dive %q", resp.DeepDive)
	}
}

func TestDetailInactiveIsNotFound(t *testing.T) {
	repo := &fakeRepo{listings: []repository.Listing{{ID: "L2", IsActive: false}}}
	svc, v := newTestService(t, repo)

	_, err := svc.Detail(context.Background(), "L2", v)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStatePage(t *testing.T) {
	avg := 812345.6
	repo := &fakeRepo{
		summary: repository.StateSummary{Total: 3, AvgPrice: &avg},
		cities:  []repository.CityCount{{City: "Austin", Count: 2}, {City: "Dallas", Count: 1}},
	}
	svc, v := newTestService(t, repo)

	resp, err := svc.StatePage(context.Background(), v, "tx")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Name != "Texas" || resp.State != "TX" {
		t.Fatalf("unexpected state %+v", resp)
	}
	if resp.AvgPrice == nil || *resp.AvgPrice != 812346 {
		t.Fatalf("expected rounded avg price, got %v", resp.AvgPrice)
	}
	if resp.AvgRevenue != nil {
		t.Fatalf("expected nil avg revenue")
	}
	if len(resp.Cities) != 2 {
		t.Fatalf("expected 2 cities, got %d", len(resp.Cities))
	}
	if repo.lastIndustry != "cleaning" {
		t.Fatalf("expected state summary scoped to cleaning, got %q", repo.lastIndustry)
	}

	repo.summary = repository.StateSummary{}
	if _, err := svc.StatePage(context.Background(), v, "VT"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for empty state, got %v", err)
	}
	if _, err := svc.StatePage(context.Background(), v, "Texas"); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for long code, got %v", err)
	}
}

func TestSearchScopedToResolvedVertical(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(t, repo)
	hvac := testVertical(t, "hvac")

	if _, err := svc.Search(context.Background(), hvac, transport.SearchRequest{Industry: "cleaning"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.lastSearch.Industry != "hvac" {
		t.Fatalf("expected industry hvac, got %q", repo.lastSearch.Industry)
	}
}

func TestSearchWithoutVerticalUsesRequestedIndustry(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(t, repo)

	if _, err := svc.Search(context.Background(), nil, transport.SearchRequest{Industry: " vending "}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.lastSearch.Industry != "vending" {
		t.Fatalf("expected industry vending, got %q", repo.lastSearch.Industry)
	}
}

func TestSearchCacheKeyIncludesVertical(t *testing.T) {
	params := repository.SearchParams{Search: "route", Limit: 20}
	if searchCacheKey("cleaning", params) == searchCacheKey("hvac", params) {
		t.Fatalf("expected distinct cache keys per vertical")
	}
}

func TestDetailOtherVerticalIsNotFound(t *testing.T) {
	repo := &fakeRepo{listings: []repository.Listing{{
		ID: "L3", Title: "Commercial Cleaning Company", IsActive: true, Industry: "cleaning",
	}}}
	svc, cleaning := newTestService(t, repo)

	if _, err := svc.Detail(context.Background(), "L3", testVertical(t, "hvac")); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on hvac, got %v", err)
	}
	if _, err := svc.Detail(context.Background(), "L3", cleaning); err != nil {
		t.Fatalf("expected cleaning detail, got %v", err)
	}
}

func TestStatePageScopedToVertical(t *testing.T) {
	repo := &fakeRepo{summary: repository.StateSummary{Total: 7}}
	svc, _ := newTestService(t, repo)
	hvac := testVertical(t, "hvac")

	resp, err := svc.StatePage(context.Background(), hvac, "TX")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.lastIndustry != "hvac" {
		t.Fatalf("expected summary scoped to hvac, got %q", repo.lastIndustry)
	}
	if resp.TotalListings != 7 {
		t.Fatalf("expected 7 listings, got %d", resp.TotalListings)
	}
}

func TestFeedsScopedToVertical(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(t, repo)
	hvac := testVertical(t, "hvac")

	if _, err := svc.DailyFeed(context.Background(), hvac); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.lastIndustry != "hvac" {
		t.Fatalf("expected daily feed scoped to hvac, got %q", repo.lastIndustry)
	}

	repo.lastIndustry = ""
	if _, err := svc.TopForDigest(context.Background(), hvac, 5, time.Hour); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.lastIndustry != "hvac" {
		t.Fatalf("expected digest candidates scoped to hvac, got %q", repo.lastIndustry)
	}
}

func TestSanitizeDeepDiveStripsScriptsAndLinks(t *testing.T) {
	raw := `<div onclick="x()"><p>Keep</p><script>alert(1)</script>` +
		`<a href="javascript:void(0)">Docs</a><a href="https://broker">View Full Listing on BizBuySell</a></div>`

	out, err := SanitizeDeepDive(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for _, bad := range []string{"script", "onclick", "javascript:", "View Full Listing"} {
		if strings.Contains(out, bad) {
			t.Fatalf("expected %q to be removed from %q", bad, out)
		}
	}
	if !strings.Contains(out, "Keep") || !strings.Contains(out, "Docs") {
		t.Fatalf("expected content kept, got %q", out)
	}
}
