package transport

import (
	"time"

	"exits_backend/internal/finance"
)

// SearchRequest is the query string of GET /listings.
type SearchRequest struct {
	Page      int    `form:"page" validate:"omitempty,min=1"`
	Limit     int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Search    string `form:"search" validate:"max=200"`
	MinPrice  *int64 `form:"minPrice" validate:"omitempty,min=0"`
	MaxPrice  *int64 `form:"maxPrice" validate:"omitempty,min=0"`
	Location  string `form:"location" validate:"max=100"`
	State     string `form:"state" validate:"omitempty,len=2,alpha"`
	Industry  string `form:"industry" validate:"max=50"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=scraped_at price cash_flow revenue title"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// ListingResponse is the public shape of a listing row.
type ListingResponse struct {
	ListingID     string    `json:"listing_id"`
	Title         string    `json:"title"`
	Price         *int64    `json:"price"`
	PriceText     string    `json:"price_text,omitempty"`
	PriceDisplay  string    `json:"price_display"`
	Location      string    `json:"location"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	Description   string    `json:"description"`
	Revenue       *int64    `json:"revenue"`
	CashFlow      *int64    `json:"cash_flow"`
	ListingURL    string    `json:"listing_url"`
	BrokerAccount string    `json:"broker_account,omitempty"`
	Industry      string    `json:"industry,omitempty"`
	IsActive      bool      `json:"is_active"`
	ScrapedAt     time.Time `json:"scraped_at"`
}

// Pagination is the paging envelope of list responses.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// SearchResponse is returned by GET /listings.
type SearchResponse struct {
	Listings   []ListingResponse `json:"listings"`
	Pagination Pagination        `json:"pagination"`
}

// ValuationResponse places the asking price against the vertical's SDE range.
type ValuationResponse struct {
	Low      int64  `json:"low"`
	Median   int64  `json:"median"`
	High     int64  `json:"high"`
	Position string `json:"position,omitempty"`
}

// DetailResponse is returned by GET /listings/:id.
type DetailResponse struct {
	Listing   ListingResponse         `json:"listing"`
	Financing finance.RoundedScenario `json:"financing"`
	Valuation *ValuationResponse      `json:"valuation,omitempty"`
	DeepDive  string                  `json:"deep_dive_html,omitempty"`
}

// FeedResponse is returned by GET /listings/daily.
type FeedResponse struct {
	Vertical string            `json:"vertical"`
	Since    time.Time         `json:"since"`
	Count    int               `json:"count"`
	Listings []ListingResponse `json:"listings"`
}

// CityResponse is one row of the state page city list.
type CityResponse struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// StateResponse is returned by GET /states/:state.
type StateResponse struct {
	State         string         `json:"state"`
	Name          string         `json:"name"`
	TotalListings int            `json:"total_listings"`
	AvgPrice      *int64         `json:"avg_price"`
	AvgRevenue    *int64         `json:"avg_revenue"`
	AvgCashFlow   *int64         `json:"avg_cash_flow"`
	Cities        []CityResponse `json:"cities"`
	Title         string         `json:"title"`
}
