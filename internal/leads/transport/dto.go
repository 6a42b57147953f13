package transport

import (
	"time"

	"github.com/google/uuid"
)

// CaptureRequest is the body of the lead capture endpoint. Required fields are
// checked by the service so the public error message stays stable.
type CaptureRequest struct {
	Email           string   `json:"email" validate:"max=254"`
	Phone           string   `json:"phone" validate:"max=40"`
	ListingID       string   `json:"listing_id" validate:"max=128"`
	Source          string   `json:"source" validate:"max=64"`
	ListingPrice    *float64 `json:"listing_price" validate:"omitempty,min=0"`
	ListingTitle    string   `json:"listing_title" validate:"max=300"`
	ListingLocation string   `json:"listing_location" validate:"max=200"`
	ListingURL      string   `json:"listing_url" validate:"max=2048"`
}

// CaptureResponse is returned after a lead is stored.
type CaptureResponse struct {
	Success bool      `json:"success"`
	LeadID  uuid.UUID `json:"lead_id"`
	Message string    `json:"message"`
}

// ListRequest is the query string of the admin lead list.
type ListRequest struct {
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	Status   string `form:"status" validate:"omitempty,oneof=new contacted qualified closed lost"`
	Vertical string `form:"vertical" validate:"max=50"`
}

// UpdateStatusRequest moves a lead through the pipeline.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified closed lost"`
}

// LeadResponse is the operator view of a lead.
type LeadResponse struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	Phone            *string    `json:"phone,omitempty"`
	ListingID        string     `json:"listing_id"`
	ListingTitle     *string    `json:"listing_title,omitempty"`
	ListingURL       *string    `json:"listing_url,omitempty"`
	ListingPrice     *int64     `json:"listing_price,omitempty"`
	ListingLocation  *string    `json:"listing_location,omitempty"`
	Vertical         string     `json:"vertical"`
	Source           string     `json:"source"`
	LeadScore        int        `json:"lead_score"`
	Status           string     `json:"status"`
	NextFollowUpDate string     `json:"next_follow_up_date,omitempty"`
	EmailsSent       int        `json:"emails_sent"`
	LastEmailSentAt  *time.Time `json:"last_email_sent_at,omitempty"`
	IPAddress        *string    `json:"ip_address,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// LeadListResponse is a page of leads.
type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}
